// Package protocol defines the messages exchanged with the native companion.
//
// Messages form a closed set discriminated by their method. Requests carry a
// fresh id; results echo the id of the request they answer in Context.
package protocol

import (
	"fmt"

	"github.com/google/uuid"
)

// APIVersion is stamped on every outbound message.
const APIVersion = "v1"

// Method discriminates message types on the wire.
type Method string

const (
	MethodEvent  Method = "event"
	MethodOpen   Method = "open"
	MethodCreate Method = "create"
	MethodUpdate Method = "update"
)

// Error codes carried by result messages.
const (
	CodeInternal        = 1
	CodeRestoreFailed   = 2
	CodeInvalidDocument = 3
)

// Error is the error payload of a result.
type Error struct {
	Code        int    `json:"code"`
	Description string `json:"description,omitempty"`
}

func (e *Error) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("companion error %d", e.Code)
	}
	return fmt.Sprintf("companion error %d: %s", e.Code, e.Description)
}

// Header is the part common to every message.
type Header struct {
	APIVersion string `json:"apiVersion"`
	ID         string `json:"id"`
	Method     Method `json:"method"`
}

func newHeader(method Method) Header {
	return Header{APIVersion: APIVersion, ID: uuid.NewString(), Method: method}
}

// Kind returns the message method.
func (h Header) Kind() Method { return h.Method }

// MessageID returns the message id.
func (h Header) MessageID() string { return h.ID }

func (h Header) sealed() {}

// Message is one of Event, CreateSessionRequest, CreateSessionResult,
// OpenSessionRequest, OpenSessionResult or UpdateSessionRequest.
type Message interface {
	Kind() Method
	MessageID() string
	sealed()
}

// Event is a notification from the companion, e.g. "dialog-shown".
type Event struct {
	Header
	Name string `json:"name"`
}

// NewEvent creates an event message.
func NewEvent(name string) *Event {
	return &Event{Header: newHeader(MethodEvent), Name: name}
}

// CreateSessionRequest asks the companion to persist a session document.
type CreateSessionRequest struct {
	Header
	SessionName string `json:"sessionName"`
	Data        string `json:"data"`
}

// NewCreateSessionRequest creates a create request for an encoded document.
func NewCreateSessionRequest(sessionName, data string) *CreateSessionRequest {
	return &CreateSessionRequest{Header: newHeader(MethodCreate), SessionName: sessionName, Data: data}
}

// CreateSessionResultData is returned once the companion saved a session.
type CreateSessionResultData struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// CreateSessionResult answers a CreateSessionRequest. Exactly one of Data
// and Error is set.
type CreateSessionResult struct {
	Header
	Context string                   `json:"context"`
	Data    *CreateSessionResultData `json:"data,omitempty"`
	Error   *Error                   `json:"error,omitempty"`
}

// NewCreateSessionResult creates a successful create result.
func NewCreateSessionResult(context, name, uri string) *CreateSessionResult {
	return &CreateSessionResult{
		Header:  newHeader(MethodCreate),
		Context: context,
		Data:    &CreateSessionResultData{Name: name, URI: uri},
	}
}

// NewCreateSessionResultWithError creates a failed create result.
func NewCreateSessionResultWithError(context string, err *Error) *CreateSessionResult {
	return &CreateSessionResult{Header: newHeader(MethodCreate), Context: context, Error: err}
}

// OpenSessionRequest asks the extension to restore a saved session.
type OpenSessionRequest struct {
	Header
	Name string `json:"name"`
	URI  string `json:"uri"`
	Data string `json:"data"`
}

// NewOpenSessionRequest creates an open request.
func NewOpenSessionRequest(name, uri, data string) *OpenSessionRequest {
	return &OpenSessionRequest{Header: newHeader(MethodOpen), Name: name, URI: uri, Data: data}
}

// OpenSessionResultData reports the outcome of a restore.
type OpenSessionResultData struct {
	Success bool `json:"success"`
}

// OpenSessionResult answers an OpenSessionRequest. Build it with
// OpenSessionResultWithSuccess or OpenSessionResultWithError.
type OpenSessionResult struct {
	Header
	Context string                 `json:"context"`
	Data    *OpenSessionResultData `json:"data,omitempty"`
	Error   *Error                 `json:"error,omitempty"`
}

// OpenSessionResultWithSuccess creates a result carrying a success flag.
func OpenSessionResultWithSuccess(context string, success bool) *OpenSessionResult {
	return &OpenSessionResult{
		Header:  newHeader(MethodOpen),
		Context: context,
		Data:    &OpenSessionResultData{Success: success},
	}
}

// OpenSessionResultWithError creates a result carrying an error.
func OpenSessionResultWithError(context string, err *Error) *OpenSessionResult {
	return &OpenSessionResult{Header: newHeader(MethodOpen), Context: context, Error: err}
}

// UpdateSessionRequest pushes a new tab snapshot for a persisted session.
type UpdateSessionRequest struct {
	Header
	URI  string `json:"uri"`
	Data string `json:"data"`
}

// NewUpdateSessionRequest creates an update request.
func NewUpdateSessionRequest(uri, data string) *UpdateSessionRequest {
	return &UpdateSessionRequest{Header: newHeader(MethodUpdate), URI: uri, Data: data}
}
