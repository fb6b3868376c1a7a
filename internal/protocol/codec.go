package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownMethod is returned by Decode for a method with no message type.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrAmbiguousResult is returned by Decode for a result carrying both data and error.
	ErrAmbiguousResult = errors.New("result carries both data and error")
)

// Encode serializes a message to its JSON wire form.
func Encode(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", m.Kind(), err)
	}
	return data, nil
}

// envelope is decoded first to pick the concrete type.
type envelope struct {
	Method  Method          `json:"method"`
	Context *string         `json:"context"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func (e envelope) isResult() bool { return e.Context != nil }

func (e envelope) ambiguous() bool {
	return isPresent(e.Data) && isPresent(e.Error)
}

func isPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// Decode parses a JSON message. Results are told apart from requests of the
// same method by the presence of a context field.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}

	var m Message
	switch {
	case env.Method == MethodEvent:
		m = &Event{}
	case env.Method == MethodCreate && env.isResult():
		m = &CreateSessionResult{}
	case env.Method == MethodCreate:
		m = &CreateSessionRequest{}
	case env.Method == MethodOpen && env.isResult():
		m = &OpenSessionResult{}
	case env.Method == MethodOpen:
		m = &OpenSessionRequest{}
	case env.Method == MethodUpdate:
		m = &UpdateSessionRequest{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, env.Method)
	}

	if env.isResult() && env.ambiguous() {
		return nil, fmt.Errorf("%s result: %w", env.Method, ErrAmbiguousResult)
	}

	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to decode %s message: %w", env.Method, err)
	}
	return m, nil
}

// Handshake is the empty payload sent when the channel opens.
func Handshake() json.RawMessage {
	return json.RawMessage("{}")
}
