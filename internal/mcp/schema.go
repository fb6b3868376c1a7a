package mcp

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Tool parameters are declared as structs. Each exported field with a json
// name becomes a tool property; the tags read are
//
//	json:"name"            property name
//	mcp:"required"         the client must send it
//	description:"..."      shown to the client
//	enum:"a,b,c"           allowed string values

// SessionIDParams identifies one stored session.
type SessionIDParams struct {
	SessionID string `json:"session_identifier" mcp:"required" description:"Session ID or index"`
}

// SessionListParams filters the session list.
type SessionListParams struct {
	State string `json:"state,omitempty" enum:"all,open,closed" description:"Only sessions bound to a window (open) or not (closed)"`
}

// SessionAutoSaveParams toggles auto-save for a session.
type SessionAutoSaveParams struct {
	SessionID string `json:"session_identifier" mcp:"required" description:"Session ID or index"`
	Enabled   bool   `json:"enabled" mcp:"required" description:"Whether tab changes are saved automatically"`
}

// StructToToolOptions derives tool properties from a parameter struct.
// Fields of unsupported kinds are skipped.
func StructToToolOptions(params interface{}) ([]mcp.ToolOption, error) {
	t := reflect.TypeOf(params)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tool parameters must be a struct, got %T", params)
	}

	var out []mcp.ToolOption
	for _, f := range reflect.VisibleFields(t) {
		if opt, ok := propertyOption(f); ok {
			out = append(out, opt)
		}
	}
	return out, nil
}

func propertyOption(f reflect.StructField) (mcp.ToolOption, bool) {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if !f.IsExported() || name == "" || name == "-" {
		return nil, false
	}

	desc := f.Tag.Get("description")
	if desc == "" {
		desc = name
	}
	props := []mcp.PropertyOption{mcp.Description(desc)}
	if f.Tag.Get("mcp") == "required" {
		props = append(props, mcp.Required())
	}

	switch f.Type.Kind() { //nolint:exhaustive // other kinds are not tool inputs
	case reflect.String:
		if enum := f.Tag.Get("enum"); enum != "" {
			props = append(props, mcp.Enum(strings.Split(enum, ",")...))
		}
		return mcp.WithString(name, props...), true
	case reflect.Int, reflect.Int64, reflect.Float64:
		return mcp.WithNumber(name, props...), true
	case reflect.Bool:
		return mcp.WithBoolean(name, props...), true
	}
	return nil, false
}

// WithStructOptions returns the description followed by the properties of
// params.
func WithStructOptions(description string, params interface{}) ([]mcp.ToolOption, error) {
	props, err := StructToToolOptions(params)
	if err != nil {
		return nil, err
	}
	return append([]mcp.ToolOption{mcp.WithDescription(description)}, props...), nil
}

// UnmarshalArgs decodes the call arguments into target through JSON, so the
// json tags of the parameter struct apply.
func UnmarshalArgs[T any](request mcp.CallToolRequest, target *T) error {
	raw, err := json.Marshal(request.GetArguments())
	if err != nil {
		return fmt.Errorf("failed to encode arguments: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
