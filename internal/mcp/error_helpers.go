package mcp

import (
	"fmt"
	"strings"

	"github.com/aki/amber/internal/store"
)

// ErrorWithSuggestions is a tool error that names tools the client can try
// next. Cause, when set, is reachable through errors.Is and errors.As.
type ErrorWithSuggestions struct {
	Message     string
	Suggestions []string
	Cause       error
}

func (e *ErrorWithSuggestions) Error() string {
	if len(e.Suggestions) == 0 {
		return e.Message
	}
	return e.Message + "\n\nDid you mean to use one of these tools instead?\n  - " +
		strings.Join(e.Suggestions, "\n  - ") + "\n"
}

func (e *ErrorWithSuggestions) Unwrap() error { return e.Cause }

// NewErrorWithSuggestions creates a tool error without a cause.
func NewErrorWithSuggestions(message string, suggestions ...string) error {
	return &ErrorWithSuggestions{Message: message, Suggestions: suggestions}
}

// SessionNotFoundError is returned when a reference matches no stored session.
func SessionNotFoundError(ref string) error {
	return &ErrorWithSuggestions{
		Message:     fmt.Sprintf("session not found: %s", ref),
		Suggestions: []string{"resource_session_list - List all stored sessions"},
		Cause:       store.ErrNotFound,
	}
}

// InvalidParameterError reports an argument the tool cannot use.
func InvalidParameterError(param, expected string) error {
	return NewErrorWithSuggestions(
		fmt.Sprintf("invalid %s: expected %s", param, expected),
		"Use the tool descriptions to understand parameter requirements",
	)
}
