package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Destinations for all CLI output.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutput redirects normal and error output. The global formatter is
// rebuilt so it writes to the new destinations.
func SetOutput(out, errOut io.Writer) {
	stdout, stderr = out, errOut
	format := FormatPretty
	if GlobalFormatter.IsJSON() {
		format = FormatJSON
	}
	_ = SetGlobalFormatter(format)
}

// OutputFormat selects how commands print their results.
type OutputFormat string

const (
	FormatPretty OutputFormat = "pretty"
	FormatJSON   OutputFormat = "json"
)

// ParseFormat converts the --format flag; empty means pretty.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case "":
		return FormatPretty, nil
	case FormatPretty, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// Formatter prints command results and errors.
type Formatter interface {
	Output(data interface{}) error
	OutputError(err error) error
	IsJSON() bool
}

// prettyFormatter prints preformatted strings as they are and anything else
// with its default formatting.
type prettyFormatter struct {
	out, errOut io.Writer
}

// NewPrettyFormatter creates a formatter for humans.
func NewPrettyFormatter() Formatter {
	return &prettyFormatter{out: stdout, errOut: stderr}
}

func (f *prettyFormatter) Output(data interface{}) error {
	var err error
	if s, ok := data.(string); ok {
		_, err = io.WriteString(f.out, s)
	} else {
		_, err = fmt.Fprintln(f.out, data)
	}
	return err
}

func (f *prettyFormatter) OutputError(err error) error {
	_, werr := fmt.Fprintln(f.errOut, ErrorIcon, ErrorStyle.Render(err.Error()))
	return werr
}

func (f *prettyFormatter) IsJSON() bool { return false }

// jsonFormatter writes indented JSON documents; errors stay plain text on
// stderr.
type jsonFormatter struct {
	enc    *json.Encoder
	errOut io.Writer
}

// NewJSONFormatter creates a formatter for scripts.
func NewJSONFormatter() Formatter {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return &jsonFormatter{enc: enc, errOut: stderr}
}

func (f *jsonFormatter) Output(data interface{}) error {
	return f.enc.Encode(data)
}

func (f *jsonFormatter) OutputError(err error) error {
	_, werr := fmt.Fprintf(f.errOut, "Error: %v\n", err)
	return werr
}

func (f *jsonFormatter) IsJSON() bool { return true }

// GlobalFormatter is the formatter selected by --format.
var GlobalFormatter Formatter = NewPrettyFormatter()

// SetGlobalFormatter replaces GlobalFormatter.
func SetGlobalFormatter(format OutputFormat) error {
	switch format {
	case FormatPretty:
		GlobalFormatter = NewPrettyFormatter()
	case FormatJSON:
		GlobalFormatter = NewJSONFormatter()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	return nil
}
