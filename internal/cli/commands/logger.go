package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aki/amber/internal/core/logger"
)

var (
	flagLogLevel  string
	flagLogFormat string
)

// RegisterLoggerFlags adds --log-level and --log-format to cmd and its
// children.
func RegisterLoggerFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
}

// CreateLogger builds the stderr logger described by the logging flags.
// Stdout is left to command output and to the MCP transport.
func CreateLogger() (logger.Logger, error) {
	opts := []logger.Option{logger.WithOutput(os.Stderr)}

	level, err := logger.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, err
	}
	opts = append(opts, logger.WithLevel(level))

	format, err := logger.ParseFormat(flagLogFormat)
	if err != nil {
		return nil, err
	}
	opts = append(opts, logger.WithFormat(format))

	return logger.New(opts...), nil
}
