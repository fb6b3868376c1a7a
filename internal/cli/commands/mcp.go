package commands

import (
	"github.com/spf13/cobra"

	"github.com/aki/amber/internal/mcp"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server",
		Long: `Start a Model Context Protocol server on stdin and stdout.

The server exposes stored sessions as resources (amber://session and
amber://session/{id}) and offers tools to inspect them, toggle auto-save and
remove them. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(c.Store, c.Index, c.Logger)
			if err != nil {
				return err
			}
			return server.Start(cmd.Context())
		},
	}
}
