package commands

import (
	"github.com/spf13/cobra"

	"github.com/aki/amber/internal/app"
	"github.com/aki/amber/internal/core/config"
	"github.com/aki/amber/internal/core/logger"
)

// newContainer builds the container for the data directory named by the
// global flags.
func newContainer(cmd *cobra.Command) (*app.Container, error) {
	explicit, _ := cmd.Flags().GetString("data-dir")
	dataDir, err := config.ResolveDataDir(explicit)
	if err != nil {
		return nil, err
	}
	return app.NewContainer(dataDir, logger.FromContext(cmd.Context()))
}
