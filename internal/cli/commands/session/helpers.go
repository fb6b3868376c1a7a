package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aki/amber/internal/app"
	"github.com/aki/amber/internal/cli/ui"
	"github.com/aki/amber/internal/core/config"
	"github.com/aki/amber/internal/core/logger"
	"github.com/aki/amber/internal/store"
)

func newContainer(cmd *cobra.Command) (*app.Container, error) {
	explicit, _ := cmd.Flags().GetString("data-dir")
	dataDir, err := config.ResolveDataDir(explicit)
	if err != nil {
		return nil, err
	}
	return app.NewContainer(dataDir, logger.FromContext(cmd.Context()))
}

// resolveSession finds the session named by ref, an id or an index.
func resolveSession(ctx context.Context, c *app.Container, ref string) (ui.SessionRow, error) {
	id := c.Index.Resolve(ctx, ref)
	s, err := c.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ui.SessionRow{}, fmt.Errorf("session not found: %s", ref)
		}
		return ui.SessionRow{}, fmt.Errorf("failed to get session: %w", err)
	}
	return row(ctx, c, s), nil
}

func row(ctx context.Context, c *app.Container, s *store.Session) ui.SessionRow {
	r := ui.SessionRow{Session: s}
	if idx, ok := c.Index.Get(ctx, s.ID); ok {
		r.Index = idx.String()
	}
	return r
}
