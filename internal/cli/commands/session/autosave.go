package session

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aki/amber/internal/cli/ui"
	"github.com/aki/amber/internal/store"
)

func autoSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "autosave <session> <on|off>",
		Short: "Turn auto-save on or off for a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := parseSwitch(args[1])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			c, err := newContainer(cmd)
			if err != nil {
				return err
			}

			r, err := resolveSession(ctx, c, args[0])
			if err != nil {
				return err
			}
			if _, err := c.Store.Update(ctx, r.Session.ID, store.Changes{AutoSave: &enabled}); err != nil {
				return fmt.Errorf("failed to update session: %w", err)
			}

			state := "off"
			if enabled {
				state = "on"
			}
			ui.Success("Auto-save %s for session %s", state, r.DisplayID())
			return nil
		},
	}
}

func parseSwitch(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid auto-save value %q: expected on or off", s)
	}
	return b, nil
}
