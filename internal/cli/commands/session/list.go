package session

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/aki/amber/internal/browser"
	"github.com/aki/amber/internal/cli/ui"
	"github.com/aki/amber/internal/store"
)

func listCmd() *cobra.Command {
	var openOnly bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored sessions",
		Long: `List all stored sessions.

Shows index, name, bound window, tab count, whether the companion has saved
the session, and the auto-save setting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := newContainer(cmd)
			if err != nil {
				return err
			}

			sessions, err := c.Store.List(ctx)
			if err != nil {
				return err
			}

			rows := make([]ui.SessionRow, 0, len(sessions))
			for _, s := range sessions {
				if openOnly && s.WindowID == browser.WindowIDNone {
					continue
				}
				rows = append(rows, row(ctx, c, s))
			}
			sortRows(rows)

			if ui.GlobalFormatter.IsJSON() {
				out := make([]*store.Session, 0, len(rows))
				for _, r := range rows {
					out = append(out, r.Session)
				}
				return ui.GlobalFormatter.Output(out)
			}

			ui.PrintSessionList(rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&openOnly, "open", false, "Only list sessions bound to a window")

	return cmd
}

// sortRows orders indexed sessions by index, then the rest by id.
func sortRows(rows []ui.SessionRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch {
		case a.Index != "" && b.Index != "":
			if len(a.Index) != len(b.Index) {
				return len(a.Index) < len(b.Index)
			}
			return a.Index < b.Index
		case a.Index != "":
			return true
		case b.Index != "":
			return false
		default:
			return a.Session.ID < b.Session.ID
		}
	})
}
