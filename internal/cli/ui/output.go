package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aki/amber/internal/browser"
	"github.com/aki/amber/internal/store"
)

// Error prints a styled error line to stderr.
func Error(format string, args ...interface{}) {
	fmt.Fprintf(stderr, "%s %s\n", ErrorIcon, ErrorStyle.Render(fmt.Sprintf(format, args...)))
}

func Success(format string, args ...interface{}) {
	fmt.Fprintf(stdout, "%s %s\n", SuccessIcon, SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

func Info(format string, args ...interface{}) {
	fmt.Fprintf(stdout, "%s %s\n", InfoIcon, InfoStyle.Render(fmt.Sprintf(format, args...)))
}

func Warning(format string, args ...interface{}) {
	fmt.Fprintf(stderr, "%s %s\n", WarningIcon, WarningStyle.Render(fmt.Sprintf(format, args...)))
}

// OutputLine prints an unstyled line.
func OutputLine(format string, args ...interface{}) {
	fmt.Fprintf(stdout, format+"\n", args...)
}

// SessionRow is a session together with its short index, if it has one.
type SessionRow struct {
	Index   string
	Session *store.Session
}

// DisplayID is the index when one is assigned, otherwise the id.
func (r SessionRow) DisplayID() string {
	if r.Index != "" {
		return r.Index
	}
	return r.Session.ID
}

// windowLabel names the window a session is bound to.
func windowLabel(s *store.Session) string {
	if s.WindowID == browser.WindowIDNone {
		return DimStyle.Render("closed")
	}
	return strconv.Itoa(s.WindowID)
}

func savedLabel(s *store.Session) string {
	if s.Confirmed() {
		return SuccessStyle.Render("saved")
	}
	return WarningStyle.Render("pending")
}

// PrintSessionList displays sessions as a table.
func PrintSessionList(rows []SessionRow) {
	if len(rows) == 0 {
		Info("No sessions found")
		return
	}

	tbl := NewTable("SESSION", "NAME", "WINDOW", "TABS", "STATE", "AUTO-SAVE", "UPDATED")
	for _, r := range rows {
		s := r.Session
		name := s.Name
		if name == "" {
			name = "-"
		}
		autoSave := "off"
		if s.AutoSave {
			autoSave = "on"
		}
		tbl.AddRow(r.DisplayID(), name, windowLabel(s), len(s.Tabs), savedLabel(s), autoSave, FormatTime(s.UpdatedAt))
	}

	PrintSectionHeader(SessionIcon, "Sessions", len(rows))
	tbl.Print()
	fmt.Fprintln(stdout)
}

// PrintSessionDetails displays one session with its saved tabs.
func PrintSessionDetails(r SessionRow) {
	s := r.Session
	name := s.Name
	if name == "" {
		name = "(unnamed)"
	}

	icon := SessionIcon
	if s.WindowID != browser.WindowIDNone {
		icon = WindowIcon
	}

	fmt.Fprintf(stdout, "%s %s %s\n", icon, BoldStyle.Render(name), DimStyle.Render(fmt.Sprintf("(%s)", r.DisplayID())))
	fmt.Fprintf(stdout, "   %s %s\n", DimStyle.Render("ID:"), s.ID)
	fmt.Fprintf(stdout, "   %s %s\n", DimStyle.Render("Window:"), windowLabel(s))
	fmt.Fprintf(stdout, "   %s %s\n", DimStyle.Render("State:"), savedLabel(s))
	if s.URI != "" {
		fmt.Fprintf(stdout, "   %s %s\n", DimStyle.Render("File:"), s.URI)
	}
	fmt.Fprintf(stdout, "   %s %t\n", DimStyle.Render("Auto-save:"), s.AutoSave)
	fmt.Fprintf(stdout, "   %s %s\n", DimStyle.Render("Created:"), FormatTime(s.CreatedAt))
	fmt.Fprintf(stdout, "   %s %s\n", DimStyle.Render("Updated:"), FormatTime(s.UpdatedAt))

	fmt.Fprintf(stdout, "   %s\n", DimStyle.Render(fmt.Sprintf("Tabs (%d):", len(s.Tabs))))
	for i, url := range s.Tabs {
		fmt.Fprintf(stdout, "     %2d. %s\n", i+1, Truncate(url, 100))
	}
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return strings.TrimRight(string(runes[:n-3]), " ") + "..."
}

// FormatDuration formats a duration into a human-readable string
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "< 1m"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// FormatTime formats a time for display
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute") + " ago"
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour") + " ago"
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day") + " ago"
	default:
		return t.Format("2006-01-02 15:04")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
