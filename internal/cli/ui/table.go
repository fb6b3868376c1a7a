package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rodaine/table"
)

// NewTable starts a table on the current output. Widths are measured with
// lipgloss so styled cells line up; the first column is bold.
func NewTable(headers ...interface{}) table.Table {
	return table.New(headers...).
		WithWriter(stdout).
		WithPadding(2).
		WithWidthFunc(lipgloss.Width).
		WithFirstColumnFormatter(func(format string, vals ...interface{}) string {
			return BoldStyle.Render(fmt.Sprintf(format, vals...))
		})
}

// PrintSectionHeader prints "<icon> <title> (<count>)" after a blank line.
func PrintSectionHeader(icon, title string, count int) {
	fmt.Fprintf(stdout, "\n%s %s (%d)\n", icon, title, count)
}
