// Package ui renders CLI output with lipgloss styles and rodaine tables.
package ui

import "github.com/charmbracelet/lipgloss"

// Palette shared by every command.
var (
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5484D"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#30A46C"))
	InfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#0091FF"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F5A623"))
	DimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8B8D98"))
	BoldStyle    = lipgloss.NewStyle().Bold(true)
)

// Line prefixes. SessionIcon heads session listings; WindowIcon marks a
// session that is open in a window.
const (
	SessionIcon = "🗂"
	WindowIcon  = "🪟"
	SuccessIcon = "✅"
	ErrorIcon   = "❌"
	InfoIcon    = "ⓘ"
	WarningIcon = "⚠️"
)
