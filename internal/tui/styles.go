// Package tui provides interactive terminal UI components for the fsk CLI.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agenticgokit/fsk/pkg/scaffold"
)

// Color palette
var (
	primaryColor   = lipgloss.Color("#0175C2") // Flutter blue
	secondaryColor = lipgloss.Color("#02569B") // Dart navy
	successColor   = lipgloss.Color("#10B981") // Green
	errorColor     = lipgloss.Color("#EF4444") // Red
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	accentColor    = lipgloss.Color("#13B9FD") // Sky
)

// Box styles
var (
	// BoxStyle is the main container style
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	// HeaderStyle for headers
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	// TitleStyle for main titles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 2)

	// SectionHeaderStyle for report sections
	SectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(secondaryColor).
				Margin(1, 0, 0, 0)
)

// Text styles
var (
	// SelectedStyle for the highlighted picker choice
	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor)

	// CursorStyle for the cursor indicator
	CursorStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	// MutedStyle for less important text
	MutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// SuccessStyle for success indicators
	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	// ErrorStyle for error indicators
	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	// WarningStyle for warnings
	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	// PathStyle for file paths
	PathStyle = lipgloss.NewStyle().
			Foreground(accentColor)
)

// Help bar style
var (
	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)
)

// ActionStyle returns the style a planned file action is printed with.
func ActionStyle(action scaffold.Action) lipgloss.Style {
	switch action {
	case scaffold.ActionCreate:
		return SuccessStyle
	case scaffold.ActionOverwrite:
		return WarningStyle
	case scaffold.ActionUpdateBarrel:
		return PathStyle
	case scaffold.ActionConflict:
		return ErrorStyle
	default:
		return MutedStyle
	}
}

// ActionSymbol returns the one-character marker for a planned file action.
func ActionSymbol(action scaffold.Action) string {
	switch action {
	case scaffold.ActionCreate:
		return "+"
	case scaffold.ActionOverwrite:
		return "~"
	case scaffold.ActionUpdateBarrel:
		return "»"
	case scaffold.ActionConflict:
		return "✗"
	default:
		return "="
	}
}
