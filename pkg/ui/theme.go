package ui

import "github.com/charmbracelet/lipgloss"

// Theme defines the colour palette of the task form. Colours are ANSI
// 256-colour codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	LabelText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Indexed by priority-1; priorities outside 1..5 use NormalText.
	PriorityColors [5]lipgloss.Color

	InfoText    lipgloss.Color
	WarningText lipgloss.Color
	ErrorText   lipgloss.Color
	BorderColor lipgloss.Color
}

// DefaultTheme suits dark terminals.
var DefaultTheme = Theme{
	NormalText:         lipgloss.Color("252"),
	FaintText:          lipgloss.Color("243"),
	LabelText:          lipgloss.Color("110"),
	SelectedBackground: lipgloss.Color("237"),
	SelectedForeground: lipgloss.Color("231"),
	PriorityColors: [5]lipgloss.Color{
		lipgloss.Color("250"),
		lipgloss.Color("114"),
		lipgloss.Color("179"),
		lipgloss.Color("208"),
		lipgloss.Color("196"),
	},
	InfoText:    lipgloss.Color("114"),
	WarningText: lipgloss.Color("214"),
	ErrorText:   lipgloss.Color("203"),
	BorderColor: lipgloss.Color("240"),
}

// PriorityColor returns the colour for a priority. Out-of-range values
// return NormalText.
func (theme Theme) PriorityColor(priority int) lipgloss.Color {
	if priority < 1 || priority > len(theme.PriorityColors) {
		return theme.NormalText
	}
	return theme.PriorityColors[priority-1]
}
