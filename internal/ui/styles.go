package ui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Header       lipgloss.Style
	Pane         lipgloss.Style
	PaneFocused  lipgloss.Style
	PaneTitle    lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	Muted        lipgloss.Style
	SoldOut      lipgloss.Style
	Modal        lipgloss.Style
	StatusBar    lipgloss.Style
	StatusLabel  lipgloss.Style
	StatusValue  lipgloss.Style
	StatusWarn   lipgloss.Style
	Error        lipgloss.Style
}

func newStyles() styles {
	border := lipgloss.RoundedBorder()

	return styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("28")).
			Padding(0, 1),
		Pane: lipgloss.NewStyle().
			Border(border).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		PaneFocused: lipgloss.NewStyle().
			Border(border).
			BorderForeground(lipgloss.Color("70")).
			Padding(0, 1),
		PaneTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("149")),
		Item: lipgloss.NewStyle(),
		ItemSelected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("22")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		SoldOut: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("70")).
			Padding(1, 2),
		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")),
		StatusLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		StatusValue: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		StatusWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}
