package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	station  lipgloss.Style
	session  lipgloss.Style
	absent   lipgloss.Style
	section  lipgloss.Style
	heading  lipgloss.Style
	empty    lipgloss.Style
	meta     lipgloss.Style
	waiting  lipgloss.Style
	match    lipgloss.Style
	rejected lipgloss.Style
	live     lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		station:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Width(5),
		session:  lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		absent:   lipgloss.NewStyle().Faint(true),
		section:  lipgloss.NewStyle().MarginTop(1),
		heading:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		empty:    lipgloss.NewStyle().Faint(true),
		meta:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		waiting:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		match:    lipgloss.NewStyle().Foreground(lipgloss.Color("77")),
		rejected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		live:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
	}
}
