package catalog

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	item      lipgloss.Style
	detail    lipgloss.Style
	price     lipgloss.Style
	label     lipgloss.Style
	warning   lipgloss.Style
	section   lipgloss.Style
	empty     lipgloss.Style
	key       lipgloss.Style
	meta      lipgloss.Style
	self      lipgloss.Style
	other     lipgloss.Style
	timestamp lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		item:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		price:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("150")),
		label:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		warning:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:   lipgloss.NewStyle().MarginTop(1),
		empty:     lipgloss.NewStyle().Faint(true),
		key:       lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		meta:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		self:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		other:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
}
