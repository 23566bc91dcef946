package dashboard

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	statKey    lipgloss.Style
	statValue  lipgloss.Style
	item       lipgloss.Style
	meta       lipgloss.Style
	section    lipgloss.Style
	sectionHdr lipgloss.Style
	empty      lipgloss.Style
	barBracket lipgloss.Style
	barEmpty   lipgloss.Style
	protein    lipgloss.Style
	carbs      lipgloss.Style
	fat        lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		statKey:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		statValue:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		item:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		meta:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		section:    lipgloss.NewStyle().MarginTop(1),
		sectionHdr: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		empty:      lipgloss.NewStyle().Faint(true),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		protein:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		carbs:      lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
		fat:        lipgloss.NewStyle().Foreground(lipgloss.Color("210")),
	}
}
