package sessions

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	rule      lipgloss.Style
	id        lipgloss.Style
	detail    lipgloss.Style
	label     lipgloss.Style
	empty     lipgloss.Style
	child     lipgloss.Style
	running   lipgloss.Style
	completed lipgloss.Style
	failed    lipgloss.Style
	stopped   lipgloss.Style
	created   lipgloss.Style
	input     lipgloss.Style
	output    lipgloss.Style
	errorLine lipgloss.Style
	lifecycle lipgloss.Style
	timestamp lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		rule:      lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		id:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		label:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		empty:     lipgloss.NewStyle().Faint(true),
		child:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		running:   lipgloss.NewStyle().Foreground(lipgloss.Color("69")),
		completed: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		failed:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		stopped:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		created:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		input:     lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		output:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		errorLine: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		lifecycle: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}
