package overlay

import (
	"github.com/bnema/volmix/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const (
	focusColor     = "#6cfc05"
	focusTextColor = "#000"
	barEmptyColor  = "#f9f9f7"
)

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	index      lipgloss.Style
	focused    lipgloss.Style
	marker     lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
	barBracket lipgloss.Style
	empty      lipgloss.Style
	warning    lipgloss.Style
	help       lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		index:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		focused:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(focusTextColor)).Background(lipgloss.Color(focusColor)).Padding(0, 1),
		marker:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(focusColor)),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color(focusColor)),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color(barEmptyColor)),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		empty:      lipgloss.NewStyle().Faint(true),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		help:       lipgloss.NewStyle().Faint(true),
	}
}

// rowStyle paints an unfocused row with the rule's own colors.
func rowStyle(rule domain.Rule) lipgloss.Style {
	style := lipgloss.NewStyle().Padding(0, 1)
	if rule.FgColor != "" {
		style = style.Foreground(lipgloss.Color(rule.FgColor))
	}
	if rule.BgColor != "" {
		style = style.Background(lipgloss.Color(rule.BgColor))
	}
	return style
}
