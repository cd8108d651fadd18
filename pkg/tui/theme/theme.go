// Package theme centralizes Lip Gloss styles for the weekly grid UI.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Theme groups the styles used across the grid and its overlays.
type Theme struct {
	Title      lipgloss.Style
	DayHeading lipgloss.Style
	Gutter     lipgloss.Style
	HourLine   lipgloss.Style
	WorkShade  lipgloss.Style

	Banner  lipgloss.Style
	Dirty   lipgloss.Style
	Overlay lipgloss.Style

	Footer FooterTheme
}

// FooterTheme groups styles for the bottom status/help bar.
type FooterTheme struct {
	Mode   lipgloss.Style
	Status lipgloss.Style
	Help   lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	return Theme{
		Title:      lipgloss.NewStyle().Bold(true),
		DayHeading: lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true),
		Gutter:     lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		HourLine:   lipgloss.NewStyle().Foreground(lipgloss.Color("237")),
		WorkShade:  lipgloss.NewStyle().Background(lipgloss.Color("235")),
		Banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("130")).
			Padding(0, 1),
		Dirty: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		Overlay: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(1, 2),
		Footer: FooterTheme{
			Mode:   lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
			Status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		},
	}
}

// Block returns the fill style for an event block. Selection lightens the
// base color so the palette stays recognizable.
func (t Theme) Block(hex string, selected bool) lipgloss.Style {
	fg := lipgloss.Color("231")
	bg := hex
	if c, err := colorful.Hex(hex); err == nil {
		h, s, l := c.Hsl()
		if selected {
			l += (1 - l) * 0.35
		} else {
			l *= 0.85
		}
		bg = colorful.Hsl(h, s, l).Hex()
	}
	style := lipgloss.NewStyle().Foreground(fg).Background(lipgloss.Color(bg))
	if selected {
		style = style.Bold(true)
	}
	return style
}
