package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the viewer's styling definitions.
type Styles struct {
	Title  lipgloss.Style
	Phase  lipgloss.Style
	Canvas lipgloss.Style

	// Scene markers
	Pose   lipgloss.Style
	Target lipgloss.Style

	// Layer panes, picked by opacity
	PaneShown  lipgloss.Style
	PaneFading lipgloss.Style
	PaneHidden lipgloss.Style

	Help lipgloss.Style
}

// DefaultStyles creates the default style set using the default renderer.
func DefaultStyles() Styles {
	return NewStyles(lipgloss.DefaultRenderer())
}

// NewStyles creates the style set using the given renderer.
func NewStyles(r *lipgloss.Renderer) Styles {
	pane := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	return Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1),
		Phase: r.NewStyle().
			Foreground(lipgloss.Color("214")),
		Canvas: r.NewStyle(),

		Pose: r.NewStyle().
			Foreground(lipgloss.Color("244")),
		Target: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")),

		PaneShown: pane.
			BorderForeground(lipgloss.Color("62")).
			Foreground(lipgloss.Color("15")),
		PaneFading: pane.
			BorderForeground(lipgloss.Color("240")).
			Foreground(lipgloss.Color("250")).
			Faint(true),
		PaneHidden: pane.
			BorderForeground(lipgloss.Color("236")).
			Foreground(lipgloss.Color("238")),

		Help: r.NewStyle().
			Foreground(lipgloss.Color("241")),
	}
}

// paneStyle picks the pane style for a layer opacity.
func (s Styles) paneStyle(opacity float32) lipgloss.Style {
	switch {
	case opacity >= 1:
		return s.PaneShown
	case opacity > 0:
		return s.PaneFading
	default:
		return s.PaneHidden
	}
}
