package tui

import "github.com/charmbracelet/lipgloss"

var (
	gold      = lipgloss.Color("#B8860B")
	paleGold  = lipgloss.Color("#F3E5AB")
	ink       = lipgloss.Color("#3B2F2F")
	muted     = lipgloss.Color("#8A7F72")
	errorRed  = lipgloss.Color("#C62828")
	successGr = lipgloss.Color("#2E7D32")
)

// Styles groups the lipgloss styles used by the storefront screens
type Styles struct {
	Brand    lipgloss.Style
	Hero     lipgloss.Style
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	CTA      lipgloss.Style
	Dim      lipgloss.Style
	DotOn    lipgloss.Style
	DotOff   lipgloss.Style
	Section  lipgloss.Style
	Selected lipgloss.Style
	Price    lipgloss.Style
	Quote    lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Help     lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Brand:    lipgloss.NewStyle().Bold(true).Foreground(gold),
		Hero:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(gold).Padding(0, 1),
		Title:    lipgloss.NewStyle().Bold(true).Foreground(ink),
		Subtitle: lipgloss.NewStyle().Foreground(muted),
		CTA:      lipgloss.NewStyle().Foreground(paleGold).Background(gold).Padding(0, 1),
		Dim:      lipgloss.NewStyle().Foreground(muted),
		DotOn:    lipgloss.NewStyle().Foreground(gold),
		DotOff:   lipgloss.NewStyle().Foreground(muted),
		Section:  lipgloss.NewStyle().Bold(true).Foreground(gold).MarginTop(1),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(gold),
		Price:    lipgloss.NewStyle().Foreground(ink),
		Quote:    lipgloss.NewStyle().Italic(true).Foreground(ink),
		Error:    lipgloss.NewStyle().Foreground(errorRed),
		Success:  lipgloss.NewStyle().Foreground(successGr),
		Help:     lipgloss.NewStyle().Foreground(muted),
	}
}
