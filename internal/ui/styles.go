package ui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Header          lipgloss.Style
	PanelHeader     lipgloss.Style
	Sidebar         lipgloss.Style
	SidebarTitle    lipgloss.Style
	SidebarItem     lipgloss.Style
	SidebarSelected lipgloss.Style
	Main            lipgloss.Style
	StatusBar       lipgloss.Style
	StatusLabel     lipgloss.Style
	StatusValue     lipgloss.Style
	StatusWarn      lipgloss.Style
	Muted           lipgloss.Style
	Error           lipgloss.Style
	Selected        lipgloss.Style
}

func newStyles() styles {
	border := lipgloss.RoundedBorder()

	return styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("62")).
			Padding(0, 1),
		PanelHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1),
		Sidebar: lipgloss.NewStyle().
			Border(border).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		SidebarTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),
		SidebarItem: lipgloss.NewStyle(),
		SidebarSelected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")),
		Main: lipgloss.NewStyle().
			Border(border).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")),
		StatusLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		StatusValue: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		StatusWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Muted:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")),
	}
}

var (
	colorGood    = lipgloss.Color("10")
	colorBad     = lipgloss.Color("9")
	colorPending = lipgloss.Color("11")
	colorMissing = lipgloss.Color("13")
	colorUnknown = lipgloss.Color("8")
)

func syncColor(s string) lipgloss.Color {
	switch s {
	case "Synced":
		return colorGood
	case "OutOfSync":
		return colorBad
	}
	return colorUnknown
}

func healthColor(s string) lipgloss.Color {
	switch s {
	case "Healthy":
		return colorGood
	case "Degraded":
		return colorBad
	case "Progressing", "Suspended":
		return colorPending
	case "Missing":
		return colorMissing
	}
	return colorUnknown
}

// badge renders "[Sync/Health]" with each half in its status colour.
func badge(sync, health string) string {
	s := lipgloss.NewStyle().Foreground(syncColor(sync)).Render(blankIfEmpty(sync, "—"))
	if health == "" {
		return "[" + s + "]"
	}
	h := lipgloss.NewStyle().Foreground(healthColor(health)).Render(health)
	return "[" + s + "/" + h + "]"
}
