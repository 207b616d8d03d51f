package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) renderWelcome() string {
	title := m.styles.SidebarTitle.Render("Welcome to argodash")
	body := []string{
		title,
		"",
		"argodash is a terminal console for Argo CD.",
		"",
		"  d   diff live state against Git for the selected application",
		"  t   browse the resource tree with sync and health badges",
		"  y   sync (a dry run runs first)",
		"  p   follow a running sync",
		"  h   deployment history and rollback",
		"  ,   clusters, repositories, projects, certificates and GPG keys",
		"  ?   all key bindings",
		"",
		m.styles.Muted.Render("Press any key to continue. This screen is shown once."),
	}
	box := m.styles.Main.Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
