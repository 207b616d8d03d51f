package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/phin3has/argodash/internal/argocd"
	"github.com/phin3has/argodash/internal/progress"
)

type historyModel struct {
	styles styles

	app argocd.Application
	now func() time.Time

	width  int
	height int
	vp     viewport.Model

	selected int
}

func newHistoryModel(st styles, app argocd.Application, now func() time.Time) historyModel {
	vp := viewport.New(0, 0)
	vp.MouseWheelEnabled = false
	if now == nil {
		now = time.Now
	}
	m := historyModel{styles: st, app: app, now: now, vp: vp}
	m.vp.SetContent(m.renderBody())
	return m
}

func (m *historyModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.vp.Width = max(1, w)
	m.vp.Height = max(1, h-2)
	m.vp.SetContent(m.renderBody())
}

// selectedRevision returns the highlighted entry and whether it is the
// one currently deployed.
func (m historyModel) selectedRevision() (argocd.RevisionHistory, bool, bool) {
	if m.selected < 0 || m.selected >= len(m.app.History) {
		return argocd.RevisionHistory{}, false, false
	}
	return m.app.History[m.selected], m.selected == 0, true
}

func (m historyModel) Update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.vp.SetContent(m.renderBody())
				m.ensureVisible()
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.app.History)-1 {
				m.selected++
				m.vp.SetContent(m.renderBody())
				m.ensureVisible()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m historyModel) View() string {
	head := fmt.Sprintf("History: %s  enter=details  b=rollback  esc=close", m.app.Name)
	return lipgloss.JoinVertical(lipgloss.Top, m.styles.PanelHeader.Width(m.width).Render(head), m.vp.View())
}

func (m historyModel) renderBody() string {
	var lines []string
	if op := m.app.OperationState; op != nil && op.Phase == argocd.OperationRunning {
		lines = append(lines, m.styles.StatusWarn.Render("Operation in progress: "+string(op.Phase)+" "+op.Message), "")
	}
	if len(m.app.History) == 0 {
		return strings.Join(append(lines, "(no history in application status)"), "\n")
	}

	now := m.now()
	for i, h := range m.app.History {
		prefix := "  "
		st := m.styles.StatusValue
		if i == m.selected {
			prefix = "▶ "
			st = m.styles.SidebarSelected
		}
		current := ""
		if i == 0 {
			current = "  (current)"
		}
		when := "—"
		if !h.DeployedAt.IsZero() {
			when = humanize.RelTime(h.DeployedAt, now, "ago", "from now")
		}
		lines = append(lines, st.Render(fmt.Sprintf("%s#%d  %s  %s%s", prefix, h.ID, blankIfEmpty(shortRev(h.Revision), "—"), when, current)))
		lines = append(lines, "    duration: "+deployDuration(h))
		lines = append(lines, "    by: "+h.InitiatedBy.String())
		if h.Source != "" {
			lines = append(lines, "    source: "+h.Source)
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// deployDuration is deployedAt - deployStartedAt, or "—" when the start
// was not recorded.
func deployDuration(h argocd.RevisionHistory) string {
	if h.DeployStartedAt == nil || h.DeployedAt.IsZero() {
		return "—"
	}
	return progress.Elapsed(*h.DeployStartedAt, h.DeployedAt)
}

func (m *historyModel) ensureVisible() {
	if m.selected < 0 {
		m.selected = 0
	}
	m.vp.SetYOffset(max(0, m.selected*5-2))
}
