package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/phin3has/argodash/internal/argocd"
)

type revisionDetailsModel struct {
	styles styles
	client argocd.AppClient

	appName string
	chart   string
	entry   argocd.RevisionHistory
	now     func() time.Time

	width  int
	height int
	vp     viewport.Model

	loading bool
	err     error
	meta    argocd.RevisionMeta
	details argocd.ChartMeta
}

type revisionDetailsLoadedMsg struct {
	revision string
	meta     argocd.RevisionMeta
	chart    argocd.ChartMeta
	err      error
}

// Helm sources have no commit metadata; they get chart details instead.
func newRevisionDetailsModel(st styles, c argocd.AppClient, app argocd.Application, entry argocd.RevisionHistory, now func() time.Time) revisionDetailsModel {
	vp := viewport.New(0, 0)
	vp.MouseWheelEnabled = false
	if now == nil {
		now = time.Now
	}
	return revisionDetailsModel{styles: st, client: c, appName: app.Name, chart: app.Chart, entry: entry, now: now, vp: vp, loading: true}
}

func (m revisionDetailsModel) initCmd() tea.Cmd {
	c, app, chart, rev := m.client, m.appName, m.chart, m.entry.Revision
	return func() tea.Msg {
		if chart != "" {
			details, err := c.ChartDetails(context.Background(), app, rev)
			return revisionDetailsLoadedMsg{revision: rev, chart: details, err: err}
		}
		meta, err := c.RevisionMetadata(context.Background(), app, rev)
		return revisionDetailsLoadedMsg{revision: rev, meta: meta, err: err}
	}
}

func (m *revisionDetailsModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.vp.Width = max(1, w)
	m.vp.Height = max(1, h-2)
	m.vp.SetContent(m.renderBody())
}

func (m revisionDetailsModel) Update(msg tea.Msg) (revisionDetailsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case revisionDetailsLoadedMsg:
		if msg.revision != m.entry.Revision {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.meta = msg.meta
		m.details = msg.chart
		m.vp.SetContent(m.renderBody())
		return m, nil
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m revisionDetailsModel) View() string {
	head := fmt.Sprintf("Revision: #%d %s  esc=close", m.entry.ID, shortRev(m.entry.Revision))
	return lipgloss.JoinVertical(lipgloss.Top, m.styles.PanelHeader.Width(m.width).Render(head), m.vp.View())
}

func (m revisionDetailsModel) renderBody() string {
	deployed := "—"
	if !m.entry.DeployedAt.IsZero() {
		deployed = m.entry.DeployedAt.UTC().Format(time.RFC3339) + " (" + humanize.RelTime(m.entry.DeployedAt, m.now(), "ago", "from now") + ")"
	}
	lines := []string{
		"Deployment:",
		"  id:       " + fmt.Sprint(m.entry.ID),
		"  revision: " + blankIfEmpty(m.entry.Revision, "—"),
		"  deployed: " + deployed,
		"  duration: " + deployDuration(m.entry),
		"  by:       " + m.entry.InitiatedBy.String(),
		"",
	}

	switch {
	case m.loading:
		lines = append(lines, "Loading metadata…")
	case m.err != nil:
		lines = append(lines, "Metadata unavailable:", "  "+m.err.Error())
	case m.chart != "":
		lines = append(lines,
			"Chart: "+m.chart,
			"  description: "+blankIfEmpty(strings.TrimSpace(m.details.Description), "—"),
			"  maintainers: "+blankIfEmpty(strings.Join(m.details.Maintainers, ", "), "—"),
			"  home:        "+blankIfEmpty(strings.TrimSpace(m.details.Home), "—"),
		)
	default:
		date := "—"
		if !m.meta.Date.IsZero() {
			date = humanize.Time(m.meta.Date)
		}
		lines = append(lines,
			"Metadata:",
			"  author:  "+blankIfEmpty(strings.TrimSpace(m.meta.Author), "—"),
			"  date:    "+date,
			"  tags:    "+blankIfEmpty(strings.Join(m.meta.Tags, ", "), "—"),
			"  message: "+blankIfEmpty(strings.TrimSpace(m.meta.Message), "—"),
		)
	}
	return strings.Join(lines, "\n")
}
