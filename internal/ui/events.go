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

type eventsModel struct {
	styles styles
	client argocd.AppClient
	app    string

	// ref narrows the events to one resource; nil means the application.
	ref *argocd.ResourceRef
	now func() time.Time

	width  int
	height int
	vp     viewport.Model

	loading bool
	err     error
	events  []argocd.Event
}

type eventsLoadedMsg struct {
	app    string
	events []argocd.Event
	err    error
}

func newEventsModel(st styles, c argocd.AppClient, appName string, ref *argocd.ResourceRef, now func() time.Time) eventsModel {
	vp := viewport.New(0, 0)
	vp.MouseWheelEnabled = false
	if now == nil {
		now = time.Now
	}
	return eventsModel{styles: st, client: c, app: appName, ref: ref, now: now, vp: vp, loading: true}
}

func (m eventsModel) initCmd() tea.Cmd {
	c, app, ref := m.client, m.app, m.ref
	return func() tea.Msg {
		ev, err := c.ListEvents(context.Background(), app, ref)
		return eventsLoadedMsg{app: app, events: ev, err: err}
	}
}

func (m *eventsModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.vp.Width = max(1, w)
	m.vp.Height = max(1, h-2)
	m.vp.SetContent(m.renderBody())
}

func (m eventsModel) Update(msg tea.Msg) (eventsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case eventsLoadedMsg:
		if msg.app != m.app {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.events = msg.events
		m.vp.SetContent(m.renderBody())
		return m, nil
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			m.vp.SetContent(m.renderBody())
			return m, m.initCmd()
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m eventsModel) View() string {
	target := m.app
	if m.ref != nil {
		target += "  [resource:" + m.ref.Kind + "/" + m.ref.Name + "]"
	}
	head := fmt.Sprintf("Events: %s  r=reload  esc=close", target)
	return lipgloss.JoinVertical(lipgloss.Top, m.styles.PanelHeader.Width(m.width).Render(head), m.vp.View())
}

func (m eventsModel) renderBody() string {
	if m.loading {
		return "Loading…"
	}
	if m.err != nil {
		return "Error:\n\n" + m.err.Error() + "\n\nr=retry"
	}
	if len(m.events) == 0 {
		return "(no events)"
	}
	now := m.now()
	lines := make([]string, 0, len(m.events))
	for _, e := range m.events {
		ts := "—"
		if !e.Timestamp.IsZero() {
			ts = humanize.RelTime(e.Timestamp, now, "ago", "from now")
		}
		typ := blankIfEmpty(strings.TrimSpace(e.Type), "—")
		line := fmt.Sprintf("%-16s %-7s %-18s %s", ts, typ, strings.TrimSpace(e.Reason), strings.TrimSpace(e.Message))
		if e.Count > 1 {
			line += fmt.Sprintf(" (x%d)", e.Count)
		}
		if obj := strings.TrimSpace(e.InvolvedObject); obj != "" && m.ref == nil {
			line += " (" + obj + ")"
		}

		style := m.styles.StatusValue
		if strings.EqualFold(typ, "warning") {
			style = m.styles.StatusWarn
		}
		lines = append(lines, style.Render(line))
	}
	return strings.Join(lines, "\n")
}
