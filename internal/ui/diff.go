package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/phin3has/argodash/internal/argocd"
	"github.com/phin3has/argodash/internal/correlate"
	"github.com/phin3has/argodash/internal/diff"
	"github.com/phin3has/argodash/internal/normalize"
)

// resourceDiff is one managed resource as the diff panel shows it.
type resourceDiff struct {
	view  diff.View
	badge correlate.Badge
	hook  bool
}

type diffModel struct {
	styles styles
	client argocd.AppClient
	app    string

	filter *argocd.ResourceRef

	width  int
	height int
	vp     viewport.Model

	loading    bool
	err        error
	managedErr error
	resources  []resourceDiff

	opts           normalize.Options
	layout         diff.Layout
	showWhitespace bool
	driftOnly      bool
}

type diffLoadedMsg struct {
	app   string
	state argocd.AppState
	err   error
}

func newDiffModel(st styles, c argocd.AppClient, appName string, filter *argocd.ResourceRef, opts normalize.Options, layout diff.Layout) diffModel {
	vp := viewport.New(0, 0)
	vp.MouseWheelEnabled = false
	return diffModel{styles: st, client: c, app: appName, filter: filter, vp: vp, loading: true, opts: opts, layout: layout}
}

func (m diffModel) initCmd() tea.Cmd {
	c, app := m.client, m.app
	return func() tea.Msg {
		st, err := argocd.FetchAppState(context.Background(), c, app)
		return diffLoadedMsg{app: app, state: st, err: err}
	}
}

func (m *diffModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.vp.Width = max(1, w)
	m.vp.Height = max(1, h-2)
	m.vp.SetContent(m.renderBody())
}

func (m diffModel) Update(msg tea.Msg) (diffModel, tea.Cmd) {
	switch msg := msg.(type) {
	case diffLoadedMsg:
		if msg.app != m.app {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.managedErr = msg.state.ManagedErr
		m.resources = buildDiffs(msg.state, m.filter, m.opts)
		m.vp.SetContent(m.renderBody())
		return m, nil
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "W":
			m.showWhitespace = !m.showWhitespace
			m.vp.SetContent(m.renderBody())
			return m, nil
		case "l":
			m.layout = m.layout.Toggle()
			m.vp.SetContent(m.renderBody())
			return m, nil
		case "o":
			m.driftOnly = !m.driftOnly
			m.vp.SetContent(m.renderBody())
			return m, nil
		case "r":
			m.loading = true
			m.vp.SetContent(m.renderBody())
			return m, m.initCmd()
		}
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m diffModel) View() string {
	filter := ""
	if m.filter != nil {
		filter = fmt.Sprintf("  [resource:%s/%s]", m.filter.Kind, m.filter.Name)
	}
	head := fmt.Sprintf("Diff: %s%s  [%s]  l=layout  W=whitespace  o=drift only  r=reload  esc=close", m.app, filter, m.layout)
	return lipgloss.JoinVertical(lipgloss.Top, m.styles.PanelHeader.Width(m.width).Render(head), m.vp.View())
}

// changed counts resources with a real diff.
func (m diffModel) changed() int {
	n := 0
	for _, r := range m.resources {
		if r.view.State == diff.StateDiff && r.view.Result.Changed() {
			n++
		}
	}
	return n
}

func (m diffModel) renderBody() string {
	if m.loading {
		return "Loading…"
	}
	if m.err != nil {
		return "Error:\n\n" + m.err.Error() + "\n\nr=retry"
	}
	if m.managedErr != nil {
		return "Error loading managed resources:\n\n" + m.managedErr.Error() + "\n\nr=retry"
	}
	if len(m.resources) == 0 {
		if m.filter != nil {
			return "(no managed state for selected resource)"
		}
		return "(no managed resources)"
	}

	parts := []string{m.styles.Muted.Render(fmt.Sprintf("%d resources, %d with changes", len(m.resources), m.changed())), ""}
	for _, r := range m.resources {
		if m.driftOnly && r.view.State != diff.StateDiff {
			continue
		}
		title := r.view.Ref.String()
		if r.hook {
			title += " (hook)"
		}
		titleStyle := m.styles.StatusValue
		if r.view.State == diff.StateDiff {
			titleStyle = m.styles.StatusWarn
		}
		parts = append(parts, titleStyle.Render(title)+" "+badge(r.badge.Sync, r.badge.Health))
		if msg := r.view.Message(); msg != "" {
			parts = append(parts, "  "+m.styles.Muted.Render(msg), "")
			continue
		}
		width := max(20, m.width-1)
		parts = append(parts, diff.Render(r.view.Result, m.layout, width, diff.RenderOptions{ShowWhitespace: m.showWhitespace}), "")
	}
	return strings.Join(parts, "\n")
}

// buildDiffs pairs each managed resource with its status and decides what
// to show for it. A filter narrows the list to one resource.
func buildDiffs(st argocd.AppState, filter *argocd.ResourceRef, opts normalize.Options) []resourceDiff {
	idx := correlate.NewIndex(st.App.Resources)
	var want correlate.Key
	if filter != nil {
		want = correlate.KeyOfRef(*filter)
	}

	out := make([]resourceDiff, 0, len(st.Managed))
	for _, r := range st.Managed {
		key := correlate.KeyOfManaged(r)
		if filter != nil && key != want {
			continue
		}
		status, _ := idx.Lookup(key)
		out = append(out, resourceDiff{
			view:  diff.Present(r, status, opts),
			badge: correlate.BadgeFor(status),
			hook:  r.Hook,
		})
	}
	return out
}
