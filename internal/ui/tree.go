package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/phin3has/argodash/internal/argocd"
	"github.com/phin3has/argodash/internal/correlate"
)

// treeLine is one visible row of the resource tree.
type treeLine struct {
	node  argocd.ResourceNode
	depth int
	badge correlate.Badge
}

type treeModel struct {
	styles styles
	client argocd.AppClient
	app    string

	width  int
	height int
	vp     viewport.Model

	loading bool
	err     error
	treeErr error
	lines   []treeLine

	selected int
}

type treeLoadedMsg struct {
	app   string
	state argocd.AppState
	err   error
}

func newTreeModel(st styles, c argocd.AppClient, appName string) treeModel {
	vp := viewport.New(0, 0)
	vp.MouseWheelEnabled = false
	return treeModel{styles: st, client: c, app: appName, vp: vp, loading: true}
}

func (m treeModel) initCmd() tea.Cmd {
	c, app := m.client, m.app
	return func() tea.Msg {
		st, err := argocd.FetchAppState(context.Background(), c, app)
		return treeLoadedMsg{app: app, state: st, err: err}
	}
}

func (m *treeModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.vp.Width = max(1, w)
	m.vp.Height = max(1, h-2)
	m.vp.SetContent(m.renderBody())
}

// selectedRef is the highlighted node, if any.
func (m treeModel) selectedRef() (argocd.ResourceRef, bool) {
	if m.selected < 0 || m.selected >= len(m.lines) {
		return argocd.ResourceRef{}, false
	}
	return m.lines[m.selected].node.ResourceRef, true
}

func (m treeModel) Update(msg tea.Msg) (treeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case treeLoadedMsg:
		if msg.app != m.app {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.treeErr = msg.state.TreeErr
		m.lines = buildTree(msg.state.Tree.Nodes, correlate.NewIndex(msg.state.App.Resources))
		m.selected = clamp(m.selected, 0, max(0, len(m.lines)-1))
		m.vp.SetContent(m.renderBody())
		return m, nil
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
			if m.selected < len(m.lines)-1 {
				m.selected++
				m.vp.SetContent(m.renderBody())
				m.ensureVisible()
			}
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

func (m treeModel) View() string {
	head := fmt.Sprintf("Tree: %s  enter=manifest  d=diff  e=events  r=reload  esc=close", m.app)
	return lipgloss.JoinVertical(lipgloss.Top, m.styles.PanelHeader.Width(m.width).Render(head), m.vp.View())
}

func (m treeModel) renderBody() string {
	if m.loading {
		return "Loading…"
	}
	if m.err != nil {
		return "Error:\n\n" + m.err.Error() + "\n\nr=retry"
	}
	if m.treeErr != nil {
		return "Error loading resource tree:\n\n" + m.treeErr.Error() + "\n\nr=retry"
	}
	if len(m.lines) == 0 {
		return "(empty resource tree)"
	}

	out := make([]string, 0, len(m.lines))
	for i, l := range m.lines {
		label := l.node.Kind + "/" + l.node.Name
		if l.node.Namespace != "" {
			label += m.styles.Muted.Render(" (" + l.node.Namespace + ")")
		}
		indent := strings.Repeat("  ", l.depth)
		if l.depth > 0 {
			indent = strings.Repeat("  ", l.depth-1) + "└ "
		}
		health := l.badge.Health
		if l.node.Health != "" {
			health = l.node.Health
		}
		line := indent + label + " " + badge(l.badge.Sync, health)
		if i == m.selected {
			line = m.styles.Selected.Render("▶ ") + line
		} else {
			line = "  " + line
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func (m *treeModel) ensureVisible() {
	if m.selected < m.vp.YOffset {
		m.vp.SetYOffset(m.selected)
	}
	if m.selected >= m.vp.YOffset+m.vp.Height {
		m.vp.SetYOffset(m.selected - m.vp.Height + 1)
	}
}

// nodeKey identifies a tree node. UIDs are preferred; nodes without one
// (some cluster-scoped kinds in older versions) fall back to the identity.
func nodeKey(r argocd.ResourceRef) string {
	if r.UID != "" {
		return r.UID
	}
	return strings.Join([]string{r.Group, r.Kind, r.Namespace, r.Name}, "/")
}

// buildTree flattens nodes into display order using parentRefs. A node
// whose parents are all unknown is a root. Nodes that are only reachable
// through a cycle are promoted to roots so every node appears once.
func buildTree(nodes []argocd.ResourceNode, idx correlate.Index) []treeLine {
	byKey := make(map[string]int, len(nodes))
	for i, n := range nodes {
		byKey[nodeKey(n.ResourceRef)] = i
	}

	children := make(map[string][]int)
	var roots []int
	for i, n := range nodes {
		parented := false
		for _, p := range n.ParentRefs {
			pk := nodeKey(p)
			if _, ok := byKey[pk]; ok && pk != nodeKey(n.ResourceRef) {
				children[pk] = append(children[pk], i)
				parented = true
			}
		}
		if !parented {
			roots = append(roots, i)
		}
	}

	less := func(ids []int) {
		sort.SliceStable(ids, func(a, b int) bool {
			na, nb := nodes[ids[a]], nodes[ids[b]]
			if na.Kind != nb.Kind {
				return na.Kind < nb.Kind
			}
			return na.Name < nb.Name
		})
	}
	less(roots)
	for k := range children {
		less(children[k])
	}

	seen := make([]bool, len(nodes))
	out := make([]treeLine, 0, len(nodes))
	var walk func(i, depth int)
	walk = func(i, depth int) {
		if seen[i] {
			return
		}
		seen[i] = true
		n := nodes[i]
		status, _ := idx.Lookup(correlate.KeyOfRef(n.ResourceRef))
		b := correlate.BadgeFor(status)
		if status == nil && depth > 0 {
			// Children Argo CD created (ReplicaSets, Pods) have no sync status.
			b.Sync = ""
		}
		out = append(out, treeLine{node: n, depth: depth, badge: b})
		for _, c := range children[nodeKey(n.ResourceRef)] {
			walk(c, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
	for i := range nodes {
		if !seen[i] {
			walk(i, 0)
		}
	}
	return out
}
