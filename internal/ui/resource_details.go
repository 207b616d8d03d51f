package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"sigs.k8s.io/yaml"

	"github.com/phin3has/argodash/internal/argocd"
	"github.com/phin3has/argodash/internal/normalize"
)

type resourceDetailsTab int

const (
	resourceTabLive resourceDetailsTab = iota
	resourceTabDesired
)

func (t resourceDetailsTab) String() string {
	if t == resourceTabDesired {
		return "Desired"
	}
	return "Live"
}

type resourceDetailsModel struct {
	styles styles
	client argocd.AppClient

	appName string
	ref     argocd.ResourceRef

	width  int
	height int

	vp viewport.Model

	loading bool
	err     error

	liveManifest    string
	desiredManifest string

	tab        resourceDetailsTab
	showAsJSON bool
}

type resourceDetailsLoadedMsg struct {
	ref     argocd.ResourceRef
	live    string
	desired string
	err     error
}

func newResourceDetailsModel(st styles, client argocd.AppClient, appName string, ref argocd.ResourceRef) resourceDetailsModel {
	vp := viewport.New(0, 0)
	vp.MouseWheelEnabled = false

	return resourceDetailsModel{
		styles:  st,
		client:  client,
		appName: appName,
		ref:     ref,
		vp:      vp,
		loading: true,
		tab:     resourceTabLive,
	}
}

func (m resourceDetailsModel) initCmd() tea.Cmd {
	c, app, ref := m.client, m.appName, m.ref
	return func() tea.Msg {
		live, err := c.GetResource(context.Background(), app, ref)
		if err != nil {
			return resourceDetailsLoadedMsg{ref: ref, err: err}
		}

		manifests, err := c.GetManifests(context.Background(), app)
		if err != nil {
			return resourceDetailsLoadedMsg{ref: ref, live: live, err: err}
		}
		return resourceDetailsLoadedMsg{ref: ref, live: live, desired: findDesiredManifest(manifests, ref)}
	}
}

func (m *resourceDetailsModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.vp.Width = max(1, w)
	m.vp.Height = max(1, h-2)
	m.vp.SetContent(m.renderBody())
}

func (m resourceDetailsModel) Update(msg tea.Msg) (resourceDetailsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil
	case resourceDetailsLoadedMsg:
		if msg.ref != m.ref {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.liveManifest = msg.live
		m.desiredManifest = msg.desired
		m.vp.SetContent(m.renderBody())
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			if m.tab == resourceTabLive {
				m.tab = resourceTabDesired
			} else {
				m.tab = resourceTabLive
			}
			m.vp.SetContent(m.renderBody())
			m.vp.GotoTop()
			return m, nil
		case "t":
			m.showAsJSON = !m.showAsJSON
			m.vp.SetContent(m.renderBody())
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m resourceDetailsModel) View() string {
	format := "yaml"
	if m.showAsJSON {
		format = "json"
	}
	header := fmt.Sprintf("Resource: %s/%s (%s)  [tab=%s]  [t=%s]  esc=close",
		m.ref.Kind,
		m.ref.Name,
		blankIfEmpty(m.ref.Namespace, "cluster"),
		m.tab,
		format,
	)
	return lipgloss.JoinVertical(lipgloss.Top, m.styles.PanelHeader.Width(m.width).Render(header), m.vp.View())
}

func (m resourceDetailsModel) renderBody() string {
	if m.loading {
		return "Loading…"
	}
	if m.err != nil {
		return "Error:\n\n" + m.err.Error()
	}

	s := m.liveManifest
	empty := "(empty live manifest)"
	if m.tab == resourceTabDesired {
		s = m.desiredManifest
		empty = "(desired manifest not found via /manifests)"
	}
	if strings.TrimSpace(s) == "" {
		return empty
	}
	if m.showAsJSON {
		return manifestJSON(s)
	}
	return normalize.JSONToYAML(s)
}

// manifestJSON renders a JSON or YAML manifest as indented JSON, or
// returns it unchanged when it parses as neither.
func manifestJSON(s string) string {
	b, err := yaml.YAMLToJSON([]byte(s))
	if err != nil {
		return s
	}
	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "  "); err != nil {
		return s
	}
	return out.String()
}

// findDesiredManifest picks the target manifest for ref out of the
// application's rendered manifests. Manifests may be JSON or YAML.
func findDesiredManifest(manifests []string, ref argocd.ResourceRef) string {
	wantKind := strings.TrimSpace(ref.Kind)
	wantName := strings.TrimSpace(ref.Name)
	wantNS := strings.TrimSpace(ref.Namespace)

	for _, m := range manifests {
		var obj struct {
			Kind     string `json:"kind"`
			Metadata struct {
				Name      string `json:"name"`
				Namespace string `json:"namespace"`
			} `json:"metadata"`
		}
		if err := yaml.Unmarshal([]byte(m), &obj); err != nil {
			continue
		}
		if obj.Kind != wantKind || obj.Metadata.Name != wantName {
			continue
		}
		if wantNS != "" && obj.Metadata.Namespace != "" && obj.Metadata.Namespace != wantNS {
			continue
		}
		return m
	}
	return ""
}
