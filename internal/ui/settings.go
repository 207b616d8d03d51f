package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/phin3has/argodash/internal/argocd"
)

type settingsSection int

const (
	sectionClusters settingsSection = iota
	sectionRepositories
	sectionProjects
	sectionCertificates
	sectionGPGKeys
	numSections
)

func (s settingsSection) String() string {
	switch s {
	case sectionClusters:
		return "Clusters"
	case sectionRepositories:
		return "Repositories"
	case sectionProjects:
		return "Projects"
	case sectionCertificates:
		return "Certificates"
	case sectionGPGKeys:
		return "GPG keys"
	}
	return "?"
}

type formField struct {
	name     string
	required bool
	secret   bool
}

func (s settingsSection) columns() []table.Column {
	switch s {
	case sectionClusters:
		return []table.Column{{Title: "Name", Width: 18}, {Title: "Server", Width: 36}, {Title: "Version", Width: 8}, {Title: "Status", Width: 12}}
	case sectionRepositories:
		return []table.Column{{Title: "Repo", Width: 40}, {Title: "Type", Width: 6}, {Title: "Project", Width: 12}, {Title: "Status", Width: 12}}
	case sectionProjects:
		return []table.Column{{Title: "Name", Width: 18}, {Title: "Description", Width: 30}, {Title: "Sources", Width: 8}, {Title: "Destinations", Width: 12}}
	case sectionCertificates:
		return []table.Column{{Title: "Server", Width: 24}, {Title: "Type", Width: 6}, {Title: "Subtype", Width: 12}, {Title: "Info", Width: 40}}
	default:
		return []table.Column{{Title: "Key ID", Width: 18}, {Title: "Owner", Width: 40}, {Title: "Trust", Width: 8}, {Title: "Subtype", Width: 8}}
	}
}

func (s settingsSection) fields() []formField {
	switch s {
	case sectionClusters:
		return []formField{{name: "server", required: true}, {name: "name"}, {name: "bearer token", secret: true}, {name: "namespaces (comma separated)"}}
	case sectionRepositories:
		return []formField{{name: "repo url", required: true}, {name: "type (git|helm)"}, {name: "name"}, {name: "project"}, {name: "username"}, {name: "password", secret: true}}
	case sectionProjects:
		return []formField{{name: "name", required: true}, {name: "description"}, {name: "source repos (comma separated)"}, {name: "destination server"}, {name: "destination namespace"}}
	case sectionCertificates:
		return []formField{{name: "server name", required: true}, {name: "type (https|ssh)", required: true}, {name: "subtype"}, {name: "data", required: true}}
	default:
		return []formField{{name: "armored public key", required: true}}
	}
}

// settingsItem is one row plus how to delete it.
type settingsItem struct {
	cells  []string
	remove func(ctx context.Context, c argocd.SettingsClient) error
}

func loadSection(ctx context.Context, c argocd.SettingsClient, s settingsSection) ([]settingsItem, error) {
	var items []settingsItem
	switch s {
	case sectionClusters:
		cs, err := c.ListClusters(ctx)
		if err != nil {
			return nil, err
		}
		for _, cl := range cs {
			server := cl.Server
			items = append(items, settingsItem{
				cells:  []string{cl.Name, cl.Server, blankIfEmpty(cl.ServerVersion, "—"), blankIfEmpty(cl.ConnectionState, "—")},
				remove: func(ctx context.Context, c argocd.SettingsClient) error { return c.DeleteCluster(ctx, server) },
			})
		}
	case sectionRepositories:
		rs, err := c.ListRepositories(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range rs {
			repo := r.Repo
			items = append(items, settingsItem{
				cells:  []string{r.Repo, blankIfEmpty(r.Type, "git"), blankIfEmpty(r.Project, "—"), blankIfEmpty(r.ConnectionState, "—")},
				remove: func(ctx context.Context, c argocd.SettingsClient) error { return c.DeleteRepository(ctx, repo) },
			})
		}
	case sectionProjects:
		ps, err := c.ListProjects(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range ps {
			name := p.Name
			items = append(items, settingsItem{
				cells:  []string{p.Name, p.Description, fmt.Sprint(len(p.SourceRepos)), fmt.Sprint(len(p.Destinations))},
				remove: func(ctx context.Context, c argocd.SettingsClient) error { return c.DeleteProject(ctx, name) },
			})
		}
	case sectionCertificates:
		cs, err := c.ListCertificates(ctx)
		if err != nil {
			return nil, err
		}
		for _, cert := range cs {
			cert := cert
			items = append(items, settingsItem{
				cells:  []string{cert.ServerName, cert.CertType, cert.CertSubType, cert.CertInfo},
				remove: func(ctx context.Context, c argocd.SettingsClient) error { return c.DeleteCertificate(ctx, cert) },
			})
		}
	case sectionGPGKeys:
		ks, err := c.ListGPGKeys(ctx)
		if err != nil {
			return nil, err
		}
		for _, k := range ks {
			id := k.KeyID
			items = append(items, settingsItem{
				cells:  []string{k.KeyID, k.Owner, k.Trust, k.SubType},
				remove: func(ctx context.Context, c argocd.SettingsClient) error { return c.DeleteGPGKey(ctx, id) },
			})
		}
	}
	return items, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// createInSection sends the form values, in field order, to the matching
// create endpoint.
func createInSection(ctx context.Context, c argocd.SettingsClient, s settingsSection, v []string) error {
	switch s {
	case sectionClusters:
		return c.CreateCluster(ctx, argocd.Cluster{Server: v[0], Name: v[1], BearerToken: v[2], Namespaces: splitList(v[3])})
	case sectionRepositories:
		return c.CreateRepository(ctx, argocd.Repository{Repo: v[0], Type: v[1], Name: v[2], Project: v[3], Username: v[4], Password: v[5]})
	case sectionProjects:
		p := argocd.Project{Name: v[0], Description: v[1], SourceRepos: splitList(v[2])}
		if v[3] != "" || v[4] != "" {
			p.Destinations = []argocd.ProjectDestination{{Server: v[3], Namespace: v[4]}}
		}
		return c.CreateProject(ctx, p)
	case sectionCertificates:
		return c.CreateCertificate(ctx, argocd.Certificate{ServerName: v[0], CertType: v[1], CertSubType: v[2], CertData: v[3]})
	case sectionGPGKeys:
		return c.CreateGPGKey(ctx, v[0])
	}
	return fmt.Errorf("unknown section %d", s)
}

type settingsModel struct {
	styles styles
	client argocd.SettingsClient

	section settingsSection
	tbl     table.Model
	items   []settingsItem

	width  int
	height int

	loading bool
	err     error
	status  string

	form       []textinput.Model
	formFields []formField
	formFocus  int
	formOpen   bool

	confirmDelete bool
}

type settingsLoadedMsg struct {
	section settingsSection
	items   []settingsItem
	err     error
}

type settingsWriteMsg struct {
	section settingsSection
	action  string
	err     error
}

func newSettingsModel(st styles, c argocd.SettingsClient) settingsModel {
	tbl := table.New(table.WithColumns(sectionClusters.columns()), table.WithFocused(true), table.WithHeight(10))
	ts := table.DefaultStyles()
	ts.Selected = st.Selected
	tbl.SetStyles(ts)
	return settingsModel{styles: st, client: c, section: sectionClusters, tbl: tbl, loading: true}
}

func (m settingsModel) initCmd() tea.Cmd {
	c, sec := m.client, m.section
	return func() tea.Msg {
		items, err := loadSection(context.Background(), c, sec)
		return settingsLoadedMsg{section: sec, items: items, err: err}
	}
}

func (m settingsModel) createCmd(values []string) tea.Cmd {
	c, sec := m.client, m.section
	return func() tea.Msg {
		err := createInSection(context.Background(), c, sec, values)
		return settingsWriteMsg{section: sec, action: "created", err: err}
	}
}

func (m settingsModel) deleteCmd(item settingsItem) tea.Cmd {
	c, sec := m.client, m.section
	return func() tea.Msg {
		err := item.remove(context.Background(), c)
		return settingsWriteMsg{section: sec, action: "deleted", err: err}
	}
}

func (m *settingsModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.tbl.SetWidth(max(20, w))
	m.tbl.SetHeight(max(3, h-6))
}

func (m *settingsModel) switchSection(s settingsSection) tea.Cmd {
	m.section = s
	m.items = nil
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(s.columns())
	m.loading = true
	m.err = nil
	m.status = ""
	m.confirmDelete = false
	return m.initCmd()
}

func (m *settingsModel) openForm() {
	m.formFields = m.section.fields()
	m.form = make([]textinput.Model, len(m.formFields))
	for i, f := range m.formFields {
		ti := textinput.New()
		ti.Prompt = fmt.Sprintf("%-32s ", f.name+":")
		ti.CharLimit = 4096
		ti.Width = 48
		if f.secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		m.form[i] = ti
	}
	m.formFocus = 0
	m.form[0].Focus()
	m.formOpen = true
	m.err = nil
}

func (m *settingsModel) focusField(i int) {
	m.form[m.formFocus].Blur()
	m.formFocus = (i + len(m.form)) % len(m.form)
	m.form[m.formFocus].Focus()
}

// formValues returns the trimmed values or an error naming the first
// missing required field.
func (m settingsModel) formValues() ([]string, error) {
	out := make([]string, len(m.form))
	for i, ti := range m.form {
		out[i] = strings.TrimSpace(ti.Value())
		if m.formFields[i].required && out[i] == "" {
			return nil, fmt.Errorf("%s is required", m.formFields[i].name)
		}
	}
	return out, nil
}

func (m settingsModel) Update(msg tea.Msg) (settingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsLoadedMsg:
		if msg.section != m.section {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.items = msg.items
		rows := make([]table.Row, len(msg.items))
		for i, it := range msg.items {
			rows[i] = table.Row(it.cells)
		}
		m.tbl.SetRows(rows)
		m.tbl.SetCursor(m.tbl.Cursor())
		return m, nil
	case settingsWriteMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.formOpen = false
		m.status = fmt.Sprintf("%s %s", strings.ToLower(strings.TrimSuffix(msg.section.String(), "s")), msg.action)
		if msg.section != m.section {
			return m, nil
		}
		m.loading = true
		return m, m.initCmd()
	case tea.KeyMsg:
		if m.formOpen {
			return m.updateForm(msg)
		}
		if m.confirmDelete {
			switch msg.String() {
			case "y":
				m.confirmDelete = false
				i := m.tbl.Cursor()
				if i < 0 || i >= len(m.items) {
					return m, nil
				}
				m.status = "deleting…"
				return m, m.deleteCmd(m.items[i])
			default:
				m.confirmDelete = false
				m.status = "delete cancelled"
				return m, nil
			}
		}
		switch msg.String() {
		case "tab", "right", "l":
			return m, m.switchSection((m.section + 1) % numSections)
		case "shift+tab", "left", "h":
			return m, m.switchSection((m.section + numSections - 1) % numSections)
		case "r":
			m.loading = true
			return m, m.initCmd()
		case "n":
			m.openForm()
			return m, textinput.Blink
		case "ctrl+d", "delete":
			if len(m.items) == 0 {
				return m, nil
			}
			m.confirmDelete = true
			m.status = ""
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

func (m settingsModel) updateForm(msg tea.KeyMsg) (settingsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.formOpen = false
		m.err = nil
		return m, nil
	case "tab", "down":
		m.focusField(m.formFocus + 1)
		return m, nil
	case "shift+tab", "up":
		m.focusField(m.formFocus - 1)
		return m, nil
	case "enter":
		if m.formFocus < len(m.form)-1 {
			m.focusField(m.formFocus + 1)
			return m, nil
		}
		values, err := m.formValues()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.status = "saving…"
		return m, m.createCmd(values)
	}
	var cmd tea.Cmd
	m.form[m.formFocus], cmd = m.form[m.formFocus].Update(msg)
	return m, cmd
}

// editing reports whether keys should stay inside the panel.
func (m settingsModel) editing() bool {
	return m.formOpen || m.confirmDelete
}

func (m settingsModel) View() string {
	tabs := make([]string, 0, numSections)
	for s := settingsSection(0); s < numSections; s++ {
		label := " " + s.String() + " "
		if s == m.section {
			label = m.styles.Selected.Render(label)
		} else {
			label = m.styles.Muted.Render(label)
		}
		tabs = append(tabs, label)
	}
	head := m.styles.PanelHeader.Width(m.width).Render("Settings  tab=section  n=new  ctrl+d=delete  r=reload  esc=close")

	var body string
	switch {
	case m.formOpen:
		lines := []string{"New " + strings.TrimSuffix(m.section.String(), "s"), ""}
		for _, ti := range m.form {
			lines = append(lines, ti.View())
		}
		lines = append(lines, "", "enter=next/save  tab=next field  esc=cancel")
		body = strings.Join(lines, "\n")
	case m.loading:
		body = "Loading…"
	default:
		body = m.tbl.View()
		if len(m.items) == 0 && m.err == nil {
			body += "\n(none)"
		}
	}

	footer := ""
	switch {
	case m.err != nil:
		footer = m.styles.Error.Render("Error: " + m.err.Error())
	case m.confirmDelete:
		footer = m.styles.StatusWarn.Render("Delete selected entry? y=confirm, any other key=cancel")
	case m.status != "":
		footer = m.styles.Muted.Render(m.status)
	}
	return lipgloss.JoinVertical(lipgloss.Top, head, strings.Join(tabs, " "), "", body, "", footer)
}
