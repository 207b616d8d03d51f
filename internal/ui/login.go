package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/phin3has/argodash/internal/argocd"
)

var errMissingCredentials = errors.New("username and password are required")

// loginModel asks for credentials after the server rejected the token.
type loginModel struct {
	styles styles
	client argocd.SessionClient
	server string

	user  textinput.Model
	pass  textinput.Model
	focus int

	width  int
	height int

	busy bool
	err  error
}

type loginResultMsg struct {
	username string
	token    string
	err      error
}

func newLoginModel(st styles, c argocd.SessionClient, server, username string) loginModel {
	user := textinput.New()
	user.Placeholder = "username"
	user.Prompt = "user: "
	user.CharLimit = 128
	user.Width = 32
	user.SetValue(username)

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.Prompt = "pass: "
	pass.CharLimit = 256
	pass.Width = 32
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	m := loginModel{styles: st, client: c, server: server, user: user, pass: pass}
	if username != "" {
		m.focus = 1
		m.pass.Focus()
	} else {
		m.user.Focus()
	}
	return m
}

func (m loginModel) loginCmd() tea.Cmd {
	c := m.client
	user := strings.TrimSpace(m.user.Value())
	pass := m.pass.Value()
	return func() tea.Msg {
		tok, err := c.Login(context.Background(), user, pass)
		return loginResultMsg{username: user, token: tok, err: err}
	}
}

func (m *loginModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *loginModel) setFocus(i int) {
	m.focus = i
	if i == 0 {
		m.user.Focus()
		m.pass.Blur()
		return
	}
	m.pass.Focus()
	m.user.Blur()
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.busy = false
		m.err = msg.err
		if msg.err != nil {
			m.pass.SetValue("")
			m.setFocus(1)
		}
		return m, nil
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m.setFocus(1 - m.focus)
			return m, nil
		case "enter":
			if m.focus == 0 {
				m.setFocus(1)
				return m, nil
			}
			if strings.TrimSpace(m.user.Value()) == "" || m.pass.Value() == "" {
				m.err = errMissingCredentials
				return m, nil
			}
			m.busy = true
			m.err = nil
			return m, m.loginCmd()
		}
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.user, cmd = m.user.Update(msg)
	} else {
		m.pass, cmd = m.pass.Update(msg)
	}
	return m, cmd
}

func (m loginModel) View() string {
	head := m.styles.PanelHeader.Width(m.width).Render("Login: " + blankIfEmpty(m.server, "argo cd") + "  tab=next field  enter=login  ctrl+c=quit")
	lines := []string{
		"Your session has expired or no token is configured.",
		"",
		m.user.View(),
		m.pass.View(),
		"",
	}
	switch {
	case m.busy:
		lines = append(lines, "Logging in…")
	case m.err != nil:
		lines = append(lines, m.styles.Error.Render(m.err.Error()))
	}
	return lipgloss.JoinVertical(lipgloss.Top, head, strings.Join(lines, "\n"))
}
