package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	pbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"k8s.io/utils/clock"

	"github.com/phin3has/argodash/internal/argocd"
	"github.com/phin3has/argodash/internal/progress"
)

// syncProgressModel follows one application's sync operation. Polls feed
// the tracker; the 1s ticker only refreshes the elapsed time and is bridged
// into the update loop through its channel.
type syncProgressModel struct {
	styles styles
	client argocd.AppClient
	app    string

	clock        clock.WithTicker
	pollInterval time.Duration

	width  int
	height int
	vp     viewport.Model
	bar    pbar.Model
	spin   spinner.Model

	tracker progress.Tracker
	ticker  *progress.Ticker

	loading bool
	err     error
	state   argocd.Application
	polls   int
}

type progressAppMsg struct {
	app   string
	state argocd.Application
	err   error
}

type progressPollDueMsg struct{ app string }

type progressTickMsg struct {
	tick progress.Tick
	ch   <-chan progress.Tick
}

type progressTickDoneMsg struct{}

func newSyncProgressModel(st styles, c argocd.AppClient, appName string, clk clock.WithTicker, pollInterval time.Duration) syncProgressModel {
	vp := viewport.New(0, 0)
	vp.MouseWheelEnabled = false
	if clk == nil {
		clk = clock.RealClock{}
	}
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	return syncProgressModel{
		styles:       st,
		client:       c,
		app:          appName,
		clock:        clk,
		pollInterval: pollInterval,
		vp:           vp,
		bar:          pbar.New(pbar.WithDefaultGradient(), pbar.WithWidth(40)),
		spin:         sp,
		ticker:       progress.NewTicker(clk, progress.Interval),
		loading:      true,
	}
}

func (m syncProgressModel) initCmd() tea.Cmd {
	return m.fetchCmd()
}

func (m syncProgressModel) fetchCmd() tea.Cmd {
	c, app := m.client, m.app
	return func() tea.Msg {
		st, err := c.GetApplication(context.Background(), app)
		return progressAppMsg{app: app, state: st, err: err}
	}
}

func (m syncProgressModel) pollCmd() tea.Cmd {
	app := m.app
	return tea.Tick(m.pollInterval, func(time.Time) tea.Msg { return progressPollDueMsg{app: app} })
}

// waitTickCmd reads one tick from ch. A closed channel ends the bridge.
func waitTickCmd(ch <-chan progress.Tick) tea.Cmd {
	return func() tea.Msg {
		if ch == nil {
			return progressTickDoneMsg{}
		}
		t, ok := <-ch
		if !ok {
			return progressTickDoneMsg{}
		}
		return progressTickMsg{tick: t, ch: ch}
	}
}

// close stops the interval. Called when the panel is dismissed.
func (m *syncProgressModel) close() {
	m.tracker.Reset()
	m.ticker.Stop()
}

func (m *syncProgressModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.vp.Width = max(1, w)
	m.vp.Height = max(1, h-2)
	m.bar.Width = clamp(w-20, 10, 60)
	m.vp.SetContent(m.renderBody())
}

func (m syncProgressModel) Update(msg tea.Msg) (syncProgressModel, tea.Cmd) {
	switch msg := msg.(type) {
	case progressAppMsg:
		if msg.app != m.app {
			return m, nil
		}
		m.loading = false
		m.polls++
		m.err = msg.err
		if msg.err != nil {
			m.vp.SetContent(m.renderBody())
			return m, m.pollCmd()
		}
		m.state = msg.state
		cmds := []tea.Cmd{m.pollCmd()}
		switch m.tracker.Observe(msg.state.OperationState, m.clock.Now()) {
		case progress.TransitionStarted:
			ch := m.ticker.Start(m.tracker.Generation())
			cmds = append(cmds, waitTickCmd(ch), m.spin.Tick)
		case progress.TransitionStopped:
			m.ticker.Stop()
		}
		m.vp.SetContent(m.renderBody())
		return m, tea.Batch(cmds...)
	case progressPollDueMsg:
		if msg.app != m.app {
			return m, nil
		}
		return m, m.fetchCmd()
	case progressTickMsg:
		if m.tracker.Tick(msg.tick.Gen, msg.tick.At) {
			m.vp.SetContent(m.renderBody())
		}
		return m, waitTickCmd(msg.ch)
	case progressTickDoneMsg:
		return m, nil
	case spinner.TickMsg:
		if !m.tracker.Running() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		m.vp.SetContent(m.renderBody())
		return m, cmd
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m syncProgressModel) View() string {
	head := fmt.Sprintf("Sync: %s  x=terminate  esc=close", m.app)
	return lipgloss.JoinVertical(lipgloss.Top, m.styles.PanelHeader.Width(m.width).Render(head), m.vp.View())
}

func (m syncProgressModel) renderBody() string {
	if m.loading {
		return "Loading…"
	}
	if m.err != nil {
		return "Error:\n\n" + m.err.Error() + "\n\nretrying on next poll"
	}

	op := m.state.OperationState
	if op == nil {
		return fmt.Sprintf("No sync operation for %s.\n\nsync: %s  health: %s", m.app,
			blankIfEmpty(m.state.Sync, "—"), blankIfEmpty(m.state.Health, "—"))
	}

	phase := lipgloss.NewStyle().Bold(true).Foreground(progress.PhaseColor(op.Phase)).Render(string(op.Phase))
	if m.tracker.Running() {
		phase = m.spin.View() + " " + phase
	}
	lines := []string{"Phase:    " + phase}
	if el := m.tracker.Elapsed(); el != "" {
		lines = append(lines, "Elapsed:  "+el)
	}
	if !op.StartedAt.IsZero() {
		lines = append(lines, "Started:  "+humanize.RelTime(op.StartedAt, m.clock.Now(), "ago", "from now"))
	}
	if op.FinishedAt != nil {
		lines = append(lines, "Duration: "+progress.Elapsed(op.StartedAt, *op.FinishedAt))
	}
	if s := op.Operation.Sync; s != nil {
		lines = append(lines, "Revision: "+blankIfEmpty(shortRev(s.Revision), "—"))
	}
	lines = append(lines, "By:       "+op.Operation.InitiatedBy.String())

	res := m.state.Resources
	pct := progress.Percent(res)
	lines = append(lines, "", m.bar.ViewAs(float64(pct)/100), fmt.Sprintf("%d%% of %d resources synced", pct, len(res)))
	if progress.ShowRollingOut(op.Phase) {
		if n := progress.RollingOut(res); n > 0 {
			lines = append(lines, m.styles.StatusWarn.Render(fmt.Sprintf("%d resources still rolling out", n)))
		}
	}
	if msg := strings.TrimSpace(op.Message); msg != "" {
		lines = append(lines, "", msg)
	}

	if op.SyncResult != nil && len(op.SyncResult.Resources) > 0 {
		lines = append(lines, "", "Results:")
		for _, r := range op.SyncResult.Resources {
			ref := argocd.ResourceRef{Group: r.Group, Kind: r.Kind, Namespace: r.Namespace, Name: r.Name}
			line := fmt.Sprintf("  %-12s %s", blankIfEmpty(r.Status, "—"), ref)
			if r.HookPhase != "" {
				line += "  hook:" + r.HookPhase
			}
			if r.Message != "" {
				line += "  " + m.styles.Muted.Render(r.Message)
			}
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func shortRev(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
