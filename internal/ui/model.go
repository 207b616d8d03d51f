package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"

	"github.com/phin3has/argodash/internal/argocd"
	"github.com/phin3has/argodash/internal/config"
	"github.com/phin3has/argodash/internal/diff"
	"github.com/phin3has/argodash/internal/normalize"
)

// view is the panel shown in the main area.
type view int

const (
	viewApps view = iota
	viewDiff
	viewTree
	viewHistory
	viewRevision
	viewEvents
	viewResource
	viewProgress
	viewSettings
	viewLogin
	viewWelcome
)

type Model struct {
	cfg     config.Config
	client  argocd.Client
	session *argocd.Session
	state   *config.StateStore
	clock   clock.WithTicker
	logger  *slog.Logger

	styles styles
	keys   keyMap
	help   help.Model

	width  int
	height int

	view view
	back view

	appsAll       []argocd.Application
	apps          []argocd.Application
	selected      int
	sidebarOffset int

	filterInput  textinput.Model
	filterActive bool
	driftOnly    bool

	deleteModal   bool
	deleteApp     string
	deleteCascade bool
	deleteInput   textinput.Model

	sortMode sortMode

	serverLabel string
	serverInfo  argocd.Settings
	username    string
	lastRefresh time.Time

	syncModal          bool
	syncTargets        []string
	syncPreview        map[string][]argocd.ResourceStatus
	syncDryRunComplete bool
	syncDryRunResults  []syncResult

	rollbackModal    bool
	rollbackApp      string
	rollbackLoading  bool
	rollbackErr      error
	rollbackRevs     []argocd.RevisionHistory
	rollbackSelected int
	rollbackConfirm  bool
	rollbackPrune    bool

	terminateModal   bool
	terminateApp     string
	terminateLoading bool
	terminateErr     error
	terminateConfirm bool

	diffOpts   normalize.Options
	diffLayout diff.Layout

	diffPanel     diffModel
	treePanel     treeModel
	historyPanel  historyModel
	revisionPanel revisionDetailsModel
	eventsPanel   eventsModel
	resourcePanel resourceDetailsModel
	progressPanel syncProgressModel
	settingsPanel settingsModel
	loginPanel    loginModel

	detail     *argocd.Application
	detailErr  error
	statusLine string
	err        error
}

type sortMode int

const (
	sortByName sortMode = iota
	sortByHealth
	sortBySync
)

func (s sortMode) String() string {
	switch s {
	case sortByHealth:
		return "health"
	case sortBySync:
		return "sync"
	default:
		return "name"
	}
}

// Option customises a Model.
type Option func(*Model)

// WithSession shares the client's session so a login or an expired token
// is seen by both.
func WithSession(s *argocd.Session) Option {
	return func(m *Model) { m.session = s }
}

// WithStateStore persists tokens and the welcome flag.
func WithStateStore(s *config.StateStore) Option {
	return func(m *Model) { m.state = s }
}

func WithClock(c clock.WithTicker) Option {
	return func(m *Model) { m.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

func NewModel(cfg config.Config, client argocd.Client, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false

	ti := textinput.New()
	ti.Placeholder = "filter apps…"
	ti.Prompt = "/ "
	ti.CharLimit = 128
	ti.Width = 24

	del := textinput.New()
	del.Placeholder = "type app name to confirm"
	del.Prompt = "> "
	del.CharLimit = 256
	del.Width = 32

	serverLabel := cfg.ArgoCD.Server
	if _, ok := client.(*argocd.MockClient); ok {
		serverLabel = "mock"
	}

	layout, err := diff.ParseLayout(cfg.UI.DiffLayout)
	if err != nil {
		layout = diff.LayoutSplit
	}

	m := Model{
		cfg:         cfg,
		client:      client,
		clock:       clock.RealClock{},
		logger:      slog.Default(),
		styles:      newStyles(),
		keys:        newKeyMap(),
		help:        h,
		filterInput: ti,
		deleteInput: del,
		sortMode:    sortByName,
		serverLabel: serverLabel,
		diffOpts:    normalize.Options{StripRuntimeFields: cfg.Diff.StripRuntimeFields},
		diffLayout:  layout,
	}
	for _, o := range opts {
		o(&m)
	}
	if m.session == nil {
		m.session = argocd.NewSession(cfg.ArgoCD.Token)
	}
	if m.state != nil {
		if st, err := m.state.Load(); err == nil && !st.WelcomeSeen {
			m.view = viewWelcome
		}
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(false), m.serverInfoCmd(), m.pollCmd())
}

type appsMsg struct {
	apps  []argocd.Application
	quiet bool
	err   error
}

type detailMsg struct {
	app argocd.Application
	err error
}

type serverInfoMsg struct {
	settings argocd.Settings
	user     argocd.UserInfo
	err      error
}

type pollMsg struct{}

type syncResult struct {
	name string
	err  error
}

type syncBatchMsg struct {
	dryRun  bool
	results []syncResult
}

type revisionsMsg struct {
	appName   string
	revisions []argocd.RevisionHistory
	err       error
}

type rollbackMsg struct {
	appName string
	err     error
}

type terminateMsg struct {
	appName string
	err     error
}

type deleteMsg struct {
	appName string
	err     error
}

func (m Model) refreshCmd(quiet bool) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		apps, err := c.ListApplications(context.Background())
		return appsMsg{apps: apps, quiet: quiet, err: err}
	}
}

// reloadCmd lists apps past any client-side cache.
func (m Model) reloadCmd() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		if inv, ok := c.(argocd.Invalidator); ok {
			inv.InvalidateApplications()
		}
		apps, err := c.ListApplications(context.Background())
		return appsMsg{apps: apps, err: err}
	}
}

func (m Model) loadDetailCmd(name string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		app, err := c.GetApplication(context.Background(), name)
		return detailMsg{app: app, err: err}
	}
}

// refreshDetailCmd asks the server to compare the app against Git again.
func (m Model) refreshDetailCmd(name string, hard bool) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		app, err := c.RefreshApplication(context.Background(), name, hard)
		return detailMsg{app: app, err: err}
	}
}

func (m Model) serverInfoCmd() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx := context.Background()
		s, err := c.Settings(ctx)
		if err != nil {
			return serverInfoMsg{err: err}
		}
		u, err := c.UserInfo(ctx)
		return serverInfoMsg{settings: s, user: u, err: err}
	}
}

func (m Model) pollCmd() tea.Cmd {
	return tea.Tick(m.cfg.UI.PollInterval, func(time.Time) tea.Msg { return pollMsg{} })
}

// syncBatchCmd syncs all targets concurrently. Results keep target order.
func (m Model) syncBatchCmd(targets []string, dryRun bool) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		results := make([]syncResult, len(targets))
		var g errgroup.Group
		g.SetLimit(4)
		for i, name := range targets {
			i, name := i, name
			g.Go(func() error {
				err := c.SyncApplication(context.Background(), name, argocd.SyncOptions{DryRun: dryRun})
				results[i] = syncResult{name: name, err: err}
				return nil
			})
		}
		_ = g.Wait()
		return syncBatchMsg{dryRun: dryRun, results: results}
	}
}

func (m Model) loadRevisionsCmd(appName string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		app, err := c.GetApplication(context.Background(), appName)
		return revisionsMsg{appName: appName, revisions: app.History, err: err}
	}
}

func (m Model) rollbackCmd(appName string, id int64, prune bool) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		err := c.RollbackApplication(context.Background(), appName, id, prune)
		return rollbackMsg{appName: appName, err: err}
	}
}

func (m Model) terminateCmd(appName string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		err := c.TerminateOperation(context.Background(), appName)
		return terminateMsg{appName: appName, err: err}
	}
}

func (m Model) deleteCmd(appName string, cascade bool) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		err := c.DeleteApplication(context.Background(), appName, cascade)
		return deleteMsg{appName: appName, err: err}
	}
}

// msgErr extracts the API error carried by a result message, if any.
func msgErr(msg tea.Msg) error {
	switch msg := msg.(type) {
	case appsMsg:
		return msg.err
	case detailMsg:
		return msg.err
	case serverInfoMsg:
		return msg.err
	case diffLoadedMsg:
		if msg.err != nil {
			return msg.err
		}
		return msg.state.ManagedErr
	case treeLoadedMsg:
		if msg.err != nil {
			return msg.err
		}
		return msg.state.TreeErr
	case eventsLoadedMsg:
		return msg.err
	case revisionDetailsLoadedMsg:
		return msg.err
	case resourceDetailsLoadedMsg:
		return msg.err
	case progressAppMsg:
		return msg.err
	case settingsLoadedMsg:
		return msg.err
	case settingsWriteMsg:
		return msg.err
	case revisionsMsg:
		return msg.err
	case rollbackMsg:
		return msg.err
	case terminateMsg:
		return msg.err
	case deleteMsg:
		return msg.err
	case syncBatchMsg:
		for _, r := range msg.results {
			if r.err != nil {
				return r.err
			}
		}
	}
	return nil
}

// expireSession drops the rejected token and asks for credentials.
func (m Model) expireSession() (Model, tea.Cmd) {
	m.logger.Info("session expired, asking for login", "server", m.cfg.ArgoCD.Server)
	m.session.Clear()
	if m.state != nil {
		if err := m.state.ClearToken(m.cfg.ArgoCD.Server); err != nil {
			m.logger.Warn("clear stored token", "err", err)
		}
	}
	m.closePanel()
	m.resetModals()
	m.view = viewLogin
	m.loginPanel = newLoginModel(m.styles, m.client, m.cfg.ArgoCD.Server, m.cfg.ArgoCD.Username)
	m.resizePanels()
	m.statusLine = "session expired"
	return m, textinput.Blink
}

func (m *Model) resetModals() {
	m.syncModal = false
	m.syncTargets = nil
	m.syncPreview = nil
	m.syncDryRunComplete = false
	m.syncDryRunResults = nil
	m.rollbackModal = false
	m.rollbackRevs = nil
	m.rollbackConfirm = false
	m.rollbackLoading = false
	m.terminateModal = false
	m.terminateConfirm = false
	m.terminateLoading = false
	m.deleteModal = false
	m.deleteInput.SetValue("")
	m.deleteInput.Blur()
}

// closePanel tears down the current panel. The sync panel owns the only
// recurring timer, so it is stopped here.
func (m *Model) closePanel() {
	if m.view == viewProgress {
		m.progressPanel.close()
	}
	switch m.view {
	case viewRevision, viewResource, viewEvents, viewDiff:
		if m.back != viewApps && m.back != m.view {
			m.view = m.back
			m.back = viewApps
			return
		}
	}
	m.view = viewApps
	m.back = viewApps
}

func (m Model) selectedApp() (argocd.Application, bool) {
	if len(m.apps) == 0 {
		return argocd.Application{}, false
	}
	app := m.apps[m.selected]
	if m.detail != nil && m.detail.Name == app.Name {
		app = *m.detail
	}
	return app, true
}

// panelSize is the inner size of the main area.
func (m Model) panelSize() (int, int) {
	_, mainWidth := m.columnWidths()
	return max(1, mainWidth-4), max(1, m.bodyHeight()-2)
}

func (m Model) bodyHeight() int {
	return max(0, m.height-2)
}

func (m Model) columnWidths() (int, int) {
	sidebarWidth := m.cfg.UI.SidebarWidth
	if sidebarWidth < 20 {
		sidebarWidth = 20
	}
	mainWidth := m.width - sidebarWidth
	if mainWidth < 20 {
		mainWidth = 20
		sidebarWidth = max(20, m.width-mainWidth)
	}
	return sidebarWidth, mainWidth
}

func (m *Model) resizePanels() {
	w, h := m.panelSize()
	switch m.view {
	case viewDiff:
		m.diffPanel.setSize(w, h)
	case viewTree:
		m.treePanel.setSize(w, h)
	case viewHistory:
		m.historyPanel.setSize(w, h)
	case viewRevision:
		m.revisionPanel.setSize(w, h)
	case viewEvents:
		m.eventsPanel.setSize(w, h)
	case viewResource:
		m.resourcePanel.setSize(w, h)
	case viewProgress:
		m.progressPanel.setSize(w, h)
	case viewSettings:
		m.settingsPanel.setSize(w, h)
	case viewLogin:
		m.loginPanel.setSize(m.width, m.height)
	}
	// Nested panels keep their parent sized too.
	switch m.back {
	case viewTree:
		m.treePanel.setSize(w, h)
	case viewHistory:
		m.historyPanel.setSize(w, h)
	}
}

func (m Model) openDiff(app string, filter *argocd.ResourceRef, back view) (Model, tea.Cmd) {
	m.diffPanel = newDiffModel(m.styles, m.client, app, filter, m.diffOpts, m.diffLayout)
	m.back = back
	m.view = viewDiff
	m.resizePanels()
	return m, m.diffPanel.initCmd()
}

func (m Model) openProgress(app string) (Model, tea.Cmd) {
	m.progressPanel = newSyncProgressModel(m.styles, m.client, app, m.clock, m.cfg.UI.PollInterval)
	m.back = viewApps
	m.view = viewProgress
	m.resizePanels()
	return m, m.progressPanel.initCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if err := msgErr(msg); err != nil && argocd.IsUnauthorized(err) && m.view != viewLogin {
		return m.expireSession()
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureSidebarSelectionVisible()
		m.resizePanels()
		return m, nil
	case pollMsg:
		cmds := []tea.Cmd{m.pollCmd()}
		if m.view == viewLogin || m.view == viewWelcome {
			return m, tea.Batch(cmds...)
		}
		cmds = append(cmds, m.refreshCmd(true))
		if app, ok := m.selectedApp(); ok {
			cmds = append(cmds, m.loadDetailCmd(app.Name))
		}
		return m, tea.Batch(cmds...)
	case serverInfoMsg:
		if msg.err == nil {
			m.serverInfo = msg.settings
			m.username = msg.user.Username
		}
		return m, nil
	case loginResultMsg:
		if m.view != viewLogin {
			return m, nil
		}
		var cmd tea.Cmd
		m.loginPanel, cmd = m.loginPanel.Update(msg)
		if msg.err != nil {
			return m, cmd
		}
		m.session.SetToken(msg.token)
		if m.state != nil {
			if err := m.state.SetToken(m.cfg.ArgoCD.Server, msg.token); err != nil {
				m.logger.Warn("store token", "err", err)
			}
		}
		m.view = viewApps
		m.statusLine = "logged in as " + msg.username
		return m, tea.Batch(m.refreshCmd(false), m.serverInfoCmd())
	case appsMsg:
		m.err = msg.err
		if msg.err != nil {
			if !msg.quiet {
				m.statusLine = "failed to load apps"
			}
			return m, nil
		}
		m.appsAll = msg.apps
		m.lastRefresh = m.clock.Now().UTC()
		m.applyFilter(true)
		m.ensureSidebarSelectionVisible()
		if !msg.quiet {
			m.statusLine = fmt.Sprintf("loaded %d apps", len(m.appsAll))
		}
		if len(m.apps) > 0 && (m.detail == nil || m.detail.Name != m.apps[m.selected].Name) {
			return m, m.loadDetailCmd(m.apps[m.selected].Name)
		}
		return m, nil
	case detailMsg:
		if msg.err != nil {
			m.detailErr = msg.err
			m.statusLine = "failed to load details"
			return m, nil
		}
		if len(m.apps) > 0 && m.apps[m.selected].Name != msg.app.Name {
			return m, nil
		}
		m.detailErr = nil
		m.detail = &msg.app
		return m, nil
	case syncBatchMsg:
		if !m.syncModal {
			return m, nil
		}
		if msg.dryRun {
			m.syncDryRunComplete = true
			m.syncDryRunResults = msg.results
			m.statusLine = "dry-run complete (y=sync, n=cancel)"
			return m, nil
		}

		targets := m.syncTargets
		m.syncModal = false
		m.syncTargets = nil
		m.syncPreview = nil
		m.syncDryRunComplete = false
		m.syncDryRunResults = nil
		failed := 0
		for _, r := range msg.results {
			if r.err != nil {
				failed++
			}
		}
		if failed > 0 {
			m.statusLine = fmt.Sprintf("sync failed for %d of %d apps", failed, len(msg.results))
			return m, m.refreshCmd(true)
		}
		m.statusLine = "sync started"
		if len(targets) == 1 {
			next, cmd := m.openProgress(targets[0])
			return next, tea.Batch(cmd, m.refreshCmd(true))
		}
		return m, m.refreshCmd(true)
	case revisionsMsg:
		if !m.rollbackModal || msg.appName != m.rollbackApp {
			return m, nil
		}
		m.rollbackLoading = false
		m.rollbackErr = msg.err
		if msg.err == nil {
			m.rollbackRevs = msg.revisions
			m.rollbackSelected = clamp(m.rollbackSelected, 0, max(0, len(msg.revisions)-1))
			m.rollbackConfirm = false
			m.statusLine = fmt.Sprintf("loaded %d revisions", len(msg.revisions))
		} else {
			m.rollbackRevs = nil
			m.statusLine = "failed to load revisions"
		}
		return m, nil
	case rollbackMsg:
		if msg.err != nil {
			m.rollbackErr = msg.err
			m.rollbackLoading = false
			m.statusLine = "rollback failed"
			return m, nil
		}
		m.rollbackModal = false
		m.rollbackApp = ""
		m.rollbackLoading = false
		m.rollbackErr = nil
		m.rollbackRevs = nil
		m.rollbackConfirm = false
		m.statusLine = "rollback started"
		if m.view == viewHistory || m.view == viewRevision {
			m.view, m.back = viewApps, viewApps
		}
		next, cmd := m.openProgress(msg.appName)
		return next, tea.Batch(cmd, m.refreshCmd(true))
	case terminateMsg:
		m.terminateLoading = false
		m.terminateErr = msg.err
		if msg.err != nil {
			m.statusLine = "terminate failed"
			return m, nil
		}
		m.terminateModal = false
		m.terminateApp = ""
		m.terminateConfirm = false
		m.statusLine = "operation terminated"
		return m, m.refreshCmd(true)
	case deleteMsg:
		if msg.err != nil {
			m.statusLine = "delete failed"
			m.err = msg.err
			return m, nil
		}
		m.deleteModal = false
		m.deleteApp = ""
		m.deleteCascade = false
		m.deleteInput.SetValue("")
		m.deleteInput.Blur()
		m.detail = nil
		m.statusLine = "application deleted"
		return m, m.refreshCmd(true)
	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m.updatePanel(msg)
}

// updatePanel forwards a message to the visible panel.
func (m Model) updatePanel(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case viewDiff:
		m.diffPanel, cmd = m.diffPanel.Update(msg)
	case viewTree:
		m.treePanel, cmd = m.treePanel.Update(msg)
	case viewHistory:
		m.historyPanel, cmd = m.historyPanel.Update(msg)
	case viewRevision:
		m.revisionPanel, cmd = m.revisionPanel.Update(msg)
	case viewEvents:
		m.eventsPanel, cmd = m.eventsPanel.Update(msg)
	case viewResource:
		m.resourcePanel, cmd = m.resourcePanel.Update(msg)
	case viewProgress:
		m.progressPanel, cmd = m.progressPanel.Update(msg)
	case viewSettings:
		m.settingsPanel, cmd = m.settingsPanel.Update(msg)
	case viewLogin:
		m.loginPanel, cmd = m.loginPanel.Update(msg)
	}
	return m, cmd
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.closePanel()
		return m, tea.Quit
	}

	switch m.view {
	case viewWelcome:
		m.view = viewApps
		if m.state != nil {
			if err := m.state.MarkWelcomeSeen(); err != nil {
				m.logger.Warn("store welcome flag", "err", err)
			}
		}
		return m, nil
	case viewLogin:
		return m.updatePanel(msg)
	}

	if m.deleteModal {
		return m.updateDeleteModal(msg)
	}
	if m.syncModal {
		return m.updateSyncModal(msg)
	}
	if m.terminateModal {
		return m.updateTerminateModal(msg)
	}
	if m.rollbackModal {
		return m.updateRollbackModal(msg)
	}

	if m.view != viewApps {
		return m.updatePanelKey(msg)
	}

	// While filtering, most keys should go to the input first.
	if m.filterActive {
		if key.Matches(msg, m.keys.Clear) {
			m.filterInput.SetValue("")
			m.filterActive = false
			m.filterInput.Blur()
			m.applyFilter(true)
			m.ensureSidebarSelectionVisible()
			return m, nil
		}
		if msg.String() == "enter" {
			m.filterActive = false
			m.filterInput.Blur()
			return m, nil
		}

		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.applyFilter(true)
		m.ensureSidebarSelectionVisible()
		return m, cmd
	}

	app, hasApp := m.selectedApp()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.statusLine = "refreshing…"
		cmds := []tea.Cmd{m.reloadCmd()}
		if hasApp {
			cmds = append(cmds, m.refreshDetailCmd(app.Name, false))
		}
		return m, tea.Batch(cmds...)
	case key.Matches(msg, m.keys.RefreshHard):
		if !hasApp {
			return m, nil
		}
		m.statusLine = "hard refreshing…"
		return m, m.refreshDetailCmd(app.Name, true)
	case key.Matches(msg, m.keys.Diff):
		if !hasApp {
			return m, nil
		}
		return m.openDiff(app.Name, nil, viewApps)
	case key.Matches(msg, m.keys.Tree), key.Matches(msg, m.keys.Open):
		if !hasApp {
			return m, nil
		}
		m.treePanel = newTreeModel(m.styles, m.client, app.Name)
		m.view, m.back = viewTree, viewApps
		m.resizePanels()
		return m, m.treePanel.initCmd()
	case key.Matches(msg, m.keys.History):
		if !hasApp {
			return m, nil
		}
		m.historyPanel = newHistoryModel(m.styles, app, m.clock.Now)
		m.view, m.back = viewHistory, viewApps
		m.resizePanels()
		return m, nil
	case key.Matches(msg, m.keys.Events):
		if !hasApp {
			return m, nil
		}
		m.eventsPanel = newEventsModel(m.styles, m.client, app.Name, nil, m.clock.Now)
		m.view, m.back = viewEvents, viewApps
		m.resizePanels()
		return m, m.eventsPanel.initCmd()
	case key.Matches(msg, m.keys.Progress):
		if !hasApp {
			return m, nil
		}
		return m.openProgress(app.Name)
	case key.Matches(msg, m.keys.Settings):
		m.settingsPanel = newSettingsModel(m.styles, m.client)
		m.view, m.back = viewSettings, viewApps
		m.resizePanels()
		return m, m.settingsPanel.initCmd()
	case key.Matches(msg, m.keys.ToggleDrift):
		m.driftOnly = !m.driftOnly
		m.applyFilter(true)
		m.ensureSidebarSelectionVisible()
		if m.driftOnly {
			m.statusLine = "showing drift only"
		} else {
			m.statusLine = "showing all apps"
		}
		return m, nil
	case key.Matches(msg, m.keys.SyncBatch):
		targets := make([]string, 0)
		for _, a := range m.appsAll {
			if a.Sync != "Synced" {
				targets = append(targets, a.Name)
			}
		}
		if len(targets) == 0 {
			m.statusLine = "no drifted apps to sync"
			return m, nil
		}
		return m.startSync(targets)
	case key.Matches(msg, m.keys.SyncApp):
		if !hasApp {
			return m, nil
		}
		return m.startSync([]string{app.Name})
	case key.Matches(msg, m.keys.Rollback):
		if !hasApp {
			return m, nil
		}
		return m.startRollback(app.Name, 1)
	case key.Matches(msg, m.keys.TerminateOp):
		if !hasApp {
			return m, nil
		}
		return m.startTerminate(app)
	case key.Matches(msg, m.keys.DeleteApp):
		if !hasApp {
			return m, nil
		}
		m.deleteModal = true
		m.deleteApp = app.Name
		m.deleteCascade = false
		m.deleteInput.SetValue("")
		m.deleteInput.Focus()
		m.statusLine = "confirm delete"
		return m, nil
	case key.Matches(msg, m.keys.Filter):
		m.filterActive = true
		m.filterInput.Focus()
		return m, nil
	case key.Matches(msg, m.keys.Sort):
		m.sortMode = (m.sortMode + 1) % 3
		m.applyFilter(true)
		m.ensureSidebarSelectionVisible()
		m.statusLine = "sorted by " + m.sortMode.String()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
			m.ensureSidebarSelectionVisible()
			m.detail = nil
			m.detailErr = nil
			return m, m.loadDetailCmd(m.apps[m.selected].Name)
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.apps)-1 {
			m.selected++
			m.ensureSidebarSelectionVisible()
			m.detail = nil
			m.detailErr = nil
			return m, m.loadDetailCmd(m.apps[m.selected].Name)
		}
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		if m.filterInput.Value() != "" {
			m.filterInput.SetValue("")
			m.applyFilter(true)
			m.ensureSidebarSelectionVisible()
		}
		return m, nil
	}
	return m, nil
}

// updatePanelKey handles keys while a panel is open. Keys that open a
// nested panel are handled here; the rest go to the panel.
func (m Model) updatePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.view == viewSettings && m.settingsPanel.editing() {
		return m.updatePanel(msg)
	}
	if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Quit) {
		m.closePanel()
		m.resizePanels()
		return m, nil
	}

	switch m.view {
	case viewTree:
		ref, ok := m.treePanel.selectedRef()
		if !ok {
			break
		}
		switch msg.String() {
		case "enter":
			m.resourcePanel = newResourceDetailsModel(m.styles, m.client, m.treePanel.app, ref)
			m.view, m.back = viewResource, viewTree
			m.resizePanels()
			return m, m.resourcePanel.initCmd()
		case "d":
			return m.openDiff(m.treePanel.app, &ref, viewTree)
		case "e":
			m.eventsPanel = newEventsModel(m.styles, m.client, m.treePanel.app, &ref, m.clock.Now)
			m.view, m.back = viewEvents, viewTree
			m.resizePanels()
			return m, m.eventsPanel.initCmd()
		}
	case viewHistory:
		entry, current, ok := m.historyPanel.selectedRevision()
		if !ok {
			break
		}
		switch msg.String() {
		case "enter":
			m.revisionPanel = newRevisionDetailsModel(m.styles, m.client, m.historyPanel.app, entry, m.clock.Now)
			m.view, m.back = viewRevision, viewHistory
			m.resizePanels()
			return m, m.revisionPanel.initCmd()
		case "b":
			if current {
				m.statusLine = "cannot roll back to the current revision"
				return m, nil
			}
			return m.startRollback(m.historyPanel.app.Name, m.historyPanel.selected)
		}
	case viewProgress:
		if msg.String() == "x" {
			return m.startTerminate(m.progressPanel.state)
		}
	}
	return m.updatePanel(msg)
}

func (m Model) startSync(targets []string) (tea.Model, tea.Cmd) {
	m.syncModal = true
	m.syncTargets = targets
	m.syncPreview = m.buildSyncPreview(targets)
	m.syncDryRunComplete = false
	m.syncDryRunResults = nil
	m.statusLine = "running dry-run…"
	return m, m.syncBatchCmd(targets, true)
}

func (m Model) startRollback(appName string, selected int) (tea.Model, tea.Cmd) {
	m.rollbackModal = true
	m.rollbackApp = appName
	m.rollbackLoading = true
	m.rollbackErr = nil
	m.rollbackRevs = nil
	m.rollbackSelected = selected
	m.rollbackConfirm = false
	m.rollbackPrune = false
	m.statusLine = "loading revisions…"
	return m, m.loadRevisionsCmd(appName)
}

func (m Model) startTerminate(app argocd.Application) (tea.Model, tea.Cmd) {
	if app.OperationState == nil || app.OperationState.Phase.Completed() {
		m.statusLine = "no operation in progress"
		return m, nil
	}
	m.terminateModal = true
	m.terminateApp = app.Name
	m.terminateLoading = false
	m.terminateErr = nil
	m.terminateConfirm = false
	m.statusLine = "terminate operation?"
	return m, nil
}

func (m Model) updateDeleteModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.deleteModal = false
		m.deleteApp = ""
		m.deleteCascade = false
		m.deleteInput.SetValue("")
		m.deleteInput.Blur()
		m.statusLine = "delete cancelled"
		return m, nil
	case "tab":
		m.deleteCascade = !m.deleteCascade
		return m, nil
	case "enter":
		if strings.TrimSpace(m.deleteInput.Value()) != m.deleteApp {
			m.statusLine = "type the exact app name to confirm"
			return m, nil
		}
		m.statusLine = "deleting…"
		return m, m.deleteCmd(m.deleteApp, m.deleteCascade)
	}

	var cmd tea.Cmd
	m.deleteInput, cmd = m.deleteInput.Update(msg)
	return m, cmd
}

func (m Model) updateSyncModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		m.syncModal = false
		m.syncTargets = nil
		m.syncPreview = nil
		m.syncDryRunComplete = false
		m.syncDryRunResults = nil
		m.statusLine = "sync cancelled"
		return m, nil
	case "y":
		if !m.syncDryRunComplete {
			return m, nil
		}
		m.statusLine = "syncing…"
		return m, m.syncBatchCmd(m.syncTargets, false)
	}
	return m, nil
}

func (m Model) updateTerminateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		m.terminateModal = false
		m.terminateApp = ""
		m.terminateLoading = false
		m.terminateErr = nil
		m.terminateConfirm = false
		m.statusLine = "terminate cancelled"
		return m, nil
	case "enter":
		if m.terminateLoading {
			return m, nil
		}
		m.terminateConfirm = true
		m.statusLine = "confirm terminate with y"
		return m, nil
	case "y":
		if !m.terminateConfirm || m.terminateLoading {
			return m, nil
		}
		m.terminateLoading = true
		m.statusLine = "terminating operation…"
		return m, m.terminateCmd(m.terminateApp)
	}
	return m, nil
}

func (m Model) updateRollbackModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		m.rollbackModal = false
		m.rollbackApp = ""
		m.rollbackLoading = false
		m.rollbackErr = nil
		m.rollbackRevs = nil
		m.rollbackConfirm = false
		m.statusLine = "rollback cancelled"
		return m, nil
	case "up", "k":
		if m.rollbackSelected > 0 {
			m.rollbackSelected--
			m.rollbackConfirm = false
		}
		return m, nil
	case "down", "j":
		if m.rollbackSelected < len(m.rollbackRevs)-1 {
			m.rollbackSelected++
			m.rollbackConfirm = false
		}
		return m, nil
	case "p":
		m.rollbackPrune = !m.rollbackPrune
		return m, nil
	case "enter":
		if len(m.rollbackRevs) == 0 || m.rollbackLoading {
			return m, nil
		}
		if m.rollbackSelected == 0 {
			m.statusLine = "cannot roll back to the current revision"
			return m, nil
		}
		m.rollbackConfirm = true
		m.statusLine = "confirm rollback with y"
		return m, nil
	case "y":
		if !m.rollbackConfirm || len(m.rollbackRevs) == 0 || m.rollbackLoading || m.rollbackSelected == 0 {
			return m, nil
		}
		rev := m.rollbackRevs[m.rollbackSelected]
		m.rollbackLoading = true
		m.statusLine = fmt.Sprintf("rolling back to #%d…", rev.ID)
		return m, m.rollbackCmd(m.rollbackApp, rev.ID, m.rollbackPrune)
	}
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	switch m.view {
	case viewWelcome:
		return m.renderWelcome()
	case viewLogin:
		return m.loginPanel.View()
	}

	headerTitle := "argodash"
	if m.serverInfo.URL != "" {
		headerTitle += "  " + m.serverInfo.URL
	}
	if m.serverInfo.DexConfigured || m.serverInfo.OIDCConfigured {
		headerTitle += "  [sso]"
	}
	if m.driftOnly {
		headerTitle += "  [drift]"
	}
	headerTitle += "  [sort:" + m.sortMode.String() + "]"
	if m.filterInput.Value() != "" || m.filterActive {
		headerTitle = headerTitle + "  " + m.filterInput.View()
	}
	header := m.styles.Header.Width(m.width).Render(headerTitle)

	footer := m.renderFooter(m.width)

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 0 {
		bodyHeight = 0
	}

	sidebarWidth, mainWidth := m.columnWidths()
	sidebar := m.renderSidebar(sidebarWidth, bodyHeight)
	main := m.renderMain(mainWidth, bodyHeight)

	row := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)

	return lipgloss.JoinVertical(lipgloss.Top, header, row, footer)
}

func (m Model) renderFooter(w int) string {
	drifted := 0
	for _, a := range m.appsAll {
		if a.Sync != "Synced" {
			drifted++
		}
	}

	ts := "never"
	if !m.lastRefresh.IsZero() {
		ts = m.lastRefresh.Format("15:04:05Z")
	}

	label := func(s string) string { return m.styles.StatusLabel.Render(s) }
	val := func(s string) string { return m.styles.StatusValue.Render(s) }

	driftStyle := m.styles.StatusValue
	if drifted > 0 {
		driftStyle = m.styles.StatusWarn
	}

	leftParts := []string{label("server:") + val(m.serverLabel)}
	if m.username != "" {
		leftParts = append(leftParts, label("user:")+val(m.username))
	}
	leftParts = append(leftParts,
		label("refresh:")+val(ts),
		label("apps:")+val(fmt.Sprintf("%d", len(m.appsAll))),
		label("drift:")+driftStyle.Render(fmt.Sprintf("%d", drifted)),
	)
	if strings.TrimSpace(m.statusLine) != "" {
		leftParts = append(leftParts, label("msg:")+val(m.statusLine))
	}
	left := strings.Join(leftParts, "  ")

	right := m.help.View(m.keys)

	gap := w - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + right
	return m.styles.StatusBar.Width(w).Render(line)
}

func (m Model) renderSidebar(w, h int) string {
	titleText := "Applications"
	if len(m.appsAll) > 0 && len(m.apps) != len(m.appsAll) {
		titleText = fmt.Sprintf("Applications (%d/%d)", len(m.apps), len(m.appsAll))
	} else if len(m.appsAll) > 0 {
		titleText = fmt.Sprintf("Applications (%d)", len(m.appsAll))
	}
	title := m.styles.SidebarTitle.Render(titleText)
	lines := []string{title, strings.Repeat("─", max(0, w-4))}

	if m.err != nil {
		lines = append(lines, m.styles.Error.Render("load failed"))
	}

	maxItems := max(0, h-2-len(lines))
	start := clamp(m.sidebarOffset, 0, max(0, len(m.apps)-1))
	end := min(len(m.apps), start+maxItems)

	for i := start; i < end; i++ {
		a := m.apps[i]
		name := a.Name
		if a.Sync != "" && a.Sync != "Synced" {
			name = "! " + name
		}
		if i == m.selected {
			lines = append(lines, m.styles.SidebarSelected.Render("▶ "+name))
		} else {
			lines = append(lines, m.styles.SidebarItem.Render("  "+name))
		}
	}

	if len(m.apps) > end && maxItems > 0 {
		lines[len(lines)-1] = lines[len(lines)-1] + m.styles.SidebarItem.Render("  …")
	}

	content := strings.Join(lines, "\n")
	return m.styles.Sidebar.Width(max(0, w-2)).Height(max(0, h-2)).Render(content)
}

func (m Model) renderMain(w, h int) string {
	box := func(content string) string {
		return m.styles.Main.Width(max(0, w-2)).Height(max(0, h-2)).Render(content)
	}

	if m.deleteModal {
		lines := []string{fmt.Sprintf("Delete application: %s", m.deleteApp), ""}
		lines = append(lines, "This is destructive.")
		lines = append(lines, fmt.Sprintf("Cascade delete: %v (tab to toggle)", m.deleteCascade))
		lines = append(lines, "", "Type the application name to confirm:", m.deleteInput.View(), "")
		lines = append(lines, "Enter=delete  Esc=cancel")
		return box(strings.Join(lines, "\n"))
	}
	if m.terminateModal {
		lines := []string{fmt.Sprintf("Terminate operation: %s", m.terminateApp), ""}
		if m.terminateErr != nil {
			lines = append(lines, "Error:", m.terminateErr.Error(), "")
		}
		if m.terminateLoading {
			lines = append(lines, "Terminating…")
		} else if m.terminateConfirm {
			lines = append(lines, "Confirm terminate? y=confirm, n/esc=cancel")
		} else {
			lines = append(lines, "Enter=select  y=confirm  n/esc=cancel")
		}
		return box(strings.Join(lines, "\n"))
	}
	if m.rollbackModal {
		return box(m.renderRollbackModal())
	}
	if m.syncModal {
		return box(m.renderSyncModal())
	}

	switch m.view {
	case viewDiff:
		return box(m.diffPanel.View())
	case viewTree:
		return box(m.treePanel.View())
	case viewHistory:
		return box(m.historyPanel.View())
	case viewRevision:
		return box(m.revisionPanel.View())
	case viewEvents:
		return box(m.eventsPanel.View())
	case viewResource:
		return box(m.resourcePanel.View())
	case viewProgress:
		return box(m.progressPanel.View())
	case viewSettings:
		return box(m.settingsPanel.View())
	}

	if m.err != nil && len(m.appsAll) == 0 {
		content := "Error loading applications:\n\n" + m.err.Error() + "\n\n" +
			"Common fixes:\n" +
			"  • Ensure ARGOCD_SERVER is reachable (default expects a local port-forward)\n" +
			"  • Ensure ARGOCD_AUTH_TOKEN is set, or log in with ARGOCD_USERNAME/ARGOCD_PASSWORD\n" +
			"  • For self-signed certificates use --insecure or ARGOCD_INSECURE=true\n\n" +
			"Press 'r' to retry."
		return box(content)
	}
	app, ok := m.selectedApp()
	if !ok {
		content := "No applications. Press 'r' to refresh."
		if m.statusLine != "" {
			content += "\n\n" + m.statusLine
		}
		return box(content)
	}
	return box(m.renderDetail(app))
}

func (m Model) renderDetail(app argocd.Application) string {
	lines := []string{
		"Name:      " + app.Name,
		"Project:   " + blankIfEmpty(app.Project, "—"),
		"Status:    " + badge(app.Sync, app.Health),
		"Repo:      " + blankIfEmpty(app.RepoURL, "—"),
		"Path:      " + blankIfEmpty(app.Path, "—"),
		"Target:    " + blankIfEmpty(app.Revision, "—"),
		"Synced to: " + blankIfEmpty(shortRev(app.SyncedRevision), "—"),
		"Cluster:   " + blankIfEmpty(app.Cluster, "—"),
		"Namespace: " + blankIfEmpty(app.Namespace, "—"),
	}
	if cur, ok := app.CurrentRevision(); ok && !cur.DeployedAt.IsZero() {
		lines = append(lines, "Deployed:  "+humanize.RelTime(cur.DeployedAt, m.clock.Now(), "ago", "from now")+" by "+cur.InitiatedBy.String())
	}
	if op := app.OperationState; op != nil {
		lines = append(lines, "Operation: "+string(op.Phase)+"  "+strings.TrimSpace(op.Message))
	}
	for _, c := range app.Conditions {
		lines = append(lines, m.styles.StatusWarn.Render(c.Type+": "+c.Message))
	}
	lines = append(lines, "", "Resources:", renderResources(app.Resources))
	if m.detailErr != nil {
		lines = append(lines, "", "Error loading details:", "", m.detailErr.Error(), "", "Press 'r' to retry.")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRollbackModal() string {
	lines := []string{fmt.Sprintf("Rollback: %s", m.rollbackApp), ""}
	if m.rollbackLoading && len(m.rollbackRevs) == 0 {
		lines = append(lines, "Loading revisions…")
	}
	if m.rollbackErr != nil {
		lines = append(lines, "", "Error:", m.rollbackErr.Error())
	}
	if !m.rollbackLoading && len(m.rollbackRevs) == 0 && m.rollbackErr == nil {
		lines = append(lines, "No revisions found.")
	}
	if len(m.rollbackRevs) == 0 {
		return strings.Join(lines, "\n")
	}

	now := m.clock.Now()
	lines = append(lines, "Select a revision:")
	for i, r := range m.rollbackRevs {
		prefix := "  "
		if i == m.rollbackSelected {
			prefix = "▶ "
		}
		meta := ""
		if !r.DeployedAt.IsZero() {
			meta = " (" + humanize.RelTime(r.DeployedAt, now, "ago", "from now") + ", " + r.InitiatedBy.String() + ")"
		}
		current := ""
		if i == 0 {
			current = m.styles.Muted.Render("  current")
		}
		lines = append(lines, fmt.Sprintf("%s#%d %s%s%s", prefix, r.ID, shortRev(r.Revision), meta, current))
	}
	lines = append(lines, "", fmt.Sprintf("Prune: %v (p to toggle)", m.rollbackPrune), "")
	switch {
	case m.rollbackLoading:
		lines = append(lines, "Rolling back…")
	case m.rollbackConfirm:
		rev := m.rollbackRevs[m.rollbackSelected]
		lines = append(lines, fmt.Sprintf("Confirm rollback to #%d? y=confirm, n/esc=cancel", rev.ID))
	default:
		lines = append(lines, "Enter=select  y=confirm  n/esc=cancel")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSyncModal() string {
	lines := []string{"Sync (dry-run preview)", ""}
	lines = append(lines, fmt.Sprintf("Targets: %d", len(m.syncTargets)))
	for _, name := range m.syncTargets {
		lines = append(lines, "  - "+name)
		if rs := m.syncPreview[name]; len(rs) > 0 {
			lines = append(lines, "    Resources to reconcile:")
			for _, r := range rs {
				lines = append(lines, fmt.Sprintf("      - %s [%s]", r.Ref(), blankIfEmpty(r.Status, "—")))
			}
		}
	}
	lines = append(lines, "")
	if !m.syncDryRunComplete {
		lines = append(lines, "Running dry-run…")
		return strings.Join(lines, "\n")
	}
	lines = append(lines, "Dry-run results:")
	for _, r := range m.syncDryRunResults {
		if r.err != nil {
			lines = append(lines, fmt.Sprintf("  ✗ %s: %v", r.name, r.err))
			continue
		}
		suffix := ""
		if n := len(m.syncPreview[r.name]); n > 0 {
			suffix = fmt.Sprintf(" (%d resources)", n)
		}
		lines = append(lines, fmt.Sprintf("  ✓ %s%s", r.name, suffix))
	}
	lines = append(lines, "", "Press y to run sync, n/esc to cancel.")
	return strings.Join(lines, "\n")
}

func (m *Model) applyFilter(keepSelectionByName bool) {
	prevName := ""
	if keepSelectionByName && len(m.apps) > 0 && m.selected >= 0 && m.selected < len(m.apps) {
		prevName = m.apps[m.selected].Name
	}

	q := strings.ToLower(strings.TrimSpace(m.filterInput.Value()))
	filtered := make([]argocd.Application, 0, len(m.appsAll))
	for _, a := range m.appsAll {
		if q != "" && !strings.Contains(strings.ToLower(a.Name), q) {
			continue
		}
		if m.driftOnly && a.Sync == "Synced" {
			continue
		}
		filtered = append(filtered, a)
	}
	m.apps = filtered
	m.sortApps()

	if len(m.apps) == 0 {
		m.selected = 0
		m.detail = nil
		m.detailErr = nil
		return
	}

	if prevName != "" {
		for i := range m.apps {
			if m.apps[i].Name == prevName {
				m.selected = i
				return
			}
		}
	}

	if m.selected >= len(m.apps) {
		m.selected = max(0, len(m.apps)-1)
	}
}

func healthRank(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "degraded":
		return 0
	case "missing":
		return 1
	case "suspended":
		return 2
	case "progressing":
		return 3
	case "healthy":
		return 4
	case "":
		return 98
	default:
		return 50
	}
}

func syncRank(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "outofsync":
		return 0
	case "unknown":
		return 1
	case "synced":
		return 2
	case "":
		return 98
	default:
		return 50
	}
}

func (m *Model) sortApps() {
	if len(m.apps) < 2 {
		return
	}
	sort.SliceStable(m.apps, func(i, j int) bool {
		a, b := m.apps[i], m.apps[j]
		switch m.sortMode {
		case sortByHealth:
			ri, rj := healthRank(a.Health), healthRank(b.Health)
			if ri != rj {
				return ri < rj
			}
		case sortBySync:
			ri, rj := syncRank(a.Sync), syncRank(b.Sync)
			if ri != rj {
				return ri < rj
			}
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

func (m *Model) ensureSidebarSelectionVisible() {
	if len(m.apps) == 0 {
		m.sidebarOffset = 0
		return
	}
	if m.height == 0 {
		return
	}

	// header + footer, sidebar border, title + rule.
	visible := max(1, m.bodyHeight()-2-2)

	if m.selected < m.sidebarOffset {
		m.sidebarOffset = m.selected
	}
	if m.selected >= m.sidebarOffset+visible {
		m.sidebarOffset = m.selected - visible + 1
	}

	maxOffset := max(0, len(m.apps)-visible)
	m.sidebarOffset = clamp(m.sidebarOffset, 0, maxOffset)
}

func blankIfEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func (m *Model) buildSyncPreview(targets []string) map[string][]argocd.ResourceStatus {
	preview := make(map[string][]argocd.ResourceStatus, len(targets))
	for _, name := range targets {
		// Prefer loaded details for the selected app.
		var rs []argocd.ResourceStatus
		if m.detail != nil && m.detail.Name == name {
			rs = m.detail.Resources
		} else {
			for _, a := range m.appsAll {
				if a.Name == name {
					rs = a.Resources
					break
				}
			}
		}
		var out []argocd.ResourceStatus
		for _, r := range rs {
			if strings.TrimSpace(r.Status) != "" && r.Status != "Synced" {
				out = append(out, r)
			}
		}
		if len(out) > 0 {
			preview[name] = out
		}
	}
	return preview
}

func renderResources(rs []argocd.ResourceStatus) string {
	if len(rs) == 0 {
		return "  (none yet)"
	}
	lines := make([]string, 0, len(rs))
	for _, r := range rs {
		line := "  " + r.Ref().String() + " " + badge(blankIfEmpty(r.Status, "Unknown"), r.Health)
		if r.Hook {
			line += " (hook)"
		}
		if r.RequiresPruning {
			line += " (prune)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
