package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/phin3has/argodash/internal/argocd"
	"github.com/phin3has/argodash/internal/config"
	"github.com/phin3has/argodash/internal/ui"
)

// rootOptions holds the persistent flags and what PersistentPreRunE
// builds from them.
type rootOptions struct {
	configPath string
	statePath  string
	server     string
	insecure   bool
	mock       bool
	logFile    string
	logLevel   string

	cfg     config.Config
	state   *config.StateStore
	logger  *slog.Logger
	logSink io.Closer
}

func newRootCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "argodash",
		Short:         "A terminal console for Argo CD",
		Long:          "argodash shows Argo CD applications, diffs live state against Git and follows syncs.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.runTUI(cmd)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&o.configPath, "config", "", "path to config file (default $XDG_CONFIG_HOME/argodash/config.yaml)")
	f.StringVar(&o.statePath, "state", "", "path to the state file (default $XDG_STATE_HOME/argodash/state.yaml)")
	f.StringVar(&o.server, "server", "", "Argo CD server URL (overrides config and ARGOCD_SERVER)")
	f.BoolVar(&o.insecure, "insecure", false, "skip TLS verification (or ARGOCD_INSECURE=true)")
	f.BoolVar(&o.mock, "mock", false, "use canned data instead of a server")
	f.StringVar(&o.logFile, "log-file", "", "log file (default $XDG_STATE_HOME/argodash/argodash.log)")
	f.StringVar(&o.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newAppsCmd(o),
		newDiffCmd(o),
		newLoginCmd(o),
		newVersionCmd(),
	)
	return cmd
}

// execute runs cmd and closes the log file on every path, including
// errors, which skip cobra's post-run hooks.
func execute(ctx context.Context, cmd *cobra.Command, o *rootOptions) error {
	defer o.close()
	return cmd.ExecuteContext(ctx)
}

func (o *rootOptions) close() {
	if o.logSink != nil {
		_ = o.logSink.Close()
		o.logSink = nil
	}
}

// setup resolves the config as defaults < file < env < flags and opens
// the log file.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return err
	}
	if o.server != "" {
		cfg.ArgoCD.Server = o.server
	}
	if cmd.Flags().Changed("insecure") {
		cfg.ArgoCD.Insecure = o.insecure
	}
	if o.logFile != "" {
		cfg.LogFile = o.logFile
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config:\n%w", err)
	}
	o.cfg = cfg

	statePath := o.statePath
	if statePath == "" {
		statePath = config.DefaultStatePath()
	}
	o.state = config.NewStateStore(statePath)

	return o.setupLogging()
}

func (o *rootOptions) setupLogging() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.cfg.LogLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	var w io.Writer = io.Discard
	if path := strings.TrimSpace(o.cfg.LogFile); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		o.logSink = f
		w = f
	}
	o.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(o.logger)
	return nil
}

// useMock reports whether to serve canned data. Without a server there
// is nothing else to talk to.
func (o *rootOptions) useMock() bool {
	return o.mock || o.cfg.ArgoCD.Server == ""
}

// client builds the API client. The token comes from the config or env
// first, then from the state file for this server.
func (o *rootOptions) client() (argocd.Client, *argocd.Session) {
	if o.useMock() {
		return argocd.NewMockClient(), argocd.NewSession("")
	}
	token := o.cfg.ArgoCD.Token
	if token == "" {
		token = o.state.Token(o.cfg.ArgoCD.Server)
	}
	session := argocd.NewSession(token)

	h := argocd.NewHTTPClient(o.cfg.ArgoCD.Server, session)
	h.Username = o.cfg.ArgoCD.Username
	h.Password = o.cfg.ArgoCD.Password
	h.Insecure = o.cfg.ArgoCD.Insecure
	h.Timeout = o.cfg.ArgoCD.Timeout
	h.CacheTTL = o.cfg.Cache.TTL
	h.Logger = o.logger
	return h, session
}

func (o *rootOptions) runTUI(cmd *cobra.Command) error {
	client, session := o.client()
	o.logger.Info("starting", "server", o.cfg.ArgoCD.Server, "mock", o.useMock())

	m := ui.NewModel(o.cfg, client,
		ui.WithSession(session),
		ui.WithStateStore(o.state),
		ui.WithLogger(o.logger),
	)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err := p.Run()
	return err
}
