package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appName = "argodash"

// Config is the app configuration, read from
// $XDG_CONFIG_HOME/argodash/config.yaml and overridden by env and flags.
type Config struct {
	ArgoCD   ArgoCDConfig `yaml:"argocd"`
	UI       UIConfig     `yaml:"ui"`
	Diff     DiffConfig   `yaml:"diff"`
	Cache    CacheConfig  `yaml:"cache"`
	LogLevel string       `yaml:"logLevel"`
	LogFile  string       `yaml:"logFile"`
}

type ArgoCDConfig struct {
	Server   string        `yaml:"server"`
	Token    string        `yaml:"token"`
	Insecure bool          `yaml:"insecure"`
	Username string        `yaml:"username"`
	Timeout  time.Duration `yaml:"timeout"`

	// Password is only taken from the environment.
	Password string `yaml:"-"`
}

type UIConfig struct {
	SidebarWidth int           `yaml:"sidebarWidth"`
	PollInterval time.Duration `yaml:"pollInterval"`
	DiffLayout   string        `yaml:"diffLayout"`
}

type DiffConfig struct {
	StripRuntimeFields bool `yaml:"stripRuntimeFields"`
}

type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

func Default() Config {
	return Config{
		ArgoCD: ArgoCDConfig{Timeout: 10 * time.Second},
		UI: UIConfig{
			SidebarWidth: 28,
			PollInterval: 3 * time.Second,
			DiffLayout:   "split",
		},
		Diff:     DiffConfig{StripRuntimeFields: true},
		Cache:    CacheConfig{TTL: 5 * time.Second},
		LogLevel: "info",
		LogFile:  filepath.Join(StateDir(), appName+".log"),
	}
}

// DefaultPath is $XDG_CONFIG_HOME/argodash/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, "config.yaml")
}

// StateDir is $XDG_STATE_HOME/argodash, falling back to ~/.local/state.
func StateDir() string {
	if d := os.Getenv("XDG_STATE_HOME"); d != "" {
		return filepath.Join(d, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".local", "state", appName)
}

// Load reads path over the defaults. An empty path means DefaultPath. A
// missing file is not an error; an explicit path that is missing is.
func Load(path string) (Config, error) {
	c := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return c, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.ArgoCD.Timeout <= 0 {
		c.ArgoCD.Timeout = d.ArgoCD.Timeout
	}
	if c.UI.SidebarWidth <= 0 {
		c.UI.SidebarWidth = d.UI.SidebarWidth
	}
	if c.UI.PollInterval <= 0 {
		c.UI.PollInterval = d.UI.PollInterval
	}
	if c.UI.DiffLayout == "" {
		c.UI.DiffLayout = d.UI.DiffLayout
	}
	if c.Cache.TTL < 0 {
		c.Cache.TTL = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LogFile == "" {
		c.LogFile = d.LogFile
	}
}

// ApplyEnv overrides c with the ARGOCD_* variables the argocd CLI uses.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("ARGOCD_SERVER"); v != "" {
		c.ArgoCD.Server = v
	}
	if v := getenv("ARGOCD_AUTH_TOKEN"); v != "" {
		c.ArgoCD.Token = v
	}
	if v := getenv("ARGOCD_USERNAME"); v != "" {
		c.ArgoCD.Username = v
	}
	if v := getenv("ARGOCD_PASSWORD"); v != "" {
		c.ArgoCD.Password = v
	}
	if v := getenv("ARGOCD_INSECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ARGOCD_INSECURE: %w", err)
		}
		c.ArgoCD.Insecure = b
	}
	return nil
}

// Validate checks values the UI cannot recover from.
func (c Config) Validate() error {
	var errs []error
	if c.UI.PollInterval < 500*time.Millisecond {
		errs = append(errs, fmt.Errorf("ui.pollInterval must be at least 500ms, got %s", c.UI.PollInterval))
	}
	switch strings.ToLower(c.UI.DiffLayout) {
	case "split", "unified", "inline":
	default:
		errs = append(errs, fmt.Errorf("ui.diffLayout must be split or unified, got %q", c.UI.DiffLayout))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logLevel must be debug, info, warn or error, got %q", c.LogLevel))
	}
	if s := c.ArgoCD.Server; s != "" && !strings.Contains(s, "://") {
		errs = append(errs, fmt.Errorf("argocd.server must include a scheme, got %q", s))
	}
	return errors.Join(errs...)
}
