package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 28, c.UI.SidebarWidth)
	assert.Equal(t, 3*time.Second, c.UI.PollInterval)
	assert.Equal(t, "split", c.UI.DiffLayout)
	assert.True(t, c.Diff.StripRuntimeFields)
	assert.Equal(t, 5*time.Second, c.Cache.TTL)
	assert.NoError(t, c.Validate())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	p := writeFile(t, `
argocd:
  server: https://argocd.example.com
  insecure: true
ui:
  pollInterval: 10s
diff:
  stripRuntimeFields: false
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "https://argocd.example.com", c.ArgoCD.Server)
	assert.True(t, c.ArgoCD.Insecure)
	assert.Equal(t, 10*time.Second, c.UI.PollInterval)
	assert.False(t, c.Diff.StripRuntimeFields)
	assert.Equal(t, 28, c.UI.SidebarWidth)
	assert.Equal(t, "split", c.UI.DiffLayout)
	assert.Equal(t, 10*time.Second, c.ArgoCD.Timeout)
}

func TestLoad_ZeroValuesFallBack(t *testing.T) {
	p := writeFile(t, "ui:\n  sidebarWidth: 0\n  diffLayout: \"\"\nlogLevel: \"\"\n")
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 28, c.UI.SidebarWidth)
	assert.Equal(t, "split", c.UI.DiffLayout)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_DefaultPathMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().UI, c.UI)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeFile(t, "ui: [not, a, map]\n"))
	assert.ErrorContains(t, err, "parse config")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"ARGOCD_SERVER":     "https://env.example.com",
		"ARGOCD_AUTH_TOKEN": "tok",
		"ARGOCD_INSECURE":   "true",
		"ARGOCD_USERNAME":   "admin",
		"ARGOCD_PASSWORD":   "secret",
	}
	c := Default()
	c.ArgoCD.Server = "https://file.example.com"
	require.NoError(t, c.ApplyEnv(func(k string) string { return env[k] }))
	assert.Equal(t, "https://env.example.com", c.ArgoCD.Server)
	assert.Equal(t, "tok", c.ArgoCD.Token)
	assert.True(t, c.ArgoCD.Insecure)
	assert.Equal(t, "admin", c.ArgoCD.Username)
	assert.Equal(t, "secret", c.ArgoCD.Password)

	c = Default()
	err := c.ApplyEnv(func(k string) string {
		if k == "ARGOCD_INSECURE" {
			return "maybe"
		}
		return ""
	})
	assert.ErrorContains(t, err, "ARGOCD_INSECURE")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "poll too fast", mutate: func(c *Config) { c.UI.PollInterval = 100 * time.Millisecond }, wantErr: "pollInterval"},
		{name: "bad layout", mutate: func(c *Config) { c.UI.DiffLayout = "sideways" }, wantErr: "diffLayout"},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "logLevel"},
		{name: "server without scheme", mutate: func(c *Config) { c.ArgoCD.Server = "argocd.example.com" }, wantErr: "scheme"},
		{name: "unified is fine", mutate: func(c *Config) { c.UI.DiffLayout = "unified" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestStateStore(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "state.yaml")
	s := NewStateStore(p)

	st, err := s.Load()
	require.NoError(t, err)
	assert.False(t, st.WelcomeSeen)
	assert.Empty(t, s.Token("https://a"))

	require.NoError(t, s.SetToken("https://a", "tok-a"))
	require.NoError(t, s.SetToken("https://b", "tok-b"))
	require.NoError(t, s.MarkWelcomeSeen())

	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened := NewStateStore(p)
	assert.Equal(t, "tok-a", reopened.Token("https://a"))
	st, err = reopened.Load()
	require.NoError(t, err)
	assert.True(t, st.WelcomeSeen)

	require.NoError(t, reopened.ClearToken("https://a"))
	assert.Empty(t, reopened.Token("https://a"))
	assert.Equal(t, "tok-b", reopened.Token("https://b"))
}

func TestStateDir_XDG(t *testing.T) {
	d := t.TempDir()
	t.Setenv("XDG_STATE_HOME", d)
	assert.Equal(t, filepath.Join(d, "argodash"), StateDir())
	assert.Equal(t, filepath.Join(d, "argodash", "state.yaml"), DefaultStatePath())
}
