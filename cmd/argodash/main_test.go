package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phin3has/argodash/internal/argocd"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runWith(t, &rootOptions{}, args...)
}

func runWith(t *testing.T, o *rootOptions, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ARGOCD_SERVER", "")
	t.Setenv("ARGOCD_AUTH_TOKEN", "")
	t.Setenv("ARGOCD_INSECURE", "")
	t.Setenv("XDG_CONFIG_HOME", dir)

	cmd := newRootCmd(o)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--mock",
		"--state", filepath.Join(dir, "state.yaml"),
		"--log-file", filepath.Join(dir, "argodash.log"),
	}, args...))
	err := execute(context.Background(), cmd, o)
	return out.String(), err
}

func TestAppsCommand(t *testing.T) {
	out, err := run(t, "apps")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "payments-api")
	assert.Contains(t, out, "web-frontend")

	out, err = run(t, "apps", "--drift")
	require.NoError(t, err)
	assert.Contains(t, out, "web-frontend")
	assert.NotContains(t, out, "payments-api")
}

func TestDiffCommand(t *testing.T) {
	out, err := run(t, "diff", "web-frontend", "--resource", "deployment/web-frontend", "--patch")
	require.NoError(t, err)
	assert.Contains(t, out, "Deployment.apps/web-frontend")
	assert.Contains(t, out, "-  image: ghcr.io/example/web:2.3.1")
	assert.Contains(t, out, "+  image: ghcr.io/example/web:2.4.0")
	assert.NotContains(t, out, "Ingress")

	out, err = run(t, "diff", "web-frontend", "--resource", "Service/web-frontend")
	require.NoError(t, err)
	assert.Contains(t, out, "Resource is in sync")

	_, err = run(t, "diff", "web-frontend", "--resource", "Secret/nope")
	assert.ErrorContains(t, err, "no managed resource")

	_, err = run(t, "diff", "missing")
	assert.True(t, argocd.IsNotFound(err), "got %v", err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "argodash dev"))
}

func TestVersionIgnoresBadConfig(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("argocd: [unclosed\n"), 0o600))

	_, err := run(t, "--config", bad, "apps")
	require.Error(t, err)

	out, err := run(t, "--config", bad, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "argodash dev")
}

func TestLogFileClosedAfterError(t *testing.T) {
	o := &rootOptions{}
	_, err := runWith(t, o, "diff", "web-frontend", "--resource", "Secret/nope")
	require.Error(t, err)
	assert.FileExists(t, o.cfg.LogFile)
	assert.Nil(t, o.logSink)
}

func TestLoginNeedsServer(t *testing.T) {
	_, err := run(t, "login", "-u", "admin")
	assert.ErrorContains(t, err, "needs a server")
}

func TestParseResourceFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    *resourceFilter
		wantErr bool
	}{
		{in: "", want: nil},
		{in: "Deployment/web", want: &resourceFilter{kind: "Deployment", name: "web", anyGroup: true}},
		{in: "apps/Deployment/web", want: &resourceFilter{group: "apps", kind: "Deployment", name: "web"}},
		{in: "/Service/web", want: &resourceFilter{kind: "Service", name: "web"}},
		{in: "web", wantErr: true},
		{in: "Deployment/", wantErr: true},
		{in: "a/b/c/d", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseResourceFilter(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errBadResource)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResourceFilterMatch(t *testing.T) {
	f := &resourceFilter{kind: "deployment", name: "web", anyGroup: true}
	assert.True(t, f.match(argocd.ManagedResource{Group: "apps", Kind: "Deployment", Name: "web"}))
	assert.False(t, f.match(argocd.ManagedResource{Group: "apps", Kind: "Deployment", Name: "api"}))

	core := &resourceFilter{kind: "Service", name: "web"}
	assert.False(t, core.match(argocd.ManagedResource{Group: "serving.knative.dev", Kind: "Service", Name: "web"}))

	var none *resourceFilter
	assert.True(t, none.match(argocd.ManagedResource{Kind: "Anything"}))
}
