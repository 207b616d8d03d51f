//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/phin3has/argodash/internal/argocd"
	"github.com/phin3has/argodash/internal/correlate"
	"github.com/phin3has/argodash/internal/diff"
	"github.com/phin3has/argodash/internal/normalize"
)

// These tests talk to a real Argo CD. Run with:
//
//	ARGOCD_SERVER=https://localhost:8080 ARGOCD_AUTH_TOKEN=... \
//	  go test -tags=integration ./test/integration/...
func client(t *testing.T) *argocd.HTTPClient {
	t.Helper()
	server := os.Getenv("ARGOCD_SERVER")
	if server == "" {
		t.Skip("ARGOCD_SERVER not set")
	}
	c := argocd.NewHTTPClient(server, argocd.NewSession(os.Getenv("ARGOCD_AUTH_TOKEN")))
	c.Username = os.Getenv("ARGOCD_USERNAME")
	c.Password = os.Getenv("ARGOCD_PASSWORD")
	c.Insecure = os.Getenv("ARGOCD_INSECURE") == "true"
	return c
}

func TestIntegration_DiffEveryApplication(t *testing.T) {
	c := client(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	apps, err := c.ListApplications(ctx)
	require.NoError(t, err)
	if len(apps) == 0 {
		t.Skip("no applications on the server")
	}

	for _, a := range apps {
		t.Run(a.Name, func(t *testing.T) {
			st, err := argocd.FetchAppState(ctx, c, a.Name)
			require.NoError(t, err)
			require.NoError(t, st.ManagedErr)

			idx := correlate.NewIndex(st.App.Resources)
			for _, r := range st.Managed {
				status, _ := idx.Lookup(correlate.KeyOfManaged(r))
				v := diff.Present(r, status, normalize.Options{StripRuntimeFields: true})
				if status != nil && status.Status == "Synced" {
					require.Equal(t, diff.StateSynced, v.State, r.Ref().String())
				}
			}
		})
	}
}

func TestIntegration_SettingsAndUser(t *testing.T) {
	c := client(t)
	ctx := context.Background()

	s, err := c.Settings(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, s.URL)

	_, err = c.UserInfo(ctx)
	require.NoError(t, err)
}
