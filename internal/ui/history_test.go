package ui

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phin3has/argodash/internal/argocd"
)

func TestHistory_selectionMarksCurrent(t *testing.T) {
	started := t0.Add(-90 * time.Second)
	app := argocd.Application{
		Name: "web",
		History: []argocd.RevisionHistory{
			{ID: 2, Revision: "c0ffee123456", DeployedAt: t0, DeployStartedAt: &started, InitiatedBy: argocd.Initiator{Automated: true}},
			{ID: 1, Revision: "deadbeef0001", DeployedAt: t0.Add(-48 * time.Hour), InitiatedBy: argocd.Initiator{Username: "alice"}},
		},
	}
	m := newHistoryModel(newStyles(), app, func() time.Time { return t0.Add(time.Hour) })
	m.setSize(80, 20)

	entry, current, ok := m.selectedRevision()
	require.True(t, ok)
	assert.True(t, current)
	assert.Equal(t, int64(2), entry.ID)

	body := m.renderBody()
	assert.Contains(t, body, "(current)")
	assert.Contains(t, body, "1 hour ago")
	assert.Contains(t, body, "automated sync policy")

	m, _ = m.Update(keyPress("down"))
	entry, current, ok = m.selectedRevision()
	require.True(t, ok)
	assert.False(t, current)
	assert.Equal(t, "alice", entry.InitiatedBy.String())

	m, _ = m.Update(keyPress("down"))
	assert.Equal(t, 1, m.selected)
}

func TestHistory_empty(t *testing.T) {
	m := newHistoryModel(newStyles(), argocd.Application{Name: "web"}, nil)
	_, _, ok := m.selectedRevision()
	assert.False(t, ok)
	assert.Contains(t, m.renderBody(), "no history")
}

func TestDeployDuration(t *testing.T) {
	started := t0.Add(-90 * time.Second)
	assert.Equal(t, "1 minute", deployDuration(argocd.RevisionHistory{DeployedAt: t0, DeployStartedAt: &started}))
	assert.Equal(t, "—", deployDuration(argocd.RevisionHistory{DeployedAt: t0}))
}

func TestRevisionDetails_sourceKind(t *testing.T) {
	c := argocd.NewMockClient()
	now := func() time.Time { return t0 }

	tests := []struct {
		app     string
		want    []string
		missing string
	}{
		{app: "observability", want: []string{"Chart: loki-stack", "maintainers: Grafana Labs", "description: loki-stack 2.10.2"}, missing: "author:"},
		{app: "web-frontend", want: []string{"author:  Jane Doe", "message: bump image tags"}, missing: "Chart:"},
	}
	for _, tt := range tests {
		t.Run(tt.app, func(t *testing.T) {
			app, err := c.GetApplication(context.Background(), tt.app)
			require.NoError(t, err)
			entry, ok := app.CurrentRevision()
			require.True(t, ok)

			m := newRevisionDetailsModel(newStyles(), c, app, entry, now)
			m.setSize(80, 20)
			m, _ = m.Update(m.initCmd()())
			require.NoError(t, m.err)

			body := m.renderBody()
			for _, w := range tt.want {
				assert.Contains(t, body, w)
			}
			assert.NotContains(t, body, tt.missing)
		})
	}
}
