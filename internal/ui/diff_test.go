package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phin3has/argodash/internal/argocd"
	"github.com/phin3has/argodash/internal/diff"
	"github.com/phin3has/argodash/internal/normalize"
)

func managed(kind, name, live, target string) argocd.ManagedResource {
	return argocd.ManagedResource{
		Kind:                kind,
		Namespace:           "web",
		Name:                name,
		NormalizedLiveState: live,
		TargetState:         target,
	}
}

func diffState() argocd.AppState {
	return argocd.AppState{
		App: argocd.Application{
			Name: "web",
			Resources: []argocd.ResourceStatus{
				{Kind: "Service", Namespace: "web", Name: "web", Status: "Synced", Health: "Healthy"},
				{Kind: "ConfigMap", Namespace: "web", Name: "cfg", Status: "OutOfSync"},
			},
		},
		Managed: []argocd.ManagedResource{
			// Reported Synced, so never diffed even though the texts differ.
			managed("Service", "web", `{"kind":"Service","spec":{"port":80}}`, `{"kind":"Service","spec":{"port":8080}}`),
			managed("ConfigMap", "cfg", `{"kind":"ConfigMap","data":{"a":"1"}}`, `{"kind":"ConfigMap","data":{"a":"2"}}`),
			managed("Secret", "creds", "", "null"),
		},
	}
}

func TestBuildDiffs_statusWins(t *testing.T) {
	got := buildDiffs(diffState(), nil, normalize.Options{StripRuntimeFields: true})
	require.Len(t, got, 3)

	assert.Equal(t, diff.StateSynced, got[0].view.State)
	assert.Equal(t, "Synced", got[0].badge.Sync)

	assert.Equal(t, diff.StateDiff, got[1].view.State)
	assert.Equal(t, "OutOfSync", got[1].badge.Sync)

	// No status and no state on either side.
	assert.Equal(t, diff.StateNoDiff, got[2].view.State)
	assert.Equal(t, "Unknown", got[2].badge.Sync)
}

func TestBuildDiffs_filter(t *testing.T) {
	ref := argocd.ResourceRef{Kind: "ConfigMap", Namespace: "web", Name: "cfg", Version: "v1", UID: "abc"}
	got := buildDiffs(diffState(), &ref, normalize.Options{})
	require.Len(t, got, 1)
	assert.Equal(t, "cfg", got[0].view.Ref.Name)
}

func TestDiffModel_toggles(t *testing.T) {
	m := newDiffModel(newStyles(), argocd.NewMockClient(), "web-frontend", nil, normalize.Options{StripRuntimeFields: true}, diff.LayoutSplit)
	m.setSize(120, 40)
	m, _ = m.Update(m.initCmd()())
	require.False(t, m.loading)
	assert.Equal(t, 2, m.changed())

	m, _ = m.Update(keyPress("l"))
	assert.Equal(t, diff.LayoutUnified, m.layout)

	m, _ = m.Update(keyPress("o"))
	assert.True(t, m.driftOnly)
	assert.NotContains(t, m.renderBody(), "Resource is in sync")
}
