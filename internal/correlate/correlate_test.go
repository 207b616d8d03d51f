package correlate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phin3has/argodash/internal/argocd"
)

var statuses = []argocd.ResourceStatus{
	{Group: "apps", Kind: "Deployment", Namespace: "web", Name: "web", Status: "OutOfSync", Health: "Progressing"},
	{Kind: "Service", Namespace: "web", Name: "web", Status: "Synced", Health: "Healthy"},
	{Group: "rbac.authorization.k8s.io", Kind: "ClusterRole", Name: "reader", Status: "Synced"},
	{Group: "apps", Kind: "Deployment", Namespace: "web", Name: "web", Status: "Synced", Health: "Healthy"},
}

func TestFind(t *testing.T) {
	tests := []struct {
		name     string
		key      Key
		wantOK   bool
		wantSync string
	}{
		{name: "exact", key: KeyOf("", "Service", "web", "web"), wantOK: true, wantSync: "Synced"},
		{name: "cluster scoped without namespace", key: KeyOfManaged(argocd.ManagedResource{Group: "rbac.authorization.k8s.io", Kind: "ClusterRole", Name: "reader"}), wantOK: true, wantSync: "Synced"},
		{name: "duplicate keeps first", key: KeyOf("apps", "Deployment", "web", "web"), wantOK: true, wantSync: "OutOfSync"},
		{name: "kind is case sensitive", key: KeyOf("", "service", "web", "web")},
		{name: "group must match", key: KeyOf("v1", "Service", "web", "web")},
		{name: "namespace must match", key: KeyOf("", "Service", "other", "web")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Find(statuses, tt.key)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantSync, got.Status)
		})
	}
}

func TestNamespaceNormalizationBothWays(t *testing.T) {
	// Status listed without a namespace, resource with an explicit "".
	st := []argocd.ResourceStatus{{Kind: "Namespace", Name: "web", Status: "Synced"}}
	_, ok := Find(st, KeyOfRef(argocd.ResourceRef{Kind: "Namespace", Namespace: "", Name: "web"}))
	assert.True(t, ok)

	// And the other way round.
	st = []argocd.ResourceStatus{{Group: "", Kind: "Namespace", Namespace: "", Name: "web", Status: "Synced"}}
	_, ok = Find(st, KeyOfManaged(argocd.ManagedResource{Kind: "Namespace", Name: "web"}))
	assert.True(t, ok)
}

func TestIndexMatchesFind(t *testing.T) {
	idx := NewIndex(statuses)
	assert.Len(t, idx, 3)

	for _, s := range statuses {
		k := KeyOfStatus(s)
		want, _ := Find(statuses, k)
		got, ok := idx.Lookup(k)
		require.True(t, ok)
		assert.Same(t, want, got)
	}

	_, ok := idx.Lookup(KeyOf("", "Secret", "web", "web"))
	assert.False(t, ok)
}

func TestBadgeFor(t *testing.T) {
	assert.Equal(t, Badge{Sync: Unknown, Health: Unknown}, BadgeFor(nil))
	assert.Equal(t, Badge{Sync: "OutOfSync", Health: "Progressing"}, BadgeFor(&statuses[0]))
	assert.Equal(t, Badge{Sync: "Synced"}, BadgeFor(&statuses[2]))
	assert.Equal(t, Badge{Sync: Unknown}, BadgeFor(&argocd.ResourceStatus{}))
}
