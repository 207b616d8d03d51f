package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phin3has/argodash/internal/argocd"
	"github.com/phin3has/argodash/internal/correlate"
)

func node(kind, name, uid string, parents ...string) argocd.ResourceNode {
	n := argocd.ResourceNode{ResourceRef: argocd.ResourceRef{Kind: kind, Namespace: "web", Name: name, UID: uid}}
	for _, p := range parents {
		n.ParentRefs = append(n.ParentRefs, argocd.ResourceRef{UID: p})
	}
	return n
}

type lineSummary struct {
	Kind  string
	Depth int
	Sync  string
}

func summarize(lines []treeLine) []lineSummary {
	out := make([]lineSummary, 0, len(lines))
	for _, l := range lines {
		out = append(out, lineSummary{Kind: l.node.Kind, Depth: l.depth, Sync: l.badge.Sync})
	}
	return out
}

func TestBuildTree_hierarchyAndBadges(t *testing.T) {
	nodes := []argocd.ResourceNode{
		node("Pod", "web-1-x", "pod", "rs"),
		node("Service", "web", "svc", "gone"),
		node("ReplicaSet", "web-1", "rs", "deploy"),
		node("Deployment", "web", "deploy"),
	}
	idx := correlate.NewIndex([]argocd.ResourceStatus{
		{Group: "", Kind: "Deployment", Namespace: "web", Name: "web", Status: "OutOfSync", Health: "Healthy"},
	})

	got := summarize(buildTree(nodes, idx))
	want := []lineSummary{
		{Kind: "Deployment", Depth: 0, Sync: "OutOfSync"},
		{Kind: "ReplicaSet", Depth: 1, Sync: ""},
		{Kind: "Pod", Depth: 2, Sync: ""},
		// The parent is not in the tree, so the service is a root.
		{Kind: "Service", Depth: 0, Sync: correlate.Unknown},
	}
	assert.Equal(t, want, got)
}

func TestBuildTree_cycleStillListsEveryNode(t *testing.T) {
	nodes := []argocd.ResourceNode{
		node("ConfigMap", "a", "a", "b"),
		node("ConfigMap", "b", "b", "a"),
		node("Secret", "self", "self", "self"),
	}
	lines := buildTree(nodes, correlate.NewIndex(nil))
	require.Len(t, lines, 3)

	seen := map[string]int{}
	for _, l := range lines {
		seen[l.node.UID]++
	}
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "self": 1}, seen)
}

func TestNodeKey_fallsBackToIdentity(t *testing.T) {
	assert.Equal(t, "u1", nodeKey(argocd.ResourceRef{UID: "u1", Kind: "Pod"}))
	assert.Equal(t, "apps/Deployment/web/api", nodeKey(argocd.ResourceRef{Group: "apps", Kind: "Deployment", Namespace: "web", Name: "api"}))
}

func TestTreeModel_selectsNodes(t *testing.T) {
	c := argocd.NewMockClient()
	m := newTreeModel(newStyles(), c, "web-frontend")
	m.setSize(80, 30)

	m, _ = m.Update(m.initCmd()())
	require.NotEmpty(t, m.lines)

	first, ok := m.selectedRef()
	require.True(t, ok)
	assert.Equal(t, "ClusterRole", first.Kind)

	m, _ = m.Update(keyPress("down"))
	second, ok := m.selectedRef()
	require.True(t, ok)
	assert.Equal(t, "Deployment", second.Kind)
	assert.Contains(t, m.renderBody(), "└ ReplicaSet/web-frontend-7d9f8b6c5")
}
