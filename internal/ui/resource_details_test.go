package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phin3has/argodash/internal/argocd"
)

func TestFindDesiredManifest(t *testing.T) {
	manifests := []string{
		`{"apiVersion":"v1","kind":"Service","metadata":{"name":"web","namespace":"web"}}`,
		"apiVersion: apps/v1\nkind: Deployment\nmetadata:\n  name: web\n  namespace: other\n",
		"apiVersion: apps/v1\nkind: Deployment\nmetadata:\n  name: web\n",
		"not: [valid",
	}

	tests := []struct {
		name string
		ref  argocd.ResourceRef
		want string
	}{
		{"json manifest", argocd.ResourceRef{Kind: "Service", Name: "web", Namespace: "web"}, manifests[0]},
		{"namespace must match when both set", argocd.ResourceRef{Kind: "Deployment", Name: "web", Namespace: "web"}, manifests[2]},
		{"yaml manifest", argocd.ResourceRef{Kind: "Deployment", Name: "web", Namespace: "other"}, manifests[1]},
		{"missing", argocd.ResourceRef{Kind: "Ingress", Name: "web"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findDesiredManifest(manifests, tt.ref))
		})
	}
}

func TestManifestJSON(t *testing.T) {
	got := manifestJSON("kind: Service\nmetadata:\n  name: web\n")
	assert.Equal(t, "{\n  \"kind\": \"Service\",\n  \"metadata\": {\n    \"name\": \"web\"\n  }\n}", got)

	assert.Equal(t, "not: [valid", manifestJSON("not: [valid"))
}

func TestResourceDetails_tabs(t *testing.T) {
	ref := argocd.ResourceRef{Group: "apps", Kind: "Deployment", Namespace: "web", Name: "web-frontend"}
	m := newResourceDetailsModel(newStyles(), argocd.NewMockClient(), "web-frontend", ref)
	m.setSize(100, 30)
	m, _ = m.Update(m.initCmd()())
	require.NoError(t, m.err)

	live := m.renderBody()
	assert.Contains(t, live, "ghcr.io/example/web:2.3.1")

	m, _ = m.Update(keyPress("tab"))
	assert.Equal(t, resourceTabDesired, m.tab)
	assert.Contains(t, m.renderBody(), "ghcr.io/example/web:2.4.0")

	m, _ = m.Update(keyPress("t"))
	assert.Contains(t, m.renderBody(), `"image": "ghcr.io/example/web:2.4.0"`)
}
