package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phin3has/argodash/internal/argocd"
)

func TestJSONToYAML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "object keeps key order",
			in:   `{"kind":"ConfigMap","apiVersion":"v1","metadata":{"name":"cfg","namespace":"web"},"data":{"mode":"blue"}}`,
			want: "kind: ConfigMap\napiVersion: v1\nmetadata:\n  name: cfg\n  namespace: web\ndata:\n  mode: blue\n",
		},
		{
			name: "lists and numbers",
			in:   `{"spec":{"replicas":3,"ratio":0.5,"ports":[{"port":80,"name":"http"}],"args":["serve","debug"]}}`,
			want: "spec:\n  replicas: 3\n  ratio: 0.5\n  ports:\n  - port: 80\n    name: http\n  args:\n  - serve\n  - debug\n",
		},
		{
			name: "integers beyond int64",
			in:   `{"big":12345678901234567890,"neg":-9223372036854775808}`,
			want: "big: 12345678901234567890\nneg: -9223372036854775808\n",
		},
		{
			name: "numeric strings stay strings",
			in:   `{"data":{"port":"8080"}}`,
			want: "data:\n  port: \"8080\"\n",
		},
		{
			name: "empty containers",
			in:   `{"a":{},"b":[]}`,
			want: "a: {}\nb: []\n",
		},
		{name: "empty string", in: "", want: ""},
		{name: "malformed", in: `{"kind":`, want: `{"kind":`},
		{name: "already yaml", in: "kind: Service\n", want: "kind: Service\n"},
		{name: "two values", in: `{} {}`, want: `{} {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JSONToYAML(tt.in))
		})
	}
}

func TestJSONToYAML_Deterministic(t *testing.T) {
	in := `{"metadata":{"labels":{"z":"1","a":"2","m":"3"}},"spec":{"template":{"spec":{"containers":[{"name":"app","image":"ghcr.io/example/app:1.2.3"}]}}}}`
	first := JSONToYAML(in)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, JSONToYAML(in))
	}
	assert.Contains(t, first, "labels:\n    z: \"1\"\n    a: \"2\"\n    m: \"3\"\n")
}

func TestJSONToYAML_NoWrap(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("word ", 60))
	out := JSONToYAML(`{"description":"` + long + `"}`)
	assert.Equal(t, "description: "+long+"\n", out)
}

func TestLiveSource(t *testing.T) {
	assert.Equal(t, "norm", LiveSource(argocd.ManagedResource{LiveState: "raw", NormalizedLiveState: "norm"}))
	assert.Equal(t, "raw", LiveSource(argocd.ManagedResource{LiveState: "raw"}))
	assert.Equal(t, "raw", LiveSource(argocd.ManagedResource{LiveState: "raw", NormalizedLiveState: "null"}))
}

func TestStripRuntimeFields(t *testing.T) {
	in := `{
		"apiVersion": "v1",
		"kind": "Service",
		"metadata": {
			"name": "web",
			"namespace": "web",
			"uid": "1234",
			"resourceVersion": "99",
			"generation": 4,
			"creationTimestamp": "2026-01-01T00:00:00Z",
			"selfLink": "/api/v1/namespaces/web/services/web",
			"managedFields": [{"manager": "kubectl"}],
			"annotations": {
				"kubectl.kubernetes.io/last-applied-configuration": "{}",
				"team": "frontend"
			}
		},
		"spec": {"port": 80},
		"status": {"loadBalancer": {}}
	}`

	got := StripRuntimeFields(in)
	assert.JSONEq(t, `{
		"apiVersion": "v1",
		"kind": "Service",
		"metadata": {"name": "web", "namespace": "web", "annotations": {"team": "frontend"}},
		"spec": {"port": 80}
	}`, got)

	t.Run("only last-applied annotation", func(t *testing.T) {
		got := StripRuntimeFields(`{"metadata":{"name":"a","annotations":{"kubectl.kubernetes.io/last-applied-configuration":"{}"}}}`)
		assert.JSONEq(t, `{"metadata":{"name":"a"}}`, got)
	})

	t.Run("not an object", func(t *testing.T) {
		assert.Equal(t, `[1,2]`, StripRuntimeFields(`[1,2]`))
		assert.Equal(t, `nope`, StripRuntimeFields(`nope`))
	})
}

func TestPair(t *testing.T) {
	t.Run("normalized state is used as is", func(t *testing.T) {
		r := argocd.ManagedResource{
			LiveState:           `{"metadata":{"name":"a","uid":"u"},"spec":{"x":1}}`,
			NormalizedLiveState: `{"metadata":{"name":"a"},"spec":{"x":1}}`,
			TargetState:         `{"metadata":{"name":"a"},"spec":{"x":2}}`,
		}
		live, target := Pair(r, DefaultOptions())
		assert.Equal(t, "metadata:\n  name: a\nspec:\n  x: 1\n", live)
		assert.Equal(t, "metadata:\n  name: a\nspec:\n  x: 2\n", target)
	})

	t.Run("raw live state is stripped and both sides sorted", func(t *testing.T) {
		r := argocd.ManagedResource{
			LiveState:   `{"spec":{"x":1},"metadata":{"name":"a","resourceVersion":"7"},"status":{"ready":true}}`,
			TargetState: `{"spec":{"x":1},"metadata":{"name":"a"}}`,
		}
		live, target := Pair(r, DefaultOptions())
		assert.Equal(t, target, live)
		assert.Equal(t, "metadata:\n  name: a\nspec:\n  x: 1\n", live)
	})

	t.Run("stripping disabled", func(t *testing.T) {
		r := argocd.ManagedResource{LiveState: `{"metadata":{"name":"a","resourceVersion":"7"}}`}
		live, _ := Pair(r, Options{})
		assert.Contains(t, live, "resourceVersion")
	})

	t.Run("null states are empty", func(t *testing.T) {
		live, target := Pair(argocd.ManagedResource{LiveState: "null", TargetState: "null"}, DefaultOptions())
		assert.Empty(t, live)
		assert.Empty(t, target)
	})

	t.Run("missing live object", func(t *testing.T) {
		live, target := Pair(argocd.ManagedResource{LiveState: "null", TargetState: `{"kind":"Job"}`}, DefaultOptions())
		assert.Empty(t, live)
		assert.Equal(t, "kind: Job\n", target)
	})
}
