package diff

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phin3has/argodash/internal/argocd"
	"github.com/phin3has/argodash/internal/normalize"
)

func join(segs []Segment, skip Op) string {
	var sb strings.Builder
	for _, s := range segs {
		if s.Op != skip {
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

func TestPresent(t *testing.T) {
	live := `{"spec":{"image":"ghcr.io/example/web:2.3.1"}}`
	target := `{"spec":{"image":"ghcr.io/example/web:2.4.0"}}`
	res := argocd.ManagedResource{Kind: "Deployment", Name: "web", NormalizedLiveState: live, TargetState: target}

	tests := []struct {
		name   string
		r      argocd.ManagedResource
		status *argocd.ResourceStatus
		want   State
	}{
		{name: "synced is trusted over differing text", r: res, status: &argocd.ResourceStatus{Status: "Synced"}, want: StateSynced},
		{name: "out of sync", r: res, status: &argocd.ResourceStatus{Status: "OutOfSync"}, want: StateDiff},
		{name: "unknown status", r: res, status: nil, want: StateDiff},
		{name: "both empty", r: argocd.ManagedResource{}, status: &argocd.ResourceStatus{Status: "OutOfSync"}, want: StateNoDiff},
		{name: "both null", r: argocd.ManagedResource{LiveState: "null", TargetState: "null"}, want: StateNoDiff},
		{name: "synced and empty", r: argocd.ManagedResource{}, status: &argocd.ResourceStatus{Status: "Synced"}, want: StateSynced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Present(tt.r, tt.status, normalize.DefaultOptions())
			assert.Equal(t, tt.want, v.State)
			if tt.want != StateDiff {
				assert.Empty(t, v.Result.Rows)
				assert.NotEmpty(t, v.Message())
			}
		})
	}

	v := Present(res, nil, normalize.DefaultOptions())
	assert.Equal(t, "No diff available", Present(argocd.ManagedResource{}, nil, normalize.DefaultOptions()).Message())
	assert.True(t, v.Result.Changed())
	assert.Equal(t, 1, v.Result.Added)
	assert.Equal(t, 1, v.Result.Removed)
}

func TestWords_Alignment(t *testing.T) {
	res := Words("a\nb\nc\n", "a\nB\nc\nd\n")

	kinds := make([]RowKind, 0, len(res.Rows))
	for _, r := range res.Rows {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []RowKind{RowEqual, RowChanged, RowEqual, RowAdded}, kinds)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 1, res.Removed)

	last := res.Rows[3]
	assert.Equal(t, 0, last.LeftNo)
	assert.Equal(t, 4, last.RightNo)
	assert.Equal(t, "d", join(last.Right, OpDelete))
}

func TestWords_Identical(t *testing.T) {
	res := Words("kind: Service\nspec:\n  port: 80\n", "kind: Service\nspec:\n  port: 80\n")
	assert.False(t, res.Changed())
	assert.Len(t, res.Rows, 3)
}

func TestWords_TrailingNewlineOnly(t *testing.T) {
	res := Words("a: 1", "a: 1\n")
	assert.False(t, res.Changed())
	require.Len(t, res.Rows, 1)
	assert.Equal(t, RowEqual, res.Rows[0].Kind)
}

func TestWords_OnlyChangedWordsHighlighted(t *testing.T) {
	a := "  image: ghcr.io/example/web:2.3.1"
	b := "  image: ghcr.io/example/web:2.4.0"
	res := Words(a, b)
	require.Len(t, res.Rows, 1)
	row := res.Rows[0]
	require.Equal(t, RowChanged, row.Kind)

	assert.Equal(t, a, join(row.Left, OpInsert))
	assert.Equal(t, b, join(row.Right, OpDelete))
	for _, s := range row.Left {
		if s.Op == OpDelete {
			assert.NotContains(t, s.Text, "ghcr")
		}
	}
}

func TestSegments_Rebuild(t *testing.T) {
	pairs := [][2]string{
		{"", "new"},
		{"old", ""},
		{"data: aGVsbG8gd29ybGQ=", "data: aGVsbG8gdGhlcmU="},
		{"replicas: 3", "replicas: 5"},
		{"a b c d e", "a c d f e"},
		{"名前: テスト", "名前: 本番"},
	}
	for _, p := range pairs {
		segs := Segments(p[0], p[1])
		assert.Equal(t, p[0], join(segs, OpInsert), p[0])
		assert.Equal(t, p[1], join(segs, OpDelete), p[1])
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"  ", "image", ":", " ", "web", ":", "2", ".", "3"}, tokenize("  image: web:2.3"))
	assert.Nil(t, tokenize(""))
}

func TestLayoutDoesNotChangeResult(t *testing.T) {
	res := Words("a: 1\nb: 2\n", "a: 1\nb: 3\nc: 4\n")
	before := Words("a: 1\nb: 2\n", "a: 1\nb: 3\nc: 4\n")

	split := Render(res, LayoutSplit, 80, RenderOptions{})
	unified := Render(res, LayoutUnified, 80, RenderOptions{})
	assert.NotEqual(t, split, unified)
	assert.Equal(t, before, res)

	layout := LayoutSplit
	assert.Equal(t, LayoutUnified, layout.Toggle())
	assert.Equal(t, LayoutSplit, layout.Toggle().Toggle())
}

func TestRenderSplit_FixedWidth(t *testing.T) {
	res := Words("short\n"+strings.Repeat("x", 200)+"\n", "short\nchanged\n")
	out := RenderSplit(res, 80, RenderOptions{})
	for _, line := range strings.Split(out, "\n") {
		assert.Equal(t, 79, lipgloss.Width(line), line)
	}
}

func TestRenderUnified(t *testing.T) {
	res := Words("a\nb\n", "a\nc\n")
	out := RenderUnified(res, RenderOptions{ShowWhitespace: true})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[1], "- b"), lines[1])
	assert.True(t, strings.HasSuffix(lines[2], "+ c"), lines[2])
}

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout("Unified")
	require.NoError(t, err)
	assert.Equal(t, LayoutUnified, l)

	l, err = ParseLayout("")
	require.NoError(t, err)
	assert.Equal(t, LayoutSplit, l)

	_, err = ParseLayout("sideways")
	assert.Error(t, err)
}

func TestPatch(t *testing.T) {
	p, err := Patch("a: 1\nb: 2\n", "a: 1\nb: 3\n", "apps/Deployment/web")
	require.NoError(t, err)
	assert.Contains(t, p, "--- live/apps/Deployment/web")
	assert.Contains(t, p, "+++ target/apps/Deployment/web")
	assert.Contains(t, p, "-b: 2")
	assert.Contains(t, p, "+b: 3")

	p, err = Patch("same\n", "same\n", "x")
	require.NoError(t, err)
	assert.Empty(t, p)
}
