package diff

import (
	"fmt"
	"strings"

	"github.com/phin3has/argodash/internal/argocd"
	"github.com/phin3has/argodash/internal/normalize"
)

type State int8

const (
	StateDiff State = iota
	StateSynced
	StateNoDiff
)

func (s State) String() string {
	switch s {
	case StateSynced:
		return "synced"
	case StateNoDiff:
		return "no diff"
	default:
		return "diff"
	}
}

// View is what the presenter decided to show for one resource.
type View struct {
	State  State
	Ref    argocd.ResourceRef
	Live   string
	Target string
	Result Result
}

// Message is the text shown instead of a diff.
func (v View) Message() string {
	switch v.State {
	case StateSynced:
		return "✓ Resource is in sync"
	case StateNoDiff:
		return "No diff available"
	}
	return ""
}

// Present decides how to show one managed resource. The sync status Argo CD
// reports wins: a Synced resource is never diffed, even if the normalized
// texts still differ. A nil status means the status is unknown.
func Present(r argocd.ManagedResource, status *argocd.ResourceStatus, opts normalize.Options) View {
	v := View{Ref: r.Ref()}
	if status != nil && status.Status == "Synced" {
		v.State = StateSynced
		return v
	}

	v.Live, v.Target = normalize.Pair(r, opts)
	if strings.TrimSpace(v.Live) == "" && strings.TrimSpace(v.Target) == "" {
		v.State = StateNoDiff
		return v
	}
	v.State = StateDiff
	v.Result = Words(v.Live, v.Target)
	return v
}

// Layout is how a Result is drawn. Switching it never recomputes the diff.
type Layout int8

const (
	LayoutSplit Layout = iota
	LayoutUnified
)

func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "split":
		return LayoutSplit, nil
	case "unified", "inline":
		return LayoutUnified, nil
	}
	return LayoutSplit, fmt.Errorf("unknown diff layout %q (want split or unified)", s)
}

func (l Layout) String() string {
	if l == LayoutUnified {
		return "unified"
	}
	return "split"
}

func (l Layout) Toggle() Layout {
	if l == LayoutSplit {
		return LayoutUnified
	}
	return LayoutSplit
}
