// Package progress follows an Argo CD sync operation while it runs.
//
// The tracker has no authority over the operation. It only observes the
// phase reported by each poll and derives the elapsed time and resource
// progress from it.
package progress

import (
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/phin3has/argodash/internal/argocd"
)

// Transition tells the caller what to do with the interval.
type Transition int8

const (
	TransitionNone    Transition = iota
	TransitionStarted            // start the 1s interval for Generation()
	TransitionStopped            // stop the interval
)

func (t Transition) String() string {
	switch t {
	case TransitionStarted:
		return "started"
	case TransitionStopped:
		return "stopped"
	}
	return "none"
}

// Tracker is driven by Observe on each poll and by Tick on each interval.
// The zero value is an idle tracker.
type Tracker struct {
	phase   argocd.OperationPhase
	start   time.Time
	elapsed string
	gen     int
}

// Observe records the operation state from the latest poll.
func (t *Tracker) Observe(op *argocd.OperationState, now time.Time) Transition {
	var phase argocd.OperationPhase
	if op != nil {
		phase = op.Phase
	}
	t.phase = phase

	if phase == argocd.OperationRunning && !op.StartedAt.IsZero() {
		if t.start.IsZero() || !t.start.Equal(op.StartedAt) {
			t.start = op.StartedAt
			t.gen++
			t.elapsed = Elapsed(t.start, now)
			return TransitionStarted
		}
		t.elapsed = Elapsed(t.start, now)
		return TransitionNone
	}

	if !t.start.IsZero() {
		t.start = time.Time{}
		t.elapsed = ""
		t.gen++
		return TransitionStopped
	}
	return TransitionNone
}

// Tick recomputes the elapsed time. Ticks from an interval that was
// started for an earlier generation, or that arrive after the operation
// left Running, change nothing and report false.
func (t *Tracker) Tick(gen int, now time.Time) bool {
	if gen != t.gen || t.start.IsZero() {
		return false
	}
	t.elapsed = Elapsed(t.start, now)
	return true
}

// Reset drops all state, as when the view is closed.
func (t *Tracker) Reset() Transition {
	t.phase = ""
	t.elapsed = ""
	if t.start.IsZero() {
		return TransitionNone
	}
	t.start = time.Time{}
	t.gen++
	return TransitionStopped
}

func (t *Tracker) Phase() argocd.OperationPhase { return t.phase }

// Running reports whether an interval should be active.
func (t *Tracker) Running() bool { return !t.start.IsZero() }

// StartedAt is the captured start, zero when not running.
func (t *Tracker) StartedAt() time.Time { return t.start }

func (t *Tracker) Elapsed() string { return t.elapsed }

func (t *Tracker) Generation() int { return t.gen }

// Elapsed renders the wall-clock time since start, e.g. "42 seconds".
func Elapsed(start, now time.Time) string {
	return strings.TrimSpace(humanize.RelTime(start, now, "", ""))
}

// Percent is the share of resources reporting Synced, rounded to the
// nearest integer. It is 0 for an empty list.
func Percent(resources []argocd.ResourceStatus) int {
	if len(resources) == 0 {
		return 0
	}
	synced := 0
	for _, r := range resources {
		if r.Status == "Synced" {
			synced++
		}
	}
	return int(math.Round(100 * float64(synced) / float64(len(resources))))
}

// RollingOut counts resources whose health is still Progressing. Callers
// only show it once the phase is Succeeded: the sync can finish before
// health checks settle.
func RollingOut(resources []argocd.ResourceStatus) int {
	n := 0
	for _, r := range resources {
		if r.Health == "Progressing" {
			n++
		}
	}
	return n
}

// ShowRollingOut reports whether the rolling-out count applies to phase.
func ShowRollingOut(phase argocd.OperationPhase) bool {
	return phase == argocd.OperationSucceeded
}

var (
	colorRunning   = lipgloss.Color("11")
	colorSucceeded = lipgloss.Color("10")
	colorFailed    = lipgloss.Color("9")
	colorTerminate = lipgloss.Color("13")
	colorIdle      = lipgloss.Color("8")
)

func PhaseColor(phase argocd.OperationPhase) lipgloss.Color {
	switch phase {
	case argocd.OperationRunning:
		return colorRunning
	case argocd.OperationSucceeded:
		return colorSucceeded
	case argocd.OperationFailed, argocd.OperationError:
		return colorFailed
	case argocd.OperationTerminating:
		return colorTerminate
	}
	return colorIdle
}
