package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/phin3has/argodash/internal/argocd"
	"github.com/phin3has/argodash/internal/progress"
)

var t0 = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func runningApp(name string, start time.Time) argocd.Application {
	return argocd.Application{
		Name: name,
		OperationState: &argocd.OperationState{
			Phase:     argocd.OperationRunning,
			StartedAt: start,
			Operation: argocd.Operation{Sync: &argocd.SyncOperation{Revision: "c0ffee123456789"}},
		},
		Resources: []argocd.ResourceStatus{
			{Kind: "Deployment", Name: "web", Status: "Synced", Health: "Progressing"},
			{Kind: "Service", Name: "web", Status: "OutOfSync"},
		},
	}
}

func TestSyncProgress_ticksStopAfterSucceeded(t *testing.T) {
	fc := testingclock.NewFakeClock(t0)
	m := newSyncProgressModel(newStyles(), argocd.NewMockClient(), "web", fc, time.Second)
	m.setSize(80, 24)

	app := runningApp("web", t0.Add(-5*time.Second))
	m, cmd := m.Update(progressAppMsg{app: "web", state: app})
	require.NotNil(t, cmd)
	require.True(t, m.ticker.Active())
	require.True(t, m.tracker.Running())
	assert.Equal(t, "5 seconds", m.tracker.Elapsed())
	assert.Contains(t, m.renderBody(), "50% of 2 resources synced")

	ch := m.ticker.C()
	fc.Step(progress.Interval)
	tick, ok := waitTickCmd(ch)().(progressTickMsg)
	require.True(t, ok)
	m, cmd = m.Update(tick)
	require.NotNil(t, cmd, "the bridge re-arms after each tick")
	assert.Equal(t, "6 seconds", m.tracker.Elapsed())

	finished := app
	op := *app.OperationState
	op.Phase = argocd.OperationSucceeded
	end := t0.Add(3 * time.Second)
	op.FinishedAt = &end
	finished.OperationState = &op
	m, _ = m.Update(progressAppMsg{app: "web", state: finished})

	assert.False(t, m.ticker.Active())
	assert.False(t, m.tracker.Running())
	assert.IsType(t, progressTickDoneMsg{}, waitTickCmd(ch)())

	body := m.renderBody()
	assert.Contains(t, body, "Succeeded")
	assert.Contains(t, body, "1 resources still rolling out")
	assert.Contains(t, body, "Duration: 8 seconds")
}

func TestSyncProgress_staleTickIgnored(t *testing.T) {
	fc := testingclock.NewFakeClock(t0)
	m := newSyncProgressModel(newStyles(), argocd.NewMockClient(), "web", fc, time.Second)

	m, _ = m.Update(progressAppMsg{app: "web", state: runningApp("web", t0)})
	before := m.tracker.Elapsed()

	fc.Step(10 * time.Second)
	m, _ = m.Update(progressTickMsg{tick: progress.Tick{Gen: m.tracker.Generation() - 1, At: fc.Now()}})
	assert.Equal(t, before, m.tracker.Elapsed())
	m.close()
}

func TestSyncProgress_otherAppIgnored(t *testing.T) {
	fc := testingclock.NewFakeClock(t0)
	m := newSyncProgressModel(newStyles(), argocd.NewMockClient(), "web", fc, time.Second)

	m, cmd := m.Update(progressAppMsg{app: "api", state: runningApp("api", t0)})
	assert.Nil(t, cmd)
	assert.True(t, m.loading)
	assert.False(t, m.ticker.Active())
}

func TestSyncProgress_closeStopsTicker(t *testing.T) {
	fc := testingclock.NewFakeClock(t0)
	m := newSyncProgressModel(newStyles(), argocd.NewMockClient(), "web", fc, time.Second)

	m, _ = m.Update(progressAppMsg{app: "web", state: runningApp("web", t0)})
	require.True(t, m.ticker.Active())
	ch := m.ticker.C()

	m.close()
	assert.False(t, m.ticker.Active())
	assert.False(t, m.tracker.Running())
	assert.IsType(t, progressTickDoneMsg{}, waitTickCmd(ch)())
}

func TestShortRev(t *testing.T) {
	assert.Equal(t, "c0ffee1", shortRev("c0ffee123456789"))
	assert.Equal(t, "main", shortRev("main"))
}
