package argocd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingTree struct {
	*MockClient
}

func (failingTree) ResourceTree(context.Context, string) (ResourceTree, error) {
	return ResourceTree{}, errors.New("tree unavailable")
}

func TestFetchAppState(t *testing.T) {
	ctx := context.Background()

	t.Run("all parts", func(t *testing.T) {
		st, err := FetchAppState(ctx, NewMockClient(), "web-frontend")
		require.NoError(t, err)
		assert.Equal(t, "web-frontend", st.App.Name)
		assert.NotEmpty(t, st.Tree.Nodes)
		assert.Len(t, st.Managed, 4)
		assert.NoError(t, st.TreeErr)
		assert.NoError(t, st.ManagedErr)
	})

	t.Run("tree failure is partial", func(t *testing.T) {
		st, err := FetchAppState(ctx, failingTree{NewMockClient()}, "web-frontend")
		require.NoError(t, err)
		assert.EqualError(t, st.TreeErr, "tree unavailable")
		assert.Len(t, st.Managed, 4)
	})

	t.Run("missing application fails", func(t *testing.T) {
		_, err := FetchAppState(ctx, NewMockClient(), "nope")
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}

func TestMockClient_SyncConverges(t *testing.T) {
	ctx := context.Background()
	m := NewMockClient()

	require.NoError(t, m.SyncApplication(ctx, "web-frontend", SyncOptions{Prune: true}))

	app, err := m.GetApplication(ctx, "web-frontend")
	require.NoError(t, err)
	require.NotNil(t, app.OperationState)

	for i := 0; i < 10 && app.OperationState.Phase == OperationRunning; i++ {
		app, err = m.GetApplication(ctx, "web-frontend")
		require.NoError(t, err)
	}
	assert.Equal(t, OperationSucceeded, app.OperationState.Phase)
	assert.NotNil(t, app.OperationState.FinishedAt)
	assert.Equal(t, "Synced", app.Sync)
	for _, r := range app.Resources {
		assert.Equal(t, "Synced", r.Status, r.Ref().String())
	}

	managed, err := m.ManagedResources(ctx, "web-frontend")
	require.NoError(t, err)
	for _, r := range managed {
		assert.Equal(t, r.TargetState, r.NormalizedLiveState)
	}

	err = m.TerminateOperation(ctx, "web-frontend")
	assert.Equal(t, ErrConflict, ErrorType(err))
}

func TestMockClient_Rollback(t *testing.T) {
	ctx := context.Background()
	m := NewMockClient()

	err := m.RollbackApplication(ctx, "payments-api", 99, false)
	assert.True(t, IsNotFound(err))

	require.NoError(t, m.RollbackApplication(ctx, "payments-api", 2, false))
	app, err := m.GetApplication(ctx, "payments-api")
	require.NoError(t, err)
	require.NotNil(t, app.OperationState)
	assert.Equal(t, "9b8a7c6d5e4f", app.OperationState.Operation.Sync.Revision)
}
