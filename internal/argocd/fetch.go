package argocd

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// AppState is everything the diff and tree views need for one application.
// TreeErr and ManagedErr are kept separately so one failing panel does not
// blank the others.
type AppState struct {
	App        Application
	Tree       ResourceTree
	Managed    []ManagedResource
	TreeErr    error
	ManagedErr error
}

// FetchAppState loads the application, its resource tree and its managed
// resources in parallel. Only a failure to load the application itself is
// returned as an error.
func FetchAppState(ctx context.Context, c AppClient, name string) (AppState, error) {
	var st AppState
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app, err := c.GetApplication(gctx, name)
		if err != nil {
			return fmt.Errorf("get application %s: %w", name, err)
		}
		st.App = app
		return nil
	})
	g.Go(func() error {
		st.Tree, st.TreeErr = c.ResourceTree(gctx, name)
		return nil
	})
	g.Go(func() error {
		st.Managed, st.ManagedErr = c.ManagedResources(gctx, name)
		return nil
	})

	if err := g.Wait(); err != nil {
		return AppState{}, err
	}
	return st, nil
}
