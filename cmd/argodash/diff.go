package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phin3has/argodash/internal/argocd"
	"github.com/phin3has/argodash/internal/correlate"
	"github.com/phin3has/argodash/internal/diff"
	"github.com/phin3has/argodash/internal/normalize"
)

type diffOptions struct {
	resource string
	patch    bool
	layout   string
	width    int
}

func newDiffCmd(o *rootOptions) *cobra.Command {
	d := &diffOptions{}
	cmd := &cobra.Command{
		Use:   "diff APP",
		Short: "Show the difference between live state and Git for an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _ := o.client()
			st, err := argocd.FetchAppState(cmd.Context(), client, args[0])
			if err != nil {
				return err
			}
			if st.ManagedErr != nil {
				return fmt.Errorf("managed resources: %w", st.ManagedErr)
			}
			layout := d.layout
			if layout == "" {
				layout = o.cfg.UI.DiffLayout
			}
			l, err := diff.ParseLayout(layout)
			if err != nil {
				return err
			}
			return writeDiff(cmd.OutOrStdout(), st, d, l, normalize.Options{StripRuntimeFields: o.cfg.Diff.StripRuntimeFields})
		},
	}
	f := cmd.Flags()
	f.StringVar(&d.resource, "resource", "", "only this resource, as kind/name or group/kind/name")
	f.BoolVar(&d.patch, "patch", false, "print a unified patch instead of a word diff")
	f.StringVar(&d.layout, "layout", "", "split or unified (default from config)")
	f.IntVar(&d.width, "width", 160, "output width for the split layout")
	return cmd
}

var errBadResource = errors.New("resource must be kind/name or group/kind/name")

// resourceFilter matches managed resources against a kind/name or
// group/kind/name argument. Kinds compare case-insensitively.
type resourceFilter struct {
	group    string
	kind     string
	name     string
	anyGroup bool
}

func parseResourceFilter(s string) (*resourceFilter, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "/")
	switch len(parts) {
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return nil, errBadResource
		}
		return &resourceFilter{kind: parts[0], name: parts[1], anyGroup: true}, nil
	case 3:
		// An empty group is the core API group.
		if parts[1] == "" || parts[2] == "" {
			return nil, errBadResource
		}
		return &resourceFilter{group: parts[0], kind: parts[1], name: parts[2]}, nil
	}
	return nil, errBadResource
}

func (f *resourceFilter) match(r argocd.ManagedResource) bool {
	if f == nil {
		return true
	}
	if !f.anyGroup && r.Group != f.group {
		return false
	}
	return strings.EqualFold(r.Kind, f.kind) && r.Name == f.name
}

func writeDiff(w io.Writer, st argocd.AppState, d *diffOptions, layout diff.Layout, opts normalize.Options) error {
	filter, err := parseResourceFilter(d.resource)
	if err != nil {
		return err
	}
	idx := correlate.NewIndex(st.App.Resources)

	matched := 0
	for _, r := range st.Managed {
		if !filter.match(r) {
			continue
		}
		matched++
		status, _ := idx.Lookup(correlate.KeyOfManaged(r))
		v := diff.Present(r, status, opts)
		b := correlate.BadgeFor(status)

		fmt.Fprintf(w, "=== %s [%s/%s]\n", v.Ref, b.Sync, dash(b.Health))
		if msg := v.Message(); msg != "" {
			fmt.Fprintln(w, msg)
			fmt.Fprintln(w)
			continue
		}
		if d.patch {
			p, err := diff.Patch(v.Live, v.Target, v.Ref.String())
			if err != nil {
				return fmt.Errorf("patch %s: %w", v.Ref, err)
			}
			fmt.Fprintln(w, p)
			continue
		}
		fmt.Fprintln(w, diff.Render(v.Result, layout, d.width, diff.RenderOptions{}))
		fmt.Fprintln(w)
	}
	if filter != nil && matched == 0 {
		return fmt.Errorf("no managed resource %s in %s", d.resource, st.App.Name)
	}
	return nil
}
