package main

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/phin3has/argodash/internal/argocd"
)

func newAppsCmd(o *rootOptions) *cobra.Command {
	var driftOnly bool
	cmd := &cobra.Command{
		Use:   "apps",
		Short: "List applications with their sync and health status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _ := o.client()
			apps, err := client.ListApplications(cmd.Context())
			if err != nil {
				return fmt.Errorf("list applications: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), appsTable(apps, driftOnly))
			return nil
		},
	}
	cmd.Flags().BoolVar(&driftOnly, "drift", false, "only show applications that are not Synced")
	return cmd
}

func appsTable(apps []argocd.Application, driftOnly bool) string {
	sorted := append([]argocd.Application(nil), apps...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("NAME", "PROJECT", "SYNC", "HEALTH", "REVISION", "DESTINATION")
	for _, a := range sorted {
		if driftOnly && a.Sync == "Synced" {
			continue
		}
		dest := a.Cluster
		if a.Namespace != "" {
			dest += " / " + a.Namespace
		}
		t.Row(a.Name, a.Project, dash(a.Sync), dash(a.Health), dash(a.Revision), dash(dest))
	}
	return t.String()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
