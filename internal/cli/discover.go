package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/azurescope/explorer/pkg/azure"
	"github.com/azurescope/explorer/pkg/export"
	"github.com/azurescope/explorer/pkg/inventory"
)

func newDiscoverCmd() *cobra.Command {
	var (
		subscription string
		doExport     bool
		snapshotDir  string
		azPath       string
	)

	discoverCmd := &cobra.Command{
		Use:   "discover",
		Short: "Scan a subscription and summarize its resources",
		Long: `Discover lists the resource groups and resources of one subscription
through the az CLI and prints a per-category summary. With --export the
snapshot is saved to the local store for reports, charts and search.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			azCLI := azure.NewCLI(azPath)
			if err := azCLI.CheckAccess(ctx); err != nil {
				return err
			}

			color.New(color.FgCyan).Println("Discovering resources...")

			discovery, err := azCLI.Discover(ctx, subscription)
			if discovery == nil {
				return err
			}
			if err != nil {
				color.New(color.FgYellow).Printf("Discovery completed with errors: %v\n", err)
			}

			snap := inventory.NewSnapshot(discovery.Subscription, discovery.ResourceGroups, discovery.Resources)
			printDiscoverySummary(snap)

			if doExport {
				dir := snapshotDir
				if dir == "" {
					dir = export.DefaultDir()
				}

				store, err := export.NewStore(dir)
				if err != nil {
					return err
				}

				entry, err := store.Save(snap)
				if err != nil {
					return err
				}

				color.New(color.FgGreen).Printf("Snapshot exported: %s (id %s)\n", entry.Path, entry.ID)
			}

			return nil
		},
	}

	discoverCmd.Flags().StringVarP(&subscription, "subscription", "s", "", "subscription id or name (default: the az default)")
	discoverCmd.Flags().BoolVar(&doExport, "export", false, "save the snapshot to the local store")
	discoverCmd.Flags().StringVar(&snapshotDir, "snapshot-dir", "", "snapshot store directory (default ~/.azurescope/snapshots)")
	discoverCmd.Flags().StringVar(&azPath, "az-path", "az", "path to the az binary")

	return discoverCmd
}

func printDiscoverySummary(snap *inventory.Snapshot) {
	name := snap.Metadata.SubscriptionName
	if name == "" {
		name = snap.Metadata.SubscriptionID
	}
	if name == "" {
		name = "current subscription"
	}

	color.New(color.Bold).Printf("\n%s\n", name)
	fmt.Printf("%d resources in %d resource groups\n\n", snap.Metadata.TotalResources, snap.Metadata.TotalResourceGroups)

	counts := snap.CategoryCounts()
	for _, category := range inventory.Categories() {
		n := counts[category]
		if n == 0 {
			continue
		}

		fmt.Printf("  %-14s %s\n", category, color.CyanString("%d", n))
	}

	fmt.Println()
}
