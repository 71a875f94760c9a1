package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/azurescope/explorer/pkg/charts"
	"github.com/azurescope/explorer/pkg/inventory"
)

func newChartsCmd() *cobra.Command {
	var (
		snapshotRef string
		snapshotDir string
		outDir      string
	)

	chartsCmd := &cobra.Command{
		Use:   "charts",
		Short: "Write category and resource group charts as PNG files",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(snapshotRef, snapshotDir)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}

			renderers := []struct {
				name   string
				render func(*inventory.Snapshot, io.Writer) error
			}{
				{"categories.png", charts.CategoryPie},
				{"groups.png", charts.GroupBars},
			}

			for _, r := range renderers {
				path := filepath.Join(outDir, r.name)

				if err := writeChart(path, snap, r.render); err != nil {
					if errors.Is(err, charts.ErrNoData) {
						color.New(color.FgYellow).Printf("Skipped %s: nothing to plot\n", r.name)
						continue
					}

					return fmt.Errorf("rendering %s: %w", r.name, err)
				}

				color.New(color.FgGreen).Printf("Wrote %s\n", path)
			}

			return nil
		},
	}

	chartsCmd.Flags().StringVar(&snapshotRef, "snapshot", "", "snapshot file path or export id (default: newest stored export)")
	chartsCmd.Flags().StringVar(&snapshotDir, "snapshot-dir", "", "snapshot store directory (default ~/.azurescope/snapshots)")
	chartsCmd.Flags().StringVar(&outDir, "out-dir", ".", "directory to write PNG files into")

	return chartsCmd
}

// writeChart renders one chart into path. A failed render removes the
// file so no truncated PNG is left behind.
func writeChart(path string, snap *inventory.Snapshot, render func(*inventory.Snapshot, io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := render(snap, f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}

	return f.Close()
}
