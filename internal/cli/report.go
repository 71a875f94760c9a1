package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/azurescope/explorer/pkg/report"
)

func newReportCmd() *cobra.Command {
	var (
		snapshotRef string
		snapshotDir string
		outputPath  string
	)

	reportCmd := &cobra.Command{
		Use:   "report {architecture|topology|security|costs}",
		Short: "Render a text report from a stored snapshot",
		Long: `Report renders one of the text reports over a snapshot. Without
--snapshot the newest stored export is used. Output adapts to the
terminal width and can be redirected to a file with --output.`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"architecture", "topology", "security", "costs"},
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(snapshotRef, snapshotDir)
			if err != nil {
				return err
			}

			width := report.TerminalWidth()

			var text string
			switch args[0] {
			case "architecture":
				text = report.Architecture(snap, width)
			case "topology":
				text = report.Topology(snap, width)
			case "security":
				text = report.Security(snap, width)
			case "costs":
				text = report.CostGuide(snap)
			}

			if outputPath != "" {
				if err := os.WriteFile(outputPath, []byte(text), 0o644); err != nil {
					return fmt.Errorf("writing report: %w", err)
				}

				color.New(color.FgGreen).Printf("Report written to %s\n", outputPath)
				return nil
			}

			fmt.Print(text)
			return nil
		},
	}

	reportCmd.Flags().StringVar(&snapshotRef, "snapshot", "", "snapshot file path or export id (default: newest stored export)")
	reportCmd.Flags().StringVar(&snapshotDir, "snapshot-dir", "", "snapshot store directory (default ~/.azurescope/snapshots)")
	reportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the report to a file instead of stdout")

	return reportCmd
}
