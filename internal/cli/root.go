// Package cli implements the azurescope command line interface.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is reported by --version.
const Version = "1.0.0"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "azurescope",
	Short: "Explore Azure resources from the terminal",
	Long: `Azurescope discovers the resources in an Azure subscription through
the az CLI, snapshots them locally and turns the snapshot into reports,
charts and a browsable dashboard server.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	rootCmd.AddCommand(newDiscoverCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newChartsCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd.Execute()
}
