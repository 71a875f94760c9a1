package cli

import (
	"github.com/spf13/cobra"

	"github.com/azurescope/explorer/internal/server"
	"github.com/azurescope/explorer/pkg/config"
)

func newServeCmd() *cobra.Command {
	var cfg config.Config

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the explorer HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}

			return server.Run(cfg)
		},
	}

	serveCmd.Flags().UintVarP(&cfg.Port, "port", "p", 8080, "port to listen on")
	serveCmd.Flags().StringVar(&cfg.ListenAddr, "listen-addr", "", "address to bind, empty for all interfaces")
	serveCmd.Flags().StringVar(&cfg.BaseURL, "base-url", "", "base URL the API is served under")
	serveCmd.Flags().BoolVar(&cfg.DevMode, "dev-mode", false, "run gin in debug mode")
	serveCmd.Flags().BoolVar(&cfg.EnableScanner, "enable-scanner", false, "rescan subscriptions in the background and emit change events")
	serveCmd.Flags().BoolVar(&cfg.EnableMetrics, "enable-metrics", true, "expose Prometheus metrics at /metrics")
	serveCmd.Flags().StringVar(&cfg.AzPath, "az-path", "az", "path to the az binary")
	serveCmd.Flags().StringVar(&cfg.SnapshotDir, "snapshot-dir", "", "snapshot store directory (default ~/.azurescope/snapshots)")

	return serveCmd
}
