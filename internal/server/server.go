// Package server wires the explorer's stores, scanner and HTTP routes
// into a runnable service shared by the server binary and the CLI.
package server

import (
	"fmt"

	scanconfig "github.com/azurescope/explorer/config"
	"github.com/azurescope/explorer/internal/handlers"
	"github.com/azurescope/explorer/internal/routes"
	"github.com/azurescope/explorer/pkg/azure"
	"github.com/azurescope/explorer/pkg/client"
	"github.com/azurescope/explorer/pkg/config"
	"github.com/azurescope/explorer/pkg/dispatchers"
	"github.com/azurescope/explorer/pkg/export"
	"github.com/azurescope/explorer/pkg/logger"
	"github.com/azurescope/explorer/pkg/scanner"
)

// Run starts the explorer server and blocks until it exits.
func Run(cfg config.Config) error {
	cli := azure.NewCLI(cfg.AzPath)

	// Initialize subscription store from the az profile
	store := azure.NewSubscriptionStore()

	profilePath := azure.DefaultProfilePath()
	if profilePath != "" {
		logger.Log(logger.LevelInfo, map[string]string{"profile": profilePath}, nil, "Loading az profile")

		if err := azure.LoadAndStoreProfile(store, profilePath); err != nil {
			logger.Log(logger.LevelError, nil, err, "loading az profile")
		}

		// Start watching the profile for login/logout changes
		go azure.WatchProfile(store, profilePath)
	}

	snapshotDir := cfg.SnapshotDir
	if snapshotDir == "" {
		snapshotDir = export.DefaultDir()
	}

	snapshots, err := export.NewStore(snapshotDir)
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}

	if cfg.EnableScanner {
		startScanner(cli, store)
	}

	// Reap idle az shell sessions
	handlers.StartShellCleanupTask()

	router := routes.SetupRouter(cfg, cli, store, snapshots)

	// Determine address to listen on
	var serverAddr string
	if cfg.ListenAddr != "" {
		serverAddr = fmt.Sprintf("%s:%d", cfg.ListenAddr, cfg.Port)
	} else {
		serverAddr = fmt.Sprintf(":%d", cfg.Port)
	}

	logger.Log(logger.LevelInfo, map[string]string{
		"address":  serverAddr,
		"scanner":  fmt.Sprintf("%t", cfg.EnableScanner),
		"snapshot": snapshotDir,
	}, nil, "Server starting")

	return router.Run(serverAddr)
}

func startScanner(cli *azure.CLI, store azure.SubscriptionStore) {
	scanConf, err := scanconfig.New()
	if err != nil {
		logger.Log(logger.LevelError, nil, err, "loading scanner config")
		return
	}

	eventHandler, err := client.ParseEventHandler(scanConf)
	if err != nil {
		logger.Log(logger.LevelError, nil, err, "configuring scanner event handler")
		return
	}

	// WebSocket clients see events alongside the configured channel.
	fanout := dispatchers.NewMulti(eventHandler, handlers.EventBroadcaster())

	go scanner.Start(scanConf, fanout, store, cli, handlers.UpdateSnapshot)
}
