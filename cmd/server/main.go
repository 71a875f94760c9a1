package main

import (
	"log"
	"os"

	"github.com/azurescope/explorer/internal/server"
	"github.com/azurescope/explorer/pkg/config"
)

func main() {
	// Parse config
	cfg, err := config.Parse(os.Args)
	if err != nil {
		log.Fatalf("Failed to parse config: %v", err)
	}

	if err := server.Run(*cfg); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
