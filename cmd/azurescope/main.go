package main

import (
	"os"

	"github.com/azurescope/explorer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
