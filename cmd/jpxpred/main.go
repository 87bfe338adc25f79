package main

import (
	"os"

	"github.com/kta-cosmo-fj/jpx-stock-pred/cmd/jpxpred/commands"
)

// main is the entry point for the jpxpred CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
