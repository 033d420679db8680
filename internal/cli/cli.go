// Package cli provides the command-line interface for CortexHedge
package cli

import (
	"os"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// Run starts the CLI application
func Run() {
	rootCmd := NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
