// Package main is the entry point for the pulsesync CLI.
//
// PulseSync can be used either as a library (SDK) or through this
// standalone binary with YAML configuration.
//
// Usage:
//
//	pulsesync tail -c config.yaml     # Stream live messages to the terminal
//	pulsesync validate -c config.yaml # Validate configuration
//	pulsesync version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "pulsesync",
	Short: "Real-time sync client for monitoring dashboards",
	Long: `PulseSync keeps a client-side state tree synchronized with a
monitoring backend over websocket push channels.

It subscribes to the configured topics, reconnects automatically when
the connection drops, routes alerts into transient notifications, and
mirrors UI preferences to disk.

Quick start:
  1. Create a config file (pulsesync.yaml)
  2. Run: pulsesync tail -c pulsesync.yaml

Example config:
  server_url: ws://localhost:8000/ws
  topics: [events, alerts]
  reconnect_delay: 3s`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this pulsesync binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pulsesync %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
