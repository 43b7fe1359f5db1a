package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/pulsesync/config"
)

// validateCmd validates a config file without connecting anywhere.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a PulseSync configuration file without connecting.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  pulsesync validate -c config.yaml
  pulsesync validate --config /etc/pulsesync/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	topics := cfg.Topics
	if len(topics) == 0 {
		topics = []string{"all"}
	}

	prefs := cfg.PreferencesPath
	if prefs == "" {
		prefs = "(disabled)"
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Server:      %s\n", cfg.ServerURL)
	fmt.Printf("  Topics:      %s\n", strings.Join(topics, ", "))
	fmt.Printf("  Preferences: %s\n", prefs)

	return nil
}
