// Package config provides YAML configuration parsing for PulseSync.
//
// This package enables running PulseSync as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	server_url: ws://localhost:8000/ws
//	topics: [events, alerts]
//
//	reconnect_delay: 3s
//	inbox_capacity: 100
//	notification_ttl: 5s
//	ping_interval: 30s
//	search_debounce: 300ms
//
//	preferences_path: ${HOME}/.config/pulsesync/prefs.json
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// minReconnectDelay is the minimum allowed reconnection delay.
// This prevents accidental hammering of a server that keeps refusing us.
const minReconnectDelay = 100 * time.Millisecond

// Config is the root configuration structure for PulseSync.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// ServerURL is the websocket base URL of the push endpoint, e.g.
	// "ws://localhost:8000/ws". Topic names are appended as path
	// segments. Supports environment variable substitution:
	// ${VAR} or ${VAR:-default}
	ServerURL string `yaml:"server_url"`

	// Topics are the push channels to subscribe. Defaults to ["all"].
	Topics []string `yaml:"topics"`

	// ReconnectDelay is the fixed pause between a connection drop and
	// the next reconnection attempt. Accepts duration strings like
	// "3s", "500ms". Defaults to 3s.
	ReconnectDelay Duration `yaml:"reconnect_delay"`

	// InboxCapacity is the per-topic bounded inbox size. When the inbox
	// is full the oldest message is evicted. Defaults to 100.
	InboxCapacity int `yaml:"inbox_capacity"`

	// NotificationTTL is how long a transient notification stays in the
	// state tree before its scheduled removal fires. Defaults to 5s.
	NotificationTTL Duration `yaml:"notification_ttl"`

	// PingInterval is the keepalive period on connected channels.
	// Defaults to 30s.
	PingInterval Duration `yaml:"ping_interval"`

	// SearchDebounce is the quiet window applied to free-text filter
	// input before it is committed to the store. Defaults to 300ms.
	SearchDebounce Duration `yaml:"search_debounce"`

	// PreferencesPath is the JSON file UI preferences are mirrored to.
	// Supports environment variable substitution. Empty disables
	// persistence.
	PreferencesPath string `yaml:"preferences_path"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		// submatches[2] is ":-..." (non-empty if default syntax was used)
		// submatches[3] is the actual default value (may be empty for ${VAR:-})
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before parsing.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in ServerURL and PreferencesPath.
// Durations left unset keep the SDK defaults (3s reconnect, 5s
// notification TTL, 30s ping, 300ms debounce).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required")
	}
	expanded, err := expandEnvVars(c.ServerURL)
	if err != nil {
		return fmt.Errorf("server_url: %w", err)
	}
	c.ServerURL = expanded

	parsedURL, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server_url: %w", err)
	}
	if parsedURL.Scheme == "" {
		return fmt.Errorf("server_url must have a scheme (ws:// or wss://)")
	}
	if parsedURL.Scheme != "ws" && parsedURL.Scheme != "wss" {
		return fmt.Errorf("server_url scheme must be ws or wss, got %q", parsedURL.Scheme)
	}

	for i, topic := range c.Topics {
		if strings.TrimSpace(topic) == "" {
			return fmt.Errorf("topics[%d]: topic name must not be empty", i)
		}
	}

	if c.ReconnectDelay != 0 && c.ReconnectDelay.Duration() < minReconnectDelay {
		return fmt.Errorf("reconnect_delay must be at least %s, got %s",
			minReconnectDelay, c.ReconnectDelay.Duration())
	}

	if c.InboxCapacity < 0 {
		return fmt.Errorf("inbox_capacity cannot be negative, got %d", c.InboxCapacity)
	}

	if c.NotificationTTL != 0 && c.NotificationTTL.Duration() < 0 {
		return fmt.Errorf("notification_ttl cannot be negative, got %s", c.NotificationTTL.Duration())
	}

	if c.PingInterval != 0 && c.PingInterval.Duration() < time.Second {
		return fmt.Errorf("ping_interval must be at least 1s, got %s", c.PingInterval.Duration())
	}

	if c.SearchDebounce.Duration() < 0 {
		return fmt.Errorf("search_debounce cannot be negative, got %s", c.SearchDebounce.Duration())
	}

	if c.PreferencesPath != "" {
		expanded, err := expandEnvVars(c.PreferencesPath)
		if err != nil {
			return fmt.Errorf("preferences_path: %w", err)
		}
		c.PreferencesPath = expanded
	}

	return nil
}
