package config

import (
	"github.com/jpalmerr/pulsesync"
)

// BuildOptions converts parsed configuration into SDK client options.
//
// Zero-valued fields are skipped so the SDK defaults apply. Pass the
// result to [pulsesync.New] together with [Config.ServerURL].
func BuildOptions(cfg *Config) []pulsesync.Option {
	var opts []pulsesync.Option

	if len(cfg.Topics) > 0 {
		opts = append(opts, pulsesync.WithTopics(cfg.Topics...))
	}

	if cfg.ReconnectDelay != 0 {
		opts = append(opts, pulsesync.WithReconnectDelay(cfg.ReconnectDelay.Duration()))
	}

	if cfg.InboxCapacity > 0 {
		opts = append(opts, pulsesync.WithInboxCapacity(cfg.InboxCapacity))
	}

	if cfg.NotificationTTL != 0 {
		opts = append(opts, pulsesync.WithNotificationTTL(cfg.NotificationTTL.Duration()))
	}

	if cfg.PingInterval != 0 {
		opts = append(opts, pulsesync.WithPingInterval(cfg.PingInterval.Duration()))
	}

	if cfg.SearchDebounce != 0 {
		opts = append(opts, pulsesync.WithSearchDebounce(cfg.SearchDebounce.Duration()))
	}

	if cfg.PreferencesPath != "" {
		opts = append(opts, pulsesync.WithPreferences(cfg.PreferencesPath))
	}

	return opts
}

// BuildClient is a convenience wrapper that builds a ready-to-start
// client straight from a parsed configuration.
func BuildClient(cfg *Config) (*pulsesync.Client, error) {
	return pulsesync.New(cfg.ServerURL, BuildOptions(cfg)...)
}
