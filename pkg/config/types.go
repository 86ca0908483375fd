package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the persistent parley configuration stored as config.toml
// in the .parley/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	Client      ClientConfig      `toml:"client"`
	EventStream EventStreamConfig `toml:"eventstream"`
}

// ServerConfig holds settings for "parley serve".
type ServerConfig struct {
	Listen       string   `toml:"listen,omitempty"`
	EventDelay   string   `toml:"event_delay,omitempty"`
	AllowOrigins []string `toml:"allow_origins,omitempty"`
}

// StorageConfig selects where the server records exchanges. When both are
// empty, exchanges are kept in memory.
type StorageConfig struct {
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// ClientConfig holds settings for CLI commands that talk to a running server
// (e.g. parley chat, parley login). Target is a full URL.
type ClientConfig struct {
	Target string `toml:"target,omitempty"`
}

// EventStreamConfig selects where recorded exchanges are announced.
type EventStreamConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"server.listen": {
		get: func(c *Config) string { return c.Server.Listen },
		set: func(c *Config, v string) error { c.Server.Listen = v; return nil },
	},
	"server.event_delay": {
		get: func(c *Config) string { return c.Server.EventDelay },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for server.event_delay: %w", err)
			}
			c.Server.EventDelay = v
			return nil
		},
	},
	"server.allow_origins": {
		get: func(c *Config) string { return joinList(c.Server.AllowOrigins) },
		set: func(c *Config, v string) error { c.Server.AllowOrigins = splitList(v); return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"client.target": {
		get: func(c *Config) string { return c.Client.Target },
		set: func(c *Config, v string) error { c.Client.Target = v; return nil },
	},
	"eventstream.provider": {
		get: func(c *Config) string { return c.EventStream.Provider },
		set: func(c *Config, v string) error {
			switch v {
			case EventStreamNone, EventStreamKafka:
			default:
				return fmt.Errorf("invalid value for eventstream.provider: %q (available: %s, %s)",
					v, EventStreamNone, EventStreamKafka)
			}
			c.EventStream.Provider = v
			return nil
		},
	},
	"eventstream.brokers": {
		get: func(c *Config) string { return joinList(c.EventStream.Brokers) },
		set: func(c *Config, v string) error { c.EventStream.Brokers = splitList(v); return nil },
	},
	"eventstream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
}

// splitList parses a comma separated value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func joinList(items []string) string {
	return strings.Join(items, ",")
}

// EventDelay parses Server.EventDelay, returning zero when it is unset or invalid.
func (c *Config) EventDelay() time.Duration {
	d, err := time.ParseDuration(c.Server.EventDelay)
	if err != nil {
		return 0
	}
	return d
}
