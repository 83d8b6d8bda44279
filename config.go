package beestore

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config configures a Reactor/Store pair, loaded from a TOML file. The
// wire limits (total_len <= 4096, argc <= 1024) are protocol invariants,
// not deployment knobs, so they stay package constants rather than config
// fields.
type Config struct {
	// ListenAddr is the host:port the reactor's listening socket binds to.
	ListenAddr string `toml:"listen_addr"`

	// LogLevel selects the minimum level the go-kit logger emits:
	// "debug", "info", "warn", or "error".
	LogLevel string `toml:"log_level"`
}

// DefaultConfig returns the configuration the server bootstrap falls back
// to when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr: "127.0.0.1:1234",
		LogLevel:   "info",
	}
}

// LoadConfig reads and validates a TOML configuration file at path.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("beestore: decoding config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the reactor cannot start with.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("beestore: listen_addr must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("beestore: unknown log_level %q", c.LogLevel)
	}
	return nil
}

// writeDefaultConfig writes the default configuration to path, useful for
// bootstrapping a fresh deployment's config file.
func writeDefaultConfig(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(DefaultConfig())
}
