// Package config handles loading and managing chatvault configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the chatvault configuration.
type Config struct {
	Data   DataConfig   `toml:"data"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`

	// Computed paths (not from config file)
	HomeDir string `toml:"-"`
}

// DataConfig holds data storage configuration.
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// StoreConfig holds record-store tuning.
type StoreConfig struct {
	CacheCapacity int `toml:"cache_capacity"` // materialized datasets kept in memory
}

// ServerConfig holds HTTP API server configuration.
type ServerConfig struct {
	APIPort        int    `toml:"api_port"`         // HTTP server port (default: 8080)
	APIKey         string `toml:"api_key"`          // API authentication key
	BindAddr       string `toml:"bind_addr"`        // bind address (default: 127.0.0.1)
	MaxUploadBytes int64  `toml:"max_upload_bytes"` // raw markup size cap (default: 25 MiB)
}

// DefaultMaxUploadBytes caps raw export uploads at 25 MiB.
const DefaultMaxUploadBytes = 25 << 20

// DefaultHome returns the default chatvault home directory.
// Respects the CHATVAULT_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv("CHATVAULT_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chatvault"
	}
	return filepath.Join(home, ".chatvault")
}

// Load reads the configuration from the specified file.
// If path is empty, uses the default location (~/.chatvault/config.toml).
// A missing config file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	homeDir := DefaultHome()

	if path == "" {
		path = filepath.Join(homeDir, "config.toml")
	}

	cfg := &Config{
		HomeDir: homeDir,
		Data: DataConfig{
			DataDir: homeDir,
		},
		Store: StoreConfig{
			CacheCapacity: 3,
		},
		Server: ServerConfig{
			APIPort:        8080,
			BindAddr:       "127.0.0.1",
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Data.DataDir = expandPath(cfg.Data.DataDir)

	return cfg, nil
}

// EnsureHomeDir creates the data directory if it does not exist.
func (c *Config) EnsureHomeDir() error {
	return os.MkdirAll(c.Data.DataDir, 0755)
}

// DatabasePath returns the path to the SQLite database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.DataDir, "chatvault.db")
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
