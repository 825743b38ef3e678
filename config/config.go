package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the node-level configuration. It is loaded once at startup
// and passed into each component; nothing reads it through a global.
type Config struct {
	Port         int    `mapstructure:"port"`
	ServedDir    string `mapstructure:"served_dir"`
	DownloadsDir string `mapstructure:"downloads_dir"`
	RegistryPath string `mapstructure:"registry_path"`
	ChunkSize    int    `mapstructure:"chunk_size"`
	MaxTransfers int    `mapstructure:"max_transfers"`
}

// Load reads config.yaml from the given path, falling back to defaults for
// anything unset. Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AutomaticEnv()

	v.SetDefault("port", 5000)
	v.SetDefault("served_dir", "uploads")
	v.SetDefault("downloads_dir", "downloads")
	v.SetDefault("registry_path", "./registry")
	v.SetDefault("chunk_size", 32*1024)
	v.SetDefault("max_transfers", 64)

	// A missing config file is fine, defaults apply.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 32 * 1024
	}
	if cfg.MaxTransfers <= 0 {
		cfg.MaxTransfers = 64
	}

	return &cfg, nil
}

// Addr returns the listen address for the transfer server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
