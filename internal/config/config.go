// Package config loads buffer-pool and hash-table construction options from
// a YAML file via viper. The core packages (bufferpool, aatree, exthash)
// never import viper themselves; this package is purely assembly glue for
// the cmd/kernelsh demo shell.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the construction options for the storage file, buffer
// pool, and hash table.
type Config struct {
	Storage struct {
		File string `mapstructure:"file"`
	} `mapstructure:"storage"`

	BufferPool struct {
		PoolSize   int    `mapstructure:"pool_size"`
		NextPageID uint64 `mapstructure:"next_page_id"`
	} `mapstructure:"buffer_pool"`

	Hash struct {
		BucketLimit int `mapstructure:"bucket_limit"`
	} `mapstructure:"hash"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	cfg := &Config{}
	cfg.Storage.File = "stoat.db"
	cfg.BufferPool.PoolSize = 16
	cfg.BufferPool.NextPageID = 0
	cfg.Hash.BucketLimit = 4
	return cfg
}

// Load reads a YAML config file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return cfg, nil
}
