// Package config loads repository and remote settings from the
// environment: a struct of sane defaults overridden by a handful of env
// vars.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds the knobs CLI commands and the sync orchestrator need.
type Config struct {
	RepoRoot       string
	RemoteURL      string
	WorkerPoolSize int
	RequestTimeout time.Duration
	MaxRetries     int
}

// Load builds a Config from the environment, falling back to defaults for
// anything unset or unparsable.
func Load() (*Config, error) {
	cfg := &Config{
		RepoRoot:       ".",
		WorkerPoolSize: 8,
		RequestTimeout: 30 * time.Second,
		MaxRetries:     3,
	}

	if v, err := os.Getwd(); err == nil {
		cfg.RepoRoot = v
	}
	if v := os.Getenv("SHARD_REPO_ROOT"); v != "" {
		cfg.RepoRoot = v
	}
	if v := os.Getenv("SHARD_REMOTE_URL"); v != "" {
		cfg.RemoteURL = v
	}
	if v := os.Getenv("SHARD_WORKER_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WorkerPoolSize = n
		}
	}
	if v := os.Getenv("SHARD_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("SHARD_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	return cfg, nil
}

// ShardDir is the per-repository metadata directory, rooted at RepoRoot.
func (c *Config) ShardDir() string {
	return filepath.Join(c.RepoRoot, ".shard")
}
