package store

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	BackendBolt  = "bolt"
	BackendRedis = "redis"
)

// Config selects and locates the persistence backend.
type Config struct {
	Backend       string `mapstructure:"backend"`
	Path          string `mapstructure:"path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisPrefix   string `mapstructure:"redis_prefix"`
}

// Open returns the configured backend.
func Open(cfg Config) (KV, error) {
	switch cfg.Backend {
	case "", BackendBolt:
		if cfg.Path == "" {
			return nil, fmt.Errorf("store path is required for the %s backend", BackendBolt)
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0700); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		return NewBoltKV(cfg.Path)
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis_addr is required for the %s backend", BackendRedis)
		}
		return NewRedisKV(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisPrefix), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
