package server

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envOverrides are the MRRCAST_* environment variables read by LoadEnv.
type envOverrides struct {
	Addr      string        `env:"MRRCAST_ADDR"`
	RedisAddr string        `env:"MRRCAST_REDIS_ADDR"`
	CacheTTL  time.Duration `env:"MRRCAST_CACHE_TTL"`
}

// LoadEnv applies environment overrides on top of cfg.
func LoadEnv(cfg Config) (Config, error) {
	var raw envOverrides
	if err := env.Parse(&raw); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if raw.Addr != "" {
		cfg.Addr = raw.Addr
	}
	if raw.RedisAddr != "" {
		cfg.RedisAddr = raw.RedisAddr
	}
	if raw.CacheTTL > 0 {
		cfg.CacheTTL = raw.CacheTTL
	}
	return cfg, nil
}
