package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if DUNGEOND_CONFIG is set
//  3. env (prefix DUNGEOND_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("DUNGEOND_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: DUNGEOND_ADDR, DUNGEOND_REDIS_ADDR, ...
	// Map env keys like DUNGEOND_REDIS_ADDR -> redis_addr (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("DUNGEOND_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "dungeond_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.KVBackend {
	case "redis", "memory":
	default:
		return fmt.Errorf("%w: kv_backend must be redis or memory, got %q", ErrInvalidConfig, c.KVBackend)
	}
	if c.KVBackend == "redis" && c.RedisAddr == "" {
		return fmt.Errorf("%w: redis_addr must not be empty", ErrInvalidConfig)
	}
	if c.CommentsLimit < 1 {
		return fmt.Errorf("%w: comments_limit must be positive", ErrInvalidConfig)
	}
	if c.DefaultLeaderboardLimit < 1 || c.MaxLeaderboardLimit < c.DefaultLeaderboardLimit {
		return fmt.Errorf("%w: leaderboard limits must satisfy 1 <= default <= max", ErrInvalidConfig)
	}
	if c.RetentionDays < 1 {
		return fmt.Errorf("%w: retention_days must be positive", ErrInvalidConfig)
	}
	if c.RotationHourUTC < 0 || c.RotationHourUTC > 23 {
		return fmt.Errorf("%w: rotation_hour_utc must be in [0, 23]", ErrInvalidConfig)
	}
	return nil
}
