// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers file and env on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"github.com/crypticsea/dungeond/internal/domain/model"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// KVBackend selects the key-value store: "redis" or "memory".
	KVBackend string `koanf:"kv_backend"`

	// RedisAddr is the redis host:port used when KVBackend is "redis".
	RedisAddr string `koanf:"redis_addr"`

	// RedisPassword is the optional redis auth password.
	RedisPassword string `koanf:"redis_password"`

	// RedisDB selects the redis logical database.
	RedisDB int `koanf:"redis_db"`

	// CommentsBaseURL is the base URL of the comment source API.
	CommentsBaseURL string `koanf:"comments_base_url"`

	// CommentsLimit caps how many comments one rotation pass fetches.
	CommentsLimit int `koanf:"comments_limit"`

	// DefaultLeaderboardLimit applies when GET /api/leaderboard omits ?limit.
	DefaultLeaderboardLimit int `koanf:"default_leaderboard_limit"`

	// MaxLeaderboardLimit caps GET /api/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// RetentionDays sets the expiry window on day-scoped keys.
	RetentionDays int `koanf:"retention_days"`

	// RotationHourUTC is the UTC hour the daily rotation fires at.
	RotationHourUTC int `koanf:"rotation_hour_utc"`

	// RotationEnabled toggles the background rotation scheduler.
	RotationEnabled bool `koanf:"rotation_enabled"`

	// DefaultMonster and DefaultModifier fill omitted submission fields.
	DefaultMonster  string `koanf:"default_monster"`
	DefaultModifier string `koanf:"default_modifier"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":9080",
		KVBackend:               "memory",
		RedisAddr:               "localhost:6379",
		RedisDB:                 0,
		CommentsBaseURL:         "",
		CommentsLimit:           100,
		DefaultLeaderboardLimit: 10,
		MaxLeaderboardLimit:     100,
		RetentionDays:           7,
		RotationHourUTC:         0,
		RotationEnabled:         true,
		DefaultMonster:          model.DefaultMonster,
		DefaultModifier:         model.DefaultModifier,
	}
}
