package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/crypticsea/dungeond/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			// Clear any existing environment variables
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.KVBackend, convey.ShouldEqual, "memory")
				convey.So(cfg.CommentsLimit, convey.ShouldEqual, 100)
				convey.So(cfg.DefaultLeaderboardLimit, convey.ShouldEqual, 10)
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
				convey.So(cfg.RetentionDays, convey.ShouldEqual, 7)
				convey.So(cfg.RotationEnabled, convey.ShouldBeTrue)
				convey.So(cfg.DefaultMonster, convey.ShouldEqual, "Goblin")
				convey.So(cfg.DefaultModifier, convey.ShouldEqual, "Normal")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			// Set environment variables
			_ = os.Setenv("DUNGEOND_ADDR", ":8080")
			_ = os.Setenv("DUNGEOND_KV_BACKEND", "redis")
			_ = os.Setenv("DUNGEOND_REDIS_ADDR", "redis:6379")
			_ = os.Setenv("DUNGEOND_ROTATION_HOUR_UTC", "6")
			_ = os.Setenv("DUNGEOND_DEFAULT_MONSTER", "Lich")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.KVBackend, convey.ShouldEqual, "redis")
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "redis:6379")
				convey.So(cfg.RotationHourUTC, convey.ShouldEqual, 6)
				convey.So(cfg.DefaultMonster, convey.ShouldEqual, "Lich")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
kv_backend: redis
redis_addr: "cache:6379"
comments_limit: 50
rotation_enabled: false
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("DUNGEOND_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.KVBackend, convey.ShouldEqual, "redis")
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "cache:6379")
				convey.So(cfg.CommentsLimit, convey.ShouldEqual, 50)
				convey.So(cfg.RotationEnabled, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
redis_addr: "cache:6379"
retention_days: 14
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("DUNGEOND_CONFIG", tmpFile)
			_ = os.Setenv("DUNGEOND_ADDR", ":8080") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")           // Overridden by env
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "cache:6379") // From file
				convey.So(cfg.RetentionDays, convey.ShouldEqual, 14)       // From file
			})
		})

		convey.Convey("When loading config with invalid values", func() {
			cases := map[string]string{
				"DUNGEOND_KV_BACKEND":        "etcd",
				"DUNGEOND_COMMENTS_LIMIT":    "0",
				"DUNGEOND_RETENTION_DAYS":    "-1",
				"DUNGEOND_ROTATION_HOUR_UTC": "24",
			}
			for envVar, value := range cases {
				clearConfigEnvVars()
				_ = os.Setenv(envVar, value)

				cfg, err := config.Load(ctx)

				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
				convey.So(cfg, convey.ShouldBeNil)
			}
			clearConfigEnvVars()
		})

		convey.Convey("When the config file is missing", func() {
			clearConfigEnvVars()
			_ = os.Setenv("DUNGEOND_CONFIG", "/nonexistent/dungeond.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"DUNGEOND_CONFIG",
		"DUNGEOND_ADDR",
		"DUNGEOND_KV_BACKEND",
		"DUNGEOND_REDIS_ADDR",
		"DUNGEOND_ROTATION_HOUR_UTC",
		"DUNGEOND_COMMENTS_LIMIT",
		"DUNGEOND_RETENTION_DAYS",
		"DUNGEOND_DEFAULT_MONSTER",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "dungeond-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
