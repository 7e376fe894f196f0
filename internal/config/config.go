package config

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	filePath := os.Getenv(envKey + "_FILE")
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	os.Setenv(envKey, strings.TrimSpace(string(data)))
}

// DefaultShareSecret signs share links when nothing else is configured. It is
// refused in production.
const DefaultShareSecret = "change-me-in-production"

var ErrDefaultShareSecret = errors.New("share.secret must be set in production")

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Share     ShareConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ShareConfig struct {
	Secret   string
	TTLHours int
}

type CacheConfig struct {
	TTLMinutes int // 0 disables the fretboard cache
}

type RateLimitConfig struct {
	FretboardPerMin   int
	CheatsheetPerHour int
}

type WorkerConfig struct {
	Concurrency int
}

func Load() (*Config, error) {
	readSecret("REDIS_PASSWORD")
	readSecret("SHARE_SECRET")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables: server.port <- SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.env", "development")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("share.secret", DefaultShareSecret)
	v.SetDefault("share.ttl_hours", 720)
	v.SetDefault("cache.ttl_minutes", 60)
	v.SetDefault("ratelimit.fretboard_per_min", 120)
	v.SetDefault("ratelimit.cheatsheet_per_hour", 10)
	v.SetDefault("worker.concurrency", 4)

	// Try to read config file (optional)
	_ = v.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("server.port"),
			Env:  v.GetString("server.env"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Share: ShareConfig{
			Secret:   v.GetString("share.secret"),
			TTLHours: v.GetInt("share.ttl_hours"),
		},
		Cache: CacheConfig{
			TTLMinutes: v.GetInt("cache.ttl_minutes"),
		},
		RateLimit: RateLimitConfig{
			FretboardPerMin:   v.GetInt("ratelimit.fretboard_per_min"),
			CheatsheetPerHour: v.GetInt("ratelimit.cheatsheet_per_hour"),
		},
		Worker: WorkerConfig{
			Concurrency: v.GetInt("worker.concurrency"),
		},
	}

	if cfg.Share.Secret == DefaultShareSecret {
		switch cfg.Server.Env {
		case "development", "test":
		case "production":
			return nil, ErrDefaultShareSecret
		default:
			log.Printf("Warning: using the default share secret in %s", cfg.Server.Env)
		}
	}

	return cfg, nil
}
