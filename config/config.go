package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	SupabaseURL       string `env:"SUPABASE_URL,required"      validate:"required,url"`
	SupabaseAnonKey   string `env:"SUPABASE_ANON_KEY,required" validate:"required"`
	SupabaseJWTSecret string `env:"SUPABASE_JWT_SECRET"        validate:"omitempty,min=32"`

	SessionStorage string `env:"SESSION_STORAGE" envDefault:"memory" validate:"oneof=memory redis postgres"`
	RedisAddr      string `env:"REDIS_ADDR"      validate:"required_if=SessionStorage redis"`
	RedisDB        int    `env:"REDIS_DB"        envDefault:"0" validate:"min=0,max=15"`
	DatabaseURL    string `env:"DATABASE_URL"    validate:"required_if=SessionStorage postgres"`

	ClientIdleTTL    time.Duration `env:"CLIENT_IDLE_TTL"     envDefault:"30m"         validate:"min=1m"`
	SweepSchedule    string        `env:"SWEEP_SCHEDULE"      envDefault:"@every 5m"   validate:"cron"`
	CookieSecure     bool          `env:"COOKIE_SECURE"       envDefault:"true"`
	SignInRatePerMin int           `env:"SIGNIN_RATE_PER_MIN" envDefault:"10"          validate:"min=1,max=1000"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	v := validator.New()
	if err := v.RegisterValidation("cron", validCronSpec); err != nil {
		return nil, fmt.Errorf("register cron validator: %w", err)
	}
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func validCronSpec(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}
