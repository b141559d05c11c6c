// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration values.
type Config struct {
	Env  string `validate:"required,oneof=dev prod"`
	HTTP struct {
		Addr           string   `validate:"required"`
		TrustedProxies []string `validate:"dive,ip|cidr"`
	}
	DB struct {
		Driver         string        `validate:"required,oneof=postgres sqlite"`
		URL            string        `validate:"required_if=Driver postgres"`
		SQLitePath     string        `validate:"required_if=Driver sqlite"`
		ConnectTimeout time.Duration `validate:"gt=0"`
	}
	JWT struct {
		Secret   string        `validate:"required,min=32"`
		Issuer   string        `validate:"required"`
		Audience string        `validate:"required"`
		Expiry   time.Duration `validate:"gt=0"`
	}
	AuthRequired bool
	RateLimit    struct {
		Permits int           `validate:"gte=0"`
		Window  time.Duration `validate:"gt=0"`
	}
	Cache struct {
		RedisURL string
		TTL      time.Duration `validate:"gte=0"`
	}
	SentryDSN string
	Log       struct {
		ConsoleLevel string `validate:"required,oneof=debug info warn error"`
		FileLevel    string `validate:"required,oneof=debug info warn error"`
		File         string
	}
}

// Dev reports whether exception detail may be exposed in responses.
func (c Config) Dev() bool { return c.Env == "dev" }

var validate = validator.New()

// Load reads configuration from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds and validates Config using getenv as the variable source.
func FromEnv(getenv func(string) string) (Config, error) {
	p := parser{getenv: getenv}

	var c Config
	c.Env = p.str("ENV", "prod")
	c.HTTP.Addr = p.str("HTTP_ADDR", ":8080")
	c.HTTP.TrustedProxies = p.list("TRUSTED_PROXIES")
	c.DB.Driver = strings.ToLower(p.str("DB_DRIVER", DriverSQLite))
	c.DB.URL = p.str("DATABASE_URL", "")
	c.DB.SQLitePath = p.str("SQLITE_PATH", "data/users.db")
	c.DB.ConnectTimeout = p.duration("DB_CONNECT_TIMEOUT", 30*time.Second)
	c.JWT.Secret = p.str("JWT_SECRET", "")
	c.JWT.Issuer = p.str("JWT_ISSUER", "userapi")
	c.JWT.Audience = p.str("JWT_AUDIENCE", "userapi-clients")
	c.JWT.Expiry = time.Duration(p.int("JWT_EXPIRY_MINUTES", 60)) * time.Minute
	c.AuthRequired = p.bool("AUTH_REQUIRED", false)
	c.RateLimit.Permits = p.int("RATE_LIMIT_PERMITS", 100)
	c.RateLimit.Window = p.duration("RATE_LIMIT_WINDOW", time.Minute)
	c.Cache.RedisURL = p.str("REDIS_URL", "")
	c.Cache.TTL = p.duration("CACHE_TTL", 5*time.Minute)
	c.SentryDSN = p.str("SENTRY_DSN", "")
	c.Log.ConsoleLevel = strings.ToLower(p.str("LOG_CONSOLE_LEVEL", "info"))
	c.Log.FileLevel = strings.ToLower(p.str("LOG_FILE_LEVEL", "debug"))
	c.Log.File = p.str("LOG_FILE", "")

	if len(p.errs) > 0 {
		return Config{}, errors.Join(p.errs...)
	}
	if err := validate.Struct(c); err != nil {
		return Config{}, err
	}
	return c, nil
}

type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) str(k, def string) string {
	if v := strings.TrimSpace(p.getenv(k)); v != "" {
		return v
	}
	return def
}

func (p *parser) list(k string) []string {
	var out []string
	for _, v := range strings.Split(p.str(k, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (p *parser) int(k string, def int) int {
	v := p.str(k, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return n
}

func (p *parser) bool(k string, def bool) bool {
	v := p.str(k, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return b
}

func (p *parser) duration(k string, def time.Duration) time.Duration {
	v := p.str(k, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return d
}
