// Package config loads runtime settings from .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds every setting the server and CLI read at startup
type Config struct {
	Env                string
	DatabaseURL        string
	StoreDriver        string
	HTTPPort           string
	JWTSecret          string
	CORSAllowedOrigins []string
	JWTTTL             time.Duration
	RateLimitPerMinute int
	LogLevel           slog.Level
}

// LoadDotEnvs loads .env files in priority order. godotenv never overrides a variable
// that is already set, so earlier files win and the real environment beats all of them.
func LoadDotEnvs() {
	loadDotEnvs("")
}

func loadDotEnvs(rootPath string) {
	env := envName()

	// .env.<env>.local holds secrets and is never committed
	_ = godotenv.Load(rootPath + ".env." + env + ".local")
	_ = godotenv.Load(rootPath + ".env.local")
	_ = godotenv.Load(rootPath + ".env." + env)
	_ = godotenv.Load(rootPath + ".env")
}

func envName() string {
	if env := os.Getenv("MURMUR_ENV"); env != "" {
		return env
	}
	return "dev"
}

// Load reads .env files then builds a Config from the environment
func Load() (*Config, error) {
	LoadDotEnvs()
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env files
func FromEnv() (*Config, error) {
	cfg := &Config{
		Env:         envName(),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StoreDriver: getEnv("STORE_DRIVER", DriverPostgres),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
	}

	var err error
	if cfg.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "720h")); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.RateLimitPerMinute, err = strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "300")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	for _, origin := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no safe default
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want %s or %s)", c.StoreDriver, DriverPostgres, DriverMemory)
	}

	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 bytes")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.RateLimitPerMinute <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

// IsProduction reports whether MURMUR_ENV selects production behaviour
func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
