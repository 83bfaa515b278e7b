package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported environments.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the application configuration.
type Config struct {
	Env        string
	ServerPort int
	LogLevel   string

	DatabaseDriver   string
	DatabaseURL      string
	DBMaxOpenConns   int
	JWTSecret        string
	TokenTTL         time.Duration // zero means issued tokens never expire
	CORSAllowedHosts []string

	RedisAddr string
	CacheTTL  time.Duration

	OrphanSweepSchedule string // cron spec, empty disables the sweeper

	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Only enable behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

// defaults per environment.
type envDefaults struct {
	driver   string
	database string
	secret   string
	logLevel string
}

var environments = map[string]envDefaults{
	EnvDevelopment: {driver: DriverSQLite, database: "fuego.sqlite", secret: "Fue$0-AP1", logLevel: "debug"},
	EnvTest:        {driver: DriverSQLite, database: ":memory:", secret: "FUEGO_TEST", logLevel: "disabled"},
	EnvProduction:  {driver: DriverPostgres, database: "", secret: "", logLevel: "info"},
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	env := getEnv("APP_ENV", EnvDevelopment)
	defaults, ok := environments[env]
	if !ok {
		return nil, fmt.Errorf("unknown APP_ENV %q", env)
	}

	port, err := strconv.Atoi(getEnv("PORT", "3000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	maxOpen, err := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}
	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}
	trustProxy, err := strconv.ParseBool(getEnv("TRUST_PROXY_HEADERS", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRUST_PROXY_HEADERS: %w", err)
	}

	cfg := &Config{
		Env:                 env,
		ServerPort:          port,
		LogLevel:            getEnv("LOG_LEVEL", defaults.logLevel),
		DatabaseDriver:      getEnv("DATABASE_DRIVER", defaults.driver),
		DatabaseURL:         getEnv("DATABASE_URL", defaults.database),
		DBMaxOpenConns:      maxOpen,
		JWTSecret:           getEnv("JWT_SECRET", defaults.secret),
		TokenTTL:            tokenTTL,
		CORSAllowedHosts:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		CacheTTL:            cacheTTL,
		OrphanSweepSchedule: getEnv("ORPHAN_SWEEP_SCHEDULE", ""),
		RateLimitRPS:        rps,
		RateLimitBurst:      burst,
		TrustProxyHeaders:   trustProxy,
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set in %s", c.Env)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set in %s", c.Env)
	}
	if c.TokenTTL < 0 {
		return fmt.Errorf("TOKEN_TTL must not be negative")
	}
	return nil
}

// Pretty reports whether logs should be rendered for humans.
func (c *Config) Pretty() bool {
	return c.Env == EnvDevelopment
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
