package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDevelopment)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.ServerPort)
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "fuego.sqlite", cfg.DatabaseURL)
	assert.Equal(t, "Fue$0-AP1", cfg.JWTSecret)
	assert.Zero(t, cfg.TokenTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedHosts)
	assert.False(t, cfg.TrustProxyHeaders)
	assert.True(t, cfg.Pretty())
}

func TestLoad_TestEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", EnvTest)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.DatabaseURL)
	assert.Equal(t, "FUEGO_TEST", cfg.JWTSecret)
	assert.Equal(t, "disabled", cfg.LogLevel)
	assert.False(t, cfg.Pretty())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvProduction)
	t.Setenv("DATABASE_URL", "postgres://fuego@localhost/fuego?sslmode=disable")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "24h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ORPHAN_SWEEP_SCHEDULE", "0 3 * * *")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedHosts)
	assert.Equal(t, "0 3 * * *", cfg.OrphanSweepSchedule)
	assert.True(t, cfg.TrustProxyHeaders)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown environment",
			env:     map[string]string{"APP_ENV": "staging"},
			wantErr: "unknown APP_ENV",
		},
		{
			name:    "bad port",
			env:     map[string]string{"PORT": "http"},
			wantErr: "invalid PORT",
		},
		{
			name:    "bad ttl",
			env:     map[string]string{"TOKEN_TTL": "forever"},
			wantErr: "invalid TOKEN_TTL",
		},
		{
			name:    "negative ttl",
			env:     map[string]string{"TOKEN_TTL": "-1h"},
			wantErr: "TOKEN_TTL must not be negative",
		},
		{
			name:    "bad proxy flag",
			env:     map[string]string{"TRUST_PROXY_HEADERS": "sometimes"},
			wantErr: "invalid TRUST_PROXY_HEADERS",
		},
		{
			name:    "unsupported driver",
			env:     map[string]string{"DATABASE_DRIVER": "mysql"},
			wantErr: "unsupported DATABASE_DRIVER",
		},
		{
			name:    "production without secret",
			env:     map[string]string{"APP_ENV": EnvProduction, "DATABASE_URL": "postgres://x"},
			wantErr: "JWT_SECRET must be set",
		},
		{
			name:    "production without database",
			env:     map[string]string{"APP_ENV": EnvProduction, "JWT_SECRET": "x"},
			wantErr: "DATABASE_URL must be set",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDevelopment)
			for k, v := range test.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			require.ErrorContains(t, err, test.wantErr)
			assert.Nil(t, cfg)
		})
	}
}
