package config_test

import (
	"strings"
	"testing"

	"github.com/contactbook/contactbook-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			AppEnv:         "development",
			BaseURL:        "http://localhost:8080",
			AllowedOrigins: []string{"http://localhost:8080"},
		},
		Database: config.DatabaseConfig{URL: "postgres://localhost/contactbook", MaxConns: 10, MinConns: 2},
		Session:  config.SessionConfig{JWTSecret: "short-secret", TTLHours: 24},
		Password: config.PasswordConfig{MinLength: 8, BcryptCost: 12},
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name     string
		server   config.ServerConfig
		expected bool
	}{
		{"development environment", config.ServerConfig{AppEnv: "development"}, true},
		{"debug gin mode", config.ServerConfig{GinMode: "debug"}, true},
		{"production environment", config.ServerConfig{AppEnv: "production"}, false},
		{"release mode", config.ServerConfig{GinMode: "release", AppEnv: "production"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Server: tt.server}
			assert.Equal(t, tt.expected, cfg.IsDevelopment())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *config.Config)
		errorMsg string
	}{
		{
			name:   "valid development config",
			mutate: func(c *config.Config) {},
		},
		{
			name:     "missing database URL",
			mutate:   func(c *config.Config) { c.Database.URL = "" },
			errorMsg: "DATABASE_URL is required",
		},
		{
			name:     "pool bounds inverted",
			mutate:   func(c *config.Config) { c.Database.MaxConns = 1 },
			errorMsg: "DB_MAX_CONNS",
		},
		{
			name:     "missing JWT secret",
			mutate:   func(c *config.Config) { c.Session.JWTSecret = "" },
			errorMsg: "JWT_SECRET is required",
		},
		{
			name:     "short JWT secret in production",
			mutate:   func(c *config.Config) { c.Server.AppEnv = "production" },
			errorMsg: "at least 32 characters",
		},
		{
			name: "long JWT secret in production",
			mutate: func(c *config.Config) {
				c.Server.AppEnv = "production"
				c.Session.JWTSecret = strings.Repeat("s", 32)
			},
		},
		{
			name:     "bcrypt cost out of range",
			mutate:   func(c *config.Config) { c.Password.BcryptCost = 3 },
			errorMsg: "PASSWORD_BCRYPT_COST",
		},
		{
			name:     "no CORS origins",
			mutate:   func(c *config.Config) { c.Server.AllowedOrigins = nil },
			errorMsg: "ALLOWED_CORS_ORIGINS is required",
		},
		{
			name: "profiling without endpoint",
			mutate: func(c *config.Config) {
				c.Profiling.Enabled = true
			},
			errorMsg: "O11Y_PROFILING_ENDPOINT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestStorageConfig_Enabled(t *testing.T) {
	assert.False(t, config.StorageConfig{}.Enabled())
	assert.False(t, config.StorageConfig{AccessKeyID: "id", SecretAccessKey: "secret"}.Enabled())
	assert.True(t, config.StorageConfig{AccessKeyID: "id", SecretAccessKey: "secret", BucketName: "pictures"}.Enabled())
}

func TestLoad_WithDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://localhost/contactbook")
	t.Setenv("JWT_SECRET", strings.Repeat("s", 32))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, "production", cfg.Server.AppEnv)
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "file://migrations", cfg.Database.MigrationsPath)
	assert.Equal(t, 336, cfg.Session.TTLHours)
	assert.True(t, cfg.Session.CookieSecure)
	assert.Equal(t, 8, cfg.Password.MinLength)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "contactbook-api", cfg.Observability.ServiceName)
	assert.False(t, cfg.Storage.Enabled())
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://localhost/contactbook")
	t.Setenv("JWT_SECRET", "dev-secret")
	t.Setenv("PORT", "9000")
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("APP_ENV", "development")
	t.Setenv("ALLOWED_CORS_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("PASSWORD_MIN_LENGTH", "12")
	t.Setenv("STORAGE_ACCESS_KEY_ID", "key")
	t.Setenv("STORAGE_SECRET_ACCESS_KEY", "secret")
	t.Setenv("STORAGE_BUCKET_NAME", "pictures")
	t.Setenv("METRICS_AUTH_TOKEN", "metrics-token")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 12, cfg.Password.MinLength)
	assert.True(t, cfg.Storage.Enabled())
	assert.Equal(t, "metrics-token", cfg.Observability.MetricsAuthToken)
}

func TestLoad_ValidationFailure(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "dev-secret")

	cfg, err := config.Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
