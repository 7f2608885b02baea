package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config is the whole runtime configuration, read once at startup
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Storage       StorageConfig
	Session       SessionConfig
	Password      PasswordConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
	Cache         CacheConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int32
	MinConns       int32
	MigrationsPath string
	CACertPath     string
	TLSServerName  string
}

// StorageConfig describes the S3-compatible bucket that holds contact pictures
type StorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
	PublicBaseURL   string
}

// Enabled reports whether picture uploads can be served
func (s StorageConfig) Enabled() bool {
	return s.AccessKeyID != "" && s.SecretAccessKey != "" && s.BucketName != ""
}

type SessionConfig struct {
	JWTSecret    string
	JWTIssuer    string
	TTLHours     int
	CookieDomain string
	CookieSecure bool
}

type PasswordConfig struct {
	MinLength  int
	BcryptCost int
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
	MetricsAuthToken  string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

type CacheConfig struct {
	CategoryTTLSeconds int // Category cache TTL in seconds
}

// defaults apply when neither the environment nor .env sets a key
var defaults = map[string]any{
	"PORT":                 "8080",
	"GIN_MODE":             "release",
	"APP_ENV":              "production",
	"BASE_URL":             "http://localhost:8080",
	"ALLOWED_CORS_ORIGINS": "http://localhost:8080",

	"DB_MAX_CONNS":    10,
	"DB_MIN_CONNS":    2,
	"MIGRATIONS_PATH": "file://migrations",

	"STORAGE_REGION": "us-east-1",

	"JWT_ISSUER":        "contactbook-api",
	"SESSION_TTL_HOURS": 336, // two weeks
	"COOKIE_DOMAIN":     "",
	"COOKIE_SECURE":     true,

	"PASSWORD_MIN_LENGTH":  8,
	"PASSWORD_BCRYPT_COST": 12,

	"LOG_LEVEL": "info",
	"LOG_DIR":   "/app/logs",

	"O11Y_EXPORTER_ENDPOINT":                 "",
	"O11Y_SERVICE_NAME":                      "contactbook-api",
	"O11Y_SERVICE_NAMESPACE":                 "contactbook",
	"O11Y_SERVICE_VERSION":                   "1.0.0",
	"O11Y_PROFILING_ENABLED":                 false,
	"O11Y_PROFILING_APP_NAME":                "contactbook-api",
	"O11Y_PROFILING_SAMPLE_TYPES":            "cpu,alloc_space,alloc_objects,goroutines",
	"O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS": 15,

	"CATEGORY_CACHE_TTL": 3600,
}

// Load reads configuration from the environment, falling back to a .env file
// in the working directory or its parent.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // a missing .env is fine

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			URL:            v.GetString("DATABASE_URL"),
			MaxConns:       v.GetInt32("DB_MAX_CONNS"),
			MinConns:       v.GetInt32("DB_MIN_CONNS"),
			MigrationsPath: v.GetString("MIGRATIONS_PATH"),
			CACertPath:     v.GetString("DATABASE_CA_CERT"),
			TLSServerName:  v.GetString("DATABASE_TLS_SERVER_NAME"),
		},
		Storage: StorageConfig{
			AccessKeyID:     v.GetString("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("STORAGE_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("STORAGE_BUCKET_NAME"),
			Endpoint:        v.GetString("STORAGE_ENDPOINT"),
			Region:          v.GetString("STORAGE_REGION"),
			PublicBaseURL:   v.GetString("STORAGE_PUBLIC_BASE_URL"),
		},
		Session: SessionConfig{
			JWTSecret:    v.GetString("JWT_SECRET"),
			JWTIssuer:    v.GetString("JWT_ISSUER"),
			TTLHours:     v.GetInt("SESSION_TTL_HOURS"),
			CookieDomain: v.GetString("COOKIE_DOMAIN"),
			CookieSecure: v.GetBool("COOKIE_SECURE"),
		},
		Password: PasswordConfig{
			MinLength:  v.GetInt("PASSWORD_MIN_LENGTH"),
			BcryptCost: v.GetInt("PASSWORD_BCRYPT_COST"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
			MetricsAuthToken:  v.GetString("METRICS_AUTH_TOKEN"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
		Cache: CacheConfig{
			CategoryTTLSeconds: v.GetInt("CATEGORY_CACHE_TTL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// splitList parses a comma-separated value, dropping blanks
func splitList(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Validate returns the first broken rule
func (c *Config) Validate() error {
	rules := []struct {
		broken bool
		msg    string
	}{
		{c.Database.URL == "", "DATABASE_URL is required"},
		{c.Database.MaxConns < c.Database.MinConns, "DB_MAX_CONNS must not be lower than DB_MIN_CONNS"},
		{c.Session.JWTSecret == "", "JWT_SECRET is required"},
		{c.IsProduction() && len(c.Session.JWTSecret) < 32, "JWT_SECRET must be at least 32 characters in production"},
		{c.Session.TTLHours <= 0, "SESSION_TTL_HOURS must be positive"},
		{c.Password.MinLength < 1, "PASSWORD_MIN_LENGTH must be positive"},
		{c.Password.BcryptCost < 4 || c.Password.BcryptCost > 31, "PASSWORD_BCRYPT_COST must be between 4 and 31"},
		{c.Server.Port == "", "PORT is required"},
		{c.Server.BaseURL == "", "BASE_URL is required"},
		{len(c.Server.AllowedOrigins) == 0, "ALLOWED_CORS_ORIGINS is required"},
		{c.Profiling.Enabled && c.Profiling.Endpoint == "", "O11Y_PROFILING_ENDPOINT is required when profiling is enabled"},
	}

	for _, r := range rules {
		if r.broken {
			return errors.New(r.msg)
		}
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}
