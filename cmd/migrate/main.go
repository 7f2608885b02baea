package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/contactbook/contactbook-api/config"
	"github.com/contactbook/contactbook-api/pkg/db"
	"github.com/contactbook/contactbook-api/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: "contactbook-migrate",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting database migrations",
		zap.String("database", maskDatabaseURL(cfg.Database.URL)),
		zap.String("migrations", cfg.Database.MigrationsPath))

	err = db.RunMigrations(db.MigrateConfig{
		DatabaseURL:    cfg.Database.URL,
		MigrationsPath: cfg.Database.MigrationsPath,
		TLS:            db.TLS{CACertPath: cfg.Database.CACertPath, ServerName: cfg.Database.TLSServerName},
	})
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("Database migrations completed successfully")
}

// maskDatabaseURL hides the password in a database URL for logging
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
