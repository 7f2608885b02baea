package postgres

import (
	"context"

	"github.com/contactbook/contactbook-api/pkg/logger"
	"github.com/contactbook/contactbook-api/pkg/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Client runs the application queries against a pgx connection pool with observability
type Client struct {
	pool *pgxpool.Pool
}

// NewClient wraps an already connected pool
func NewClient(pool *pgxpool.Pool) *Client {
	return &Client{pool: pool}
}

// Ping checks if the database connection is alive
func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// Stats returns connection pool statistics
func (c *Client) Stats() *pgxpool.Stat {
	return c.pool.Stat()
}

// recordMetrics records database operation metrics
func recordMetrics(operation, status string, duration float64) {
	metrics.DBRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.DBRequestTotal.WithLabelValues(operation, status).Inc()
}

// observe records metrics and logs the outcome of a query
func observe(operation string, duration float64, err error, fields ...zap.Field) {
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, append(fields, zap.Error(err))...)
		return
	}
	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, fields...)
}
