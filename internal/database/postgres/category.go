package postgres

import (
	"context"
	"time"

	"github.com/contactbook/contactbook-api/internal/models"
	apperrors "github.com/contactbook/contactbook-api/pkg/errors"
	"github.com/contactbook/contactbook-api/pkg/metrics"
	"go.uber.org/zap"
)

// GetAllCategories fetches all categories ordered by name
func (c *Client) GetAllCategories(ctx context.Context) ([]*models.Category, error) {
	start := time.Now()
	operation := "getAllCategories"

	rows, err := c.pool.Query(ctx, "SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		observe(operation, metrics.MeasureDuration(start), err)
		return nil, apperrors.InternalError("failed to query categories", err)
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name); err != nil {
			observe(operation, metrics.MeasureDuration(start), err)
			return nil, apperrors.InternalError("failed to scan category row", err)
		}
		categories = append(categories, &cat)
	}

	if err := rows.Err(); err != nil {
		observe(operation, metrics.MeasureDuration(start), err)
		return nil, apperrors.InternalError("error iterating category rows", err)
	}

	observe(operation, metrics.MeasureDuration(start), nil, zap.Int("count", len(categories)))
	return categories, nil
}
