package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/contactbook/contactbook-api/internal/models"
	apperrors "github.com/contactbook/contactbook-api/pkg/errors"
	"github.com/contactbook/contactbook-api/pkg/metrics"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const contactSelect = `
	SELECT
		c.id, c.first_name, c.last_name, c.phone, c.email, c.description,
		c.category_id, COALESCE(cat.name, ''), c.picture_key, c.picture_url,
		c.show, c.owner_id, c.created_at, c.updated_at
	FROM contacts c
	LEFT JOIN categories cat ON cat.id = c.category_id
`

// contactSearchFilter matches the search term against names, phone and email.
// An empty term matches everything.
const contactSearchFilter = `
	c.owner_id = $1 AND c.show
	AND ($2 = '' OR
		c.first_name ILIKE '%' || $2 || '%' OR
		c.last_name ILIKE '%' || $2 || '%' OR
		c.phone ILIKE '%' || $2 || '%' OR
		c.email ILIKE '%' || $2 || '%')
`

func scanContact(row pgx.Row) (*models.Contact, error) {
	var ct models.Contact
	err := row.Scan(
		&ct.ID, &ct.FirstName, &ct.LastName, &ct.Phone, &ct.Email, &ct.Description,
		&ct.CategoryID, &ct.Category, &ct.PictureKey, &ct.PictureURL,
		&ct.Show, &ct.OwnerID, &ct.CreatedAt, &ct.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

// escapeLike neutralizes LIKE wildcards in user supplied search terms
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

// ListContacts returns one page of the owner's visible contacts, newest first, and the total match count
func (c *Client) ListContacts(ctx context.Context, params models.ContactListParams) ([]*models.Contact, int, error) {
	start := time.Now()
	operation := "listContacts"
	search := escapeLike(strings.TrimSpace(params.Search))

	var total int
	err := c.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM contacts c WHERE "+contactSearchFilter,
		params.OwnerID, search).Scan(&total)
	if err != nil {
		observe(operation, metrics.MeasureDuration(start), err)
		return nil, 0, apperrors.InternalError("failed to count contacts", err)
	}

	rows, err := c.pool.Query(ctx,
		contactSelect+" WHERE "+contactSearchFilter+" ORDER BY c.id DESC LIMIT $3 OFFSET $4",
		params.OwnerID, search, models.ContactsPerPage, params.Offset())
	if err != nil {
		observe(operation, metrics.MeasureDuration(start), err)
		return nil, 0, apperrors.InternalError("failed to query contacts", err)
	}
	defer rows.Close()

	contacts := make([]*models.Contact, 0, models.ContactsPerPage)
	for rows.Next() {
		ct, scanErr := scanContact(rows)
		if scanErr != nil {
			observe(operation, metrics.MeasureDuration(start), scanErr)
			return nil, 0, apperrors.InternalError("failed to scan contact row", scanErr)
		}
		contacts = append(contacts, ct)
	}

	if err := rows.Err(); err != nil {
		observe(operation, metrics.MeasureDuration(start), err)
		return nil, 0, apperrors.InternalError("error iterating contact rows", err)
	}

	observe(operation, metrics.MeasureDuration(start), nil,
		zap.Int64("owner_id", params.OwnerID), zap.Int("count", len(contacts)), zap.Int("total", total))
	return contacts, total, nil
}

// GetContact fetches a visible contact that belongs to owner
func (c *Client) GetContact(ctx context.Context, id, ownerID int64) (*models.Contact, error) {
	start := time.Now()
	operation := "getContact"

	ct, err := scanContact(c.pool.QueryRow(ctx,
		contactSelect+" WHERE c.id = $1 AND c.owner_id = $2 AND c.show", id, ownerID))
	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("contact")
	}
	if err != nil {
		observe(operation, duration, err, zap.Int64("contact_id", id))
		return nil, apperrors.InternalError("failed to query contact", err)
	}

	recordMetrics(operation, "success", duration)
	return ct, nil
}

// CreateContact inserts a contact and returns its stored form
func (c *Client) CreateContact(ctx context.Context, ct *models.Contact) (*models.Contact, error) {
	start := time.Now()
	operation := "createContact"

	var id int64
	err := c.pool.QueryRow(ctx, `
		INSERT INTO contacts
			(first_name, last_name, phone, email, description, category_id,
			 picture_key, picture_url, show, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9)
		RETURNING id`,
		ct.FirstName, ct.LastName, ct.Phone, ct.Email, ct.Description, ct.CategoryID,
		ct.PictureKey, ct.PictureURL, ct.OwnerID,
	).Scan(&id)
	duration := metrics.MeasureDuration(start)
	if err != nil {
		observe(operation, duration, err, zap.Int64("owner_id", ct.OwnerID))
		return nil, apperrors.InternalError("failed to create contact", err)
	}

	observe(operation, duration, nil, zap.Int64("contact_id", id), zap.Int64("owner_id", ct.OwnerID))
	return c.GetContact(ctx, id, ct.OwnerID)
}

// UpdateContact saves every editable column of a contact
func (c *Client) UpdateContact(ctx context.Context, ct *models.Contact) (*models.Contact, error) {
	start := time.Now()
	operation := "updateContact"

	tag, err := c.pool.Exec(ctx, `
		UPDATE contacts
		SET first_name = $3, last_name = $4, phone = $5, email = $6, description = $7,
			category_id = $8, picture_key = $9, picture_url = $10, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2 AND show`,
		ct.ID, ct.OwnerID, ct.FirstName, ct.LastName, ct.Phone, ct.Email, ct.Description,
		ct.CategoryID, ct.PictureKey, ct.PictureURL)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		observe(operation, duration, err, zap.Int64("contact_id", ct.ID))
		return nil, apperrors.InternalError("failed to update contact", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("contact")
	}

	observe(operation, duration, nil, zap.Int64("contact_id", ct.ID))
	return c.GetContact(ctx, ct.ID, ct.OwnerID)
}

// DeleteContact removes a contact that belongs to owner
func (c *Client) DeleteContact(ctx context.Context, id, ownerID int64) error {
	start := time.Now()
	operation := "deleteContact"

	tag, err := c.pool.Exec(ctx,
		"DELETE FROM contacts WHERE id = $1 AND owner_id = $2 AND show", id, ownerID)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		observe(operation, duration, err, zap.Int64("contact_id", id))
		return apperrors.InternalError("failed to delete contact", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("contact")
	}

	observe(operation, duration, nil, zap.Int64("contact_id", id))
	return nil
}
