package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/contactbook/contactbook-api/internal/validation"
	"github.com/contactbook/contactbook-api/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single binding error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ParseValidationErrors converts binding errors to user-friendly format
func ParseValidationErrors(err error) []ValidationError {
	var errs []ValidationError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			errs = append(errs, ValidationError{
				Field:   strings.ToLower(fieldError.Field()),
				Message: getErrorMessage(fieldError),
			})
		}
	}

	return errs
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	default:
		return strings.ToLower(fe.Field()) + " is invalid"
	}
}

// respondValidationFailed sends field errors back to the client and counts them
func respondValidationFailed(c *gin.Context, form string, errs validation.FieldErrors) {
	for _, field := range errs.Fields() {
		metrics.ValidationFailures.WithLabelValues(form, field).Inc()
	}

	attachError(c, errs)
	c.JSON(http.StatusBadRequest, gin.H{
		"error":  "Validation failed",
		"fields": errs.Messages(),
	})
}

// bindContactSubmission reads a contact form from JSON, urlencoded or multipart bodies.
// Multipart uploads carry the picture as a "picture" file part.
func bindContactSubmission(c *gin.Context) (validation.ContactSubmission, error) {
	var sub validation.ContactSubmission
	if err := c.ShouldBind(&sub); err != nil {
		return sub, err
	}

	if c.ContentType() == binding.MIMEJSON {
		return sub, nil
	}

	// An empty select posts category="" which means no category
	if strings.TrimSpace(c.PostForm("category")) == "" {
		sub.Category = nil
	}

	picture, err := pictureFromForm(c)
	if err != nil {
		return sub, err
	}
	sub.Picture = picture
	return sub, nil
}

// pictureFromForm turns an uploaded file into a base64 Picture. No file means no picture.
func pictureFromForm(c *gin.Context) (*validation.Picture, error) {
	fh, err := c.FormFile("picture")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read picture upload: %w", err)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// One byte over the limit is enough for the validator to reject it
	data, err := io.ReadAll(io.LimitReader(f, validation.MaxPictureSize+1))
	if err != nil {
		return nil, err
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return &validation.Picture{
		Image:       base64.StdEncoding.EncodeToString(data),
		FileName:    fh.Filename,
		ContentType: contentType,
	}, nil
}
