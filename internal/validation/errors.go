package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a field error.
type Kind string

const (
	KindRequired   Kind = "required"
	KindLength     Kind = "length"
	KindFormat     Kind = "format"
	KindEquality   Kind = "equality"
	KindUniqueness Kind = "uniqueness"
	KindPolicy     Kind = "policy"
	KindBlocklist  Kind = "blocklist"
	KindChoice     Kind = "choice"
	KindUpload     Kind = "upload"
)

// FieldError is one human-readable failure attached to a field.
type FieldError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// FieldErrors maps a field name to its failures in the order they were found.
// A non-empty FieldErrors is returned as the error of a Validate* call.
type FieldErrors map[string][]FieldError

// Add appends a failure to field.
func (fe FieldErrors) Add(field string, kind Kind, message string) {
	fe[field] = append(fe[field], FieldError{Kind: kind, Message: message})
}

// Has reports whether field carries at least one failure.
func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// HasKind reports whether field carries a failure of the given kind.
func (fe FieldErrors) HasKind(field string, kind Kind) bool {
	for _, e := range fe[field] {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// Messages renders the errors as field -> messages.
func (fe FieldErrors) Messages() map[string][]string {
	out := make(map[string][]string, len(fe))
	for field, errs := range fe {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Message)
		}
		out[field] = msgs
	}
	return out
}

// Fields returns the failing field names, sorted.
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(fe))
	for _, field := range fe.Fields() {
		for _, e := range fe[field] {
			parts = append(parts, fmt.Sprintf("%s: %s", field, e.Message))
		}
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// orNil keeps a nil error when nothing was collected.
func (fe FieldErrors) orNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// AsFieldErrors extracts FieldErrors from err.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
