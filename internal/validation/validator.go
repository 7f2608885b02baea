// Package validation cleans contact and account submissions.
//
// Every check runs and every failure is collected; a submission is either
// returned as-is or rejected with FieldErrors keyed by the submitted field
// names. Struct-tag constraints (required, length, email syntax) run first;
// domain rules only look at fields that passed them.
package validation

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// UserLookup answers uniqueness questions about registered users.
// excludeUserID is ignored when zero.
type UserLookup interface {
	EmailExists(ctx context.Context, email string, excludeUserID int64) (bool, error)
	UsernameExists(ctx context.Context, username string, excludeUserID int64) (bool, error)
}

// CategoryLookup checks that a referenced category exists.
type CategoryLookup interface {
	CategoryExists(ctx context.Context, id int64) (bool, error)
}

// Validator holds the collaborators shared by all submissions.
type Validator struct {
	validate   *validator.Validate
	users      UserLookup
	categories CategoryLookup
	policy     PasswordPolicy
}

// New builds a Validator. policy may be nil, in which case DefaultPasswordPolicy is used.
func New(users UserLookup, categories CategoryLookup, policy PasswordPolicy) *Validator {
	if policy == nil {
		policy = NewDefaultPasswordPolicy(DefaultMinPasswordLength)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		validate:   v,
		users:      users,
		categories: categories,
		policy:     policy,
	}
}

// checkStruct runs tag constraints and records their failures.
// overrides replaces the default message for a "field.tag" pair.
func (v *Validator) checkStruct(s any, errs FieldErrors, overrides map[string]string) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	for _, fe := range verrs {
		field := fe.Field()
		kind, msg := tagMessage(fe)
		if override, ok := overrides[field+"."+fe.Tag()]; ok {
			msg = override
		}
		errs.Add(field, kind, msg)
	}
	return nil
}

func tagMessage(fe validator.FieldError) (Kind, string) {
	switch fe.Tag() {
	case "required":
		return KindRequired, "This field is required."
	case "min":
		return KindLength, "Ensure this value has at least " + fe.Param() + " characters."
	case "max":
		return KindLength, "Ensure this value has at most " + fe.Param() + " characters."
	case "email":
		return KindFormat, "Enter a valid email address."
	case "gt":
		return KindChoice, "Select a valid choice."
	default:
		return KindFormat, "Enter a valid value."
	}
}
