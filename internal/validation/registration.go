package validation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const (
	MsgInvalidEmailFormat = "Invalid email format"
	MsgInvalidEmailDomain = "Invalid email domain"
	MsgEmailExists        = "This email already exists."
	MsgEmailInUse         = "This email is already in use."
	MsgUsernameTaken      = "A user with that username already exists."
	MsgInvalidUsername    = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	MsgPasswordMismatch   = "Passwords do not match"
	MsgShortFirstName     = "Please, add more than 2 letters."
)

var (
	emailRegex       = regexp.MustCompile(`^[\w.+-]+@[\w-]+\.[\w.-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[\w-]+\.[A-Za-z]{2,}$`)
	usernameRegex    = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
)

// ValidateRegistration checks a sign-up form.
func (v *Validator) ValidateRegistration(ctx context.Context, sub RegistrationSubmission) (RegistrationSubmission, error) {
	sub.trim()
	errs := FieldErrors{}

	if err := v.checkStruct(&sub, errs, nil); err != nil {
		return sub, err
	}

	if !errs.Has("email") {
		if err := v.checkEmail(ctx, sub.Email, 0, MsgEmailExists, errs); err != nil {
			return sub, err
		}
	}
	if !errs.Has("username") {
		if err := v.checkUsername(ctx, sub.Username, 0, errs); err != nil {
			return sub, err
		}
	}

	if !errs.Has("password1") && !errs.Has("password2") {
		if sub.Password1 != sub.Password2 {
			errs.Add("password2", KindEquality, MsgPasswordMismatch)
		} else {
			attrs := UserAttributes{
				Username:  sub.Username,
				FirstName: sub.FirstName,
				LastName:  sub.LastName,
				Email:     sub.Email,
			}
			for _, msg := range v.policy.Validate(sub.Password2, attrs) {
				errs.Add("password2", KindPolicy, msg)
			}
		}
	}

	return sub, errs.orNil()
}

// ValidateRegistrationUpdate checks a profile update. The user being updated
// (sub.UserID) does not collide with itself on email or username.
func (v *Validator) ValidateRegistrationUpdate(ctx context.Context, sub RegistrationUpdateSubmission) (RegistrationUpdateSubmission, error) {
	sub.trim()
	errs := FieldErrors{}

	overrides := map[string]string{"first_name.min": MsgShortFirstName}
	if err := v.checkStruct(&sub, errs, overrides); err != nil {
		return sub, err
	}

	if !errs.Has("email") {
		if err := v.checkEmail(ctx, sub.Email, sub.UserID, MsgEmailInUse, errs); err != nil {
			return sub, err
		}
	}
	if !errs.Has("username") {
		if err := v.checkUsername(ctx, sub.Username, sub.UserID, errs); err != nil {
			return sub, err
		}
	}

	if sub.Password1 != "" {
		attrs := UserAttributes{
			Username:  sub.Username,
			FirstName: sub.FirstName,
			LastName:  sub.LastName,
			Email:     sub.Email,
		}
		for _, msg := range v.policy.Validate(sub.Password1, attrs) {
			errs.Add("password1", KindPolicy, msg)
		}
	}

	if (sub.Password1 != "" || sub.Password2 != "") && sub.Password1 != sub.Password2 {
		errs.Add("password2", KindEquality, MsgPasswordMismatch)
	}

	return sub, errs.orNil()
}

// checkEmail applies format, domain and uniqueness in that order; the first
// failure stops the chain for this field.
func (v *Validator) checkEmail(ctx context.Context, email string, excludeUserID int64, existsMsg string, errs FieldErrors) error {
	if !emailRegex.MatchString(email) {
		errs.Add("email", KindFormat, MsgInvalidEmailFormat)
		return nil
	}

	domain := email[strings.LastIndex(email, "@")+1:]
	if !emailDomainRegex.MatchString(domain) {
		errs.Add("email", KindFormat, MsgInvalidEmailDomain)
		return nil
	}

	if v.users == nil {
		return nil
	}
	exists, err := v.users.EmailExists(ctx, email, excludeUserID)
	if err != nil {
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if exists {
		errs.Add("email", KindUniqueness, existsMsg)
	}
	return nil
}

func (v *Validator) checkUsername(ctx context.Context, username string, excludeUserID int64, errs FieldErrors) error {
	if !usernameRegex.MatchString(username) {
		errs.Add("username", KindFormat, MsgInvalidUsername)
		return nil
	}

	if v.users == nil {
		return nil
	}
	exists, err := v.users.UsernameExists(ctx, username, excludeUserID)
	if err != nil {
		return fmt.Errorf("failed to check username uniqueness: %w", err)
	}
	if exists {
		errs.Add("username", KindUniqueness, MsgUsernameTaken)
	}
	return nil
}
