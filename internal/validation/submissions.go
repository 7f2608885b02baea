package validation

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ContactSubmission is the contact form as posted by the client.
type ContactSubmission struct {
	FirstName   string   `json:"first_name" form:"first_name" validate:"required,max=50"`
	LastName    string   `json:"last_name" form:"last_name" validate:"required,max=50"`
	Phone       string   `json:"phone" form:"phone" validate:"required,max=15"`
	Email       string   `json:"email" form:"email" validate:"omitempty,email,max=254"`
	Description string   `json:"description" form:"description" validate:"max=5000"`
	Category    *int64   `json:"category" form:"category" validate:"omitempty,gt=0"`
	Picture     *Picture `json:"picture" form:"-"`

	// ClearPicture removes the stored picture on update when no new one is sent
	ClearPicture bool `json:"clear_picture" form:"clear_picture"`
}

func (s *ContactSubmission) trim() {
	s.FirstName = strings.TrimSpace(s.FirstName)
	s.LastName = strings.TrimSpace(s.LastName)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Email = strings.TrimSpace(s.Email)
	s.Description = strings.TrimSpace(s.Description)
}

// Picture is an optional image attached to a contact, base64 encoded.
type Picture struct {
	Image       string `json:"image"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`

	data []byte
}

// Data returns the decoded image bytes once the picture has been validated.
func (p *Picture) Data() []byte {
	return p.data
}

// decode accepts plain base64 or a data URI (data:image/png;base64,...).
func (p *Picture) decode() error {
	raw := p.Image
	if strings.HasPrefix(raw, "data:") {
		parts := strings.SplitN(raw, ",", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid data URI format")
		}
		raw = parts[1]
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return fmt.Errorf("failed to decode base64 image: %w", err)
	}
	p.data = data
	return nil
}

// RegistrationSubmission is the sign-up form.
type RegistrationSubmission struct {
	FirstName string `json:"first_name" form:"first_name" validate:"required,min=3,max=150"`
	LastName  string `json:"last_name" form:"last_name" validate:"required,min=3,max=150"`
	Email     string `json:"email" form:"email" validate:"required,max=254"`
	Username  string `json:"username" form:"username" validate:"required,max=150"`
	Password1 string `json:"password1" form:"password1" validate:"required"`
	Password2 string `json:"password2" form:"password2" validate:"required"`
}

func (s *RegistrationSubmission) trim() {
	s.FirstName = strings.TrimSpace(s.FirstName)
	s.LastName = strings.TrimSpace(s.LastName)
	s.Email = strings.TrimSpace(s.Email)
	s.Username = strings.TrimSpace(s.Username)
}

// RegistrationUpdateSubmission is the profile form of a signed-in user.
// Passwords are optional: leaving both empty keeps the current one.
type RegistrationUpdateSubmission struct {
	UserID    int64  `json:"-" form:"-"`
	FirstName string `json:"first_name" form:"first_name" validate:"required,min=2,max=30"`
	LastName  string `json:"last_name" form:"last_name" validate:"required,min=2,max=30"`
	Email     string `json:"email" form:"email" validate:"max=254"`
	Username  string `json:"username" form:"username" validate:"required,max=150"`
	Password1 string `json:"password1" form:"password1"`
	Password2 string `json:"password2" form:"password2"`
}

func (s *RegistrationUpdateSubmission) trim() {
	s.FirstName = strings.TrimSpace(s.FirstName)
	s.LastName = strings.TrimSpace(s.LastName)
	s.Email = strings.TrimSpace(s.Email)
	s.Username = strings.TrimSpace(s.Username)
}

// PasswordChanged reports whether the caller must hash and store Password1.
func (s RegistrationUpdateSubmission) PasswordChanged() bool {
	return s.Password1 != ""
}
