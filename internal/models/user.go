package models

import "time"

// User represents a registered account
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	DateJoined   time.Time  `json:"date_joined"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// ToProfile converts a User to the profile form payload
func (u *User) ToProfile() ProfileResponse {
	return ProfileResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// ToSession builds the session view of a User
func (u *User) ToSession(expiresAt, issuedAt int64) *UserSession {
	return &UserSession{
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		ExpiresAt: expiresAt,
		IssuedAt:  issuedAt,
	}
}

// ProfileResponse is the current state of the profile form
type ProfileResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RegisterResponse is returned after a successful sign-up
type RegisterResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	User    *ProfileResponse `json:"user,omitempty"`
}

// UpdateProfileResponse is returned after a successful profile update
type UpdateProfileResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	User    *ProfileResponse `json:"user,omitempty"`
}
