package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPasswordPolicy(t *testing.T) {
	user := UserAttributes{
		Username:  "anasilva",
		FirstName: "Ana",
		LastName:  "Silva",
		Email:     "ana@example.com",
	}

	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{
			name:     "strong",
			password: strongPassword,
		},
		{
			name:     "too short",
			password: "abc",
			want:     []string{"This password is too short. It must contain at least 8 characters."},
		},
		{
			name:     "common and numeric",
			password: "12345678",
			want:     []string{"This password is too common.", "This password is entirely numeric."},
		},
		{
			name:     "common regardless of case",
			password: "PASSWORD",
			want:     []string{"This password is too common."},
		},
		{
			name:     "numeric but uncommon",
			password: "90817263544",
			want:     []string{"This password is entirely numeric."},
		},
		{
			name:     "similar to username",
			password: "anasilva1",
			want:     []string{"The password is too similar to the username."},
		},
		{
			name:     "similar to email local part",
			password: "Example99",
			want:     []string{"The password is too similar to the email address."},
		},
	}

	policy := NewDefaultPasswordPolicy(DefaultMinPasswordLength)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Validate(tt.password, user))
		})
	}
}

func TestDefaultPasswordPolicy_MinLength(t *testing.T) {
	policy := NewDefaultPasswordPolicy(12)
	assert.Equal(t,
		[]string{"This password is too short. It must contain at least 12 characters."},
		policy.Validate("Tr1cky-Word", UserAttributes{}))

	fallback := NewDefaultPasswordPolicy(0)
	assert.Empty(t, fallback.Validate("Tr1cky-Word", UserAttributes{}))
}

func TestQuickRatio(t *testing.T) {
	assert.InDelta(t, 1.0, quickRatio("abc", "cba"), 0.0001)
	assert.InDelta(t, 0.0, quickRatio("abc", "xyz"), 0.0001)
	assert.InDelta(t, 0.5, quickRatio("ab", "ac"), 0.0001)
	assert.InDelta(t, 1.0, quickRatio("", ""), 0.0001)
}

func TestExceedsLengthRatio(t *testing.T) {
	assert.True(t, exceedsLengthRatio("averyveryverylongpassword", "ab"))
	assert.False(t, exceedsLengthRatio("password", "ab"))
}
