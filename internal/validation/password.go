package validation

import (
	"bufio"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMinPasswordLength is the minimum accepted password length.
const DefaultMinPasswordLength = 8

// maxSimilarity is the similarity ratio at which a password counts as
// derived from a user attribute.
const maxSimilarity = 0.7

//go:embed common_passwords.txt
var commonPasswordList string

var nonWordRegex = regexp.MustCompile(`\W+`)

// UserAttributes are the account fields a password must not resemble.
type UserAttributes struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
}

// PasswordPolicy reports every rule a plaintext password breaks.
// An empty result means the password is acceptable.
type PasswordPolicy interface {
	Validate(password string, user UserAttributes) []string
}

// DefaultPasswordPolicy rejects passwords that resemble the user's own
// attributes, are too short, appear in the common password list or are
// entirely numeric.
type DefaultPasswordPolicy struct {
	minLength int
	common    map[string]struct{}
}

// NewDefaultPasswordPolicy builds the policy with the embedded common password list.
func NewDefaultPasswordPolicy(minLength int) *DefaultPasswordPolicy {
	if minLength < 1 {
		minLength = DefaultMinPasswordLength
	}

	common := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(commonPasswordList))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			common[strings.ToLower(line)] = struct{}{}
		}
	}

	return &DefaultPasswordPolicy{minLength: minLength, common: common}
}

// Validate implements PasswordPolicy.
func (p *DefaultPasswordPolicy) Validate(password string, user UserAttributes) []string {
	var violations []string

	if attr, ok := similarAttribute(password, user); ok {
		violations = append(violations, fmt.Sprintf("The password is too similar to the %s.", attr))
	}

	if utf8.RuneCountInString(password) < p.minLength {
		violations = append(violations, fmt.Sprintf(
			"This password is too short. It must contain at least %d characters.", p.minLength))
	}

	if _, ok := p.common[strings.ToLower(strings.TrimSpace(password))]; ok {
		violations = append(violations, "This password is too common.")
	}

	if isNumeric(password) {
		violations = append(violations, "This password is entirely numeric.")
	}

	return violations
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// similarAttribute returns the display name of the first attribute the
// password is too close to.
func similarAttribute(password string, user UserAttributes) (string, bool) {
	attrs := []struct {
		name  string
		value string
	}{
		{"username", user.Username},
		{"first name", user.FirstName},
		{"last name", user.LastName},
		{"email address", user.Email},
	}

	password = strings.ToLower(password)
	for _, attr := range attrs {
		if attr.value == "" {
			continue
		}
		value := strings.ToLower(attr.value)
		if exceedsLengthRatio(password, value) {
			continue
		}

		parts := append(nonWordRegex.Split(value, -1), value)
		for _, part := range parts {
			if exceedsLengthRatio(password, part) {
				continue
			}
			if quickRatio(password, part) >= maxSimilarity {
				return attr.name, true
			}
		}
	}
	return "", false
}

// exceedsLengthRatio skips attributes far shorter than the password, which
// cannot reach the similarity threshold.
func exceedsLengthRatio(password, value string) bool {
	pwdLen := utf8.RuneCountInString(password)
	valueLen := utf8.RuneCountInString(value)
	lengthBound := maxSimilarity / 2 * float64(pwdLen)
	return pwdLen >= 10*valueLen && float64(valueLen) < lengthBound
}

// quickRatio is 2*M/T where M counts the characters the two strings share
// (as multisets) and T is their combined length.
func quickRatio(a, b string) float64 {
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	if la+lb == 0 {
		return 1
	}

	avail := make(map[rune]int, lb)
	for _, r := range b {
		avail[r]++
	}

	matches := 0
	for _, r := range a {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(la+lb)
}
