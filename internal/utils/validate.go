package utils

import (
	"regexp"
	"strings"
	"unicode"
)

// emailRe is a pragmatic format check, not a full RFC 5322 parser. Real
// deliverability is the job of the external verification service.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether the (already trimmed) address looks like an
// email and fits in the column.
func ValidEmail(email string) bool {
	return email != "" && len(email) <= 255 && emailRe.MatchString(email)
}

// ValidPassword enforces the signup password policy: 8 to 128 characters
// containing at least one uppercase letter, one lowercase letter and one
// digit.
func ValidPassword(password string) bool {
	if len(password) < 8 || len(password) > 128 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// NormalizeEmail lowercases and trims an address for storage and lookup so
// that uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
