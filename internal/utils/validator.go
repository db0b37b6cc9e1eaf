package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) bool {
	return len(email) <= 255 && emailRegex.MatchString(email)
}

// ValidateUsername validates a username: 3-50 chars, letters, digits,
// hyphens and underscores only.
func ValidateUsername(username string) bool {
	if len(username) < 3 || len(username) > 50 {
		return false
	}
	return usernameRegex.MatchString(username)
}

// ValidatePassword validates a password.
// Minimum 8 characters with at least one lowercase letter, one uppercase
// letter, one digit and one symbol.
func ValidatePassword(password string) bool {
	if len(password) < 8 || len(password) > 100 {
		return false
	}

	hasUpper := false
	hasLower := false
	hasNumber := false
	hasSymbol := false

	for _, char := range password {
		switch {
		case 'A' <= char && char <= 'Z':
			hasUpper = true
		case 'a' <= char && char <= 'z':
			hasLower = true
		case '0' <= char && char <= '9':
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char) || char == ' ':
			hasSymbol = true
		}
	}

	return hasUpper && hasLower && hasNumber && hasSymbol
}

// SanitizeEmail sanitizes an email address
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
