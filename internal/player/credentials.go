package player

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidUsername = errors.New("username must be 3–24 chars: letters, numbers, underscore")
	ErrInvalidPassword = errors.New("password must be 1–100 chars")
)

// NormalizeUsername trims whitespace; usernames are otherwise case-sensitive keys.
func NormalizeUsername(u string) string {
	return strings.TrimSpace(u)
}

// ValidateCredentials enforces basic username/password rules.
func ValidateCredentials(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return ErrInvalidUsername
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return ErrInvalidUsername
		}
	}
	if len(p) < 1 || len(p) > 100 {
		return ErrInvalidPassword
	}
	return nil
}

// HashPassword returns the bcrypt hash stored as the account credential.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword reports whether pw matches the stored hash.
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
