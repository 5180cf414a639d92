package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword produces a bcrypt hash suitable for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

const passwordSpecials = `!#$%&? "`

// ValidPassword enforces the registration password policy: at least 8
// characters, one uppercase letter, and one digit or special character.
func ValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, digitOrSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r), strings.ContainsRune(passwordSpecials, r):
			digitOrSpecial = true
		}
	}
	return upper && digitOrSpecial
}
