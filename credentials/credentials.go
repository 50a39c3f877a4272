// Package credentials holds the password and input-format checks shared by
// the account and task handlers.
package credentials

import (
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/coreybb/mylist/models"
)

const (
	// MinPasswordLength is counted in characters, not bytes.
	MinPasswordLength = 8

	// PasswordSpecialChars is the punctuation set a password must draw from.
	PasswordSpecialChars = `!@#$%^&*(),.?":{}|<>`
)

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
	emailRe   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ErrPasswordTooLong is returned when bcrypt cannot hash the input.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// HashPassword hashes plaintext with bcrypt at the default cost.
func HashPassword(plaintext string) (string, error) {
	return HashPasswordCost(plaintext, bcrypt.DefaultCost)
}

// HashPasswordCost hashes plaintext with bcrypt at the given cost.
func HashPasswordCost(plaintext string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches hash under the salt and
// cost embedded in hash.
func VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// CheckPasswordPolicy reports whether plaintext is at least MinPasswordLength
// characters and contains an uppercase letter, a lowercase letter, a digit
// and one of PasswordSpecialChars.
func CheckPasswordPolicy(plaintext string) bool {
	if utf8.RuneCountInString(plaintext) < MinPasswordLength {
		return false
	}
	return upperRe.MatchString(plaintext) &&
		lowerRe.MatchString(plaintext) &&
		digitRe.MatchString(plaintext) &&
		specialRe.MatchString(plaintext)
}

// CheckEmailFormat reports whether value looks like local@domain.tld.
func CheckEmailFormat(value string) bool {
	return emailRe.MatchString(value)
}

// CheckDateFormat reports whether value parses exactly under layout.
// An empty layout means models.DateLayout.
func CheckDateFormat(value, layout string) bool {
	if layout == "" {
		layout = models.DateLayout
	}
	_, err := time.Parse(layout, value)
	return err == nil
}

// ParseDate parses a YYYY-MM-DD deadline.
func ParseDate(value string) (models.Date, error) {
	if !CheckDateFormat(value, models.DateLayout) {
		return models.Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return models.Date{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return models.NewDate(t), nil
}
