package credentials

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPasswordCost("Abcd123!", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "Abcd123!", hash)
	assert.True(t, VerifyPassword("Abcd123!", hash))
	assert.False(t, VerifyPassword("abcd123!", hash))
	assert.False(t, VerifyPassword("Abcd123!", "not-a-hash"))
}

func TestHashPassword_IsSalted(t *testing.T) {
	first, err := HashPasswordCost("Abcd123!", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPasswordCost("Abcd123!", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, VerifyPassword("Abcd123!", first))
	assert.True(t, VerifyPassword("Abcd123!", second))
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPasswordCost(strings.Repeat("Aa1!", 20), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestCheckPasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"valid minimum length", "Abcd123!", true},
		{"valid long", "Correct-Horse9Battery{Staple}", true},
		{"length seven", "Abc123!", false},
		{"empty", "", false},
		{"missing uppercase", "abcd123!", false},
		{"missing lowercase", "ABCD123!", false},
		{"missing digit", "Abcdefg!", false},
		{"missing special", "Abcd1234", false},
		{"special outside set", "Abcd123-", false},
		{"every special in set", `Aa1!@#$%^&*(),.?":{}|<>`, true},
		{"seven characters in nine bytes", "Ab1!éüx", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckPasswordPolicy(tt.password))
		})
	}
}

func TestCheckEmailFormat(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a.b+c@sub.domain.com", true},
		{"u@e.com", true},
		{"first_last%tag@my-host.io", true},
		{"a@b", false},
		{"@domain.com", false},
		{"a@domain", false},
		{"a@domain.c", false},
		{"a b@domain.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckEmailFormat(tt.email))
		})
	}
}

func TestCheckDateFormat(t *testing.T) {
	tests := []struct {
		value  string
		layout string
		want   bool
	}{
		{"2099-01-01", "", true},
		{"2024-02-29", "", true},
		{"2023-02-29", "", false},
		{"2024-13-01", "", false},
		{"2024-1-5", "", false},
		{"01/02/2024", "", false},
		{"01/02/2024", "01/02/2006", true},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckDateFormat(tt.value, tt.layout))
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2099-01-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2099, time.January, 1, 0, 0, 0, 0, time.UTC), d.Time)
	assert.Equal(t, "2099-01-01", d.String())

	_, err = ParseDate("tomorrow")
	assert.Error(t, err)
}
