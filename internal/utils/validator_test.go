package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("user@example.com"))
	assert.True(t, ValidateEmail("first.last+tag@sub.example.co"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@tld"))
	assert.False(t, ValidateEmail(""))
}

func TestValidateUsername(t *testing.T) {
	assert.True(t, ValidateUsername("alice"))
	assert.True(t, ValidateUsername("al-ice_99"))
	assert.False(t, ValidateUsername("ab"), "below minimum length")
	assert.False(t, ValidateUsername("has space"))
	assert.False(t, ValidateUsername("émile"))

	long := ""
	for i := 0; i < 51; i++ {
		long += "a"
	}
	assert.False(t, ValidateUsername(long), "above maximum length")
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("Password1!"))
	assert.True(t, ValidatePassword("c0mpl3X#pass"))

	assert.False(t, ValidatePassword("Sh0rt!a"), "too short")
	assert.False(t, ValidatePassword("password1!"), "no uppercase")
	assert.False(t, ValidatePassword("PASSWORD1!"), "no lowercase")
	assert.False(t, ValidatePassword("Password!!"), "no digit")
	assert.False(t, ValidatePassword("Password11"), "no symbol")
}

func TestSanitizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", SanitizeEmail("  User@Example.COM "))
}
