package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret-pass")
	assert.NoError(t, err)
	assert.NotEqual(t, "secret-pass", hash)

	assert.True(t, CheckPassword(hash, "secret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestHashPassword_TooLong(t *testing.T) {
	// bcrypt rejects input over 72 bytes
	_, err := HashPassword(strings.Repeat("A", 100))
	assert.Error(t, err)
}
