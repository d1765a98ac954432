package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	password := "password123"
	hashedPassword, err := HashPassword(password)

	assert.NoError(t, err)
	assert.NotEmpty(t, hashedPassword)
	assert.NotEqual(t, password, hashedPassword)
}

func TestCheckPasswordHash(t *testing.T) {
	password := "password123"
	hashedPassword, _ := HashPassword(password)

	assert.True(t, CheckPasswordHash(password, hashedPassword))
	assert.False(t, CheckPasswordHash("wrongpassword", hashedPassword))
}

func TestCheckPasswordHash_InvalidHash(t *testing.T) {
	assert.False(t, CheckPasswordHash("password123", "invalidhash"))
}

func TestGenerateResetToken(t *testing.T) {
	plain, hashed, err := GenerateResetToken()

	assert.NoError(t, err)
	assert.Len(t, plain, 64) // 32 random bytes, hex encoded
	assert.NotEqual(t, plain, hashed)
	assert.Equal(t, hashed, HashResetToken(plain))
}

func TestGenerateResetToken_Unique(t *testing.T) {
	plain1, _, err1 := GenerateResetToken()
	plain2, _, err2 := GenerateResetToken()

	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.NotEqual(t, plain1, plain2)
}

func TestHashResetToken_Deterministic(t *testing.T) {
	assert.Equal(t, HashResetToken("abc"), HashResetToken("abc"))
	assert.NotEqual(t, HashResetToken("abc"), HashResetToken("abd"))
}
