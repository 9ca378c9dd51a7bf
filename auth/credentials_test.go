package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/learnhub-go/apperror"
)

// MinCost keeps the hash rounds cheap; the tests exercise contract, not
// work-factor tuning.
func testCredentialManager() *CredentialManager {
	return NewCredentialManager(bcrypt.MinCost)
}

func TestHashAndVerifyRoundTrip(t *testing.T) {
	m := testCredentialManager()

	hash, err := m.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	ok, err := m.VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyWrongPasswordIsNotAnError(t *testing.T) {
	m := testCredentialManager()

	hash, err := m.HashPassword("the real password")
	require.NoError(t, err)

	ok, err := m.VerifyPassword("a wrong guess", hash)
	require.NoError(t, err, "a mismatch is an expected outcome, not an error")
	assert.False(t, ok)
}

func TestHashingIsSalted(t *testing.T) {
	m := testCredentialManager()

	first, err := m.HashPassword("same input")
	require.NoError(t, err)
	second, err := m.HashPassword("same input")
	require.NoError(t, err)

	// bcrypt embeds a random salt, so equal inputs never produce equal hashes.
	assert.NotEqual(t, first, second)
}

func TestVerifyCorruptStoredHash(t *testing.T) {
	m := testCredentialManager()

	ok, err := m.VerifyPassword("anything", "not-a-bcrypt-hash")
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, apperror.IsCredentialFormatError(err))
}

func TestVerifyEmptyStoredHash(t *testing.T) {
	m := testCredentialManager()

	ok, err := m.VerifyPassword("anything", "")
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, apperror.IsCredentialFormatError(err))
}
