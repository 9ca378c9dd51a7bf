package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/learnhub-go/apperror"
	"github.com/user/learnhub-go/config"
)

func testTokenAuthority(ttl time.Duration) *TokenAuthority {
	return NewTokenAuthority(config.AuthConfig{
		JWTSecret:           "test-secret-key",
		AccessTokenDuration: ttl,
	})
}

func TestMintVerifyRoundTrip(t *testing.T) {
	ta := testTokenAuthority(time.Minute)

	token, expiresAt, err := ta.Mint(42, RoleMentor)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	claims, err := ta.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, RoleMentor, claims.Role)
}

func TestVerifyExpiredToken(t *testing.T) {
	ta := testTokenAuthority(-time.Minute) // already expired at issuance

	token, _, err := ta.Mint(42, RoleLearner)
	require.NoError(t, err)

	claims, err := ta.Verify(token)
	assert.Nil(t, claims)
	require.Error(t, err)
	assert.True(t, apperror.IsAuthError(err))
}

func TestVerifyWrongKey(t *testing.T) {
	minter := NewTokenAuthority(config.AuthConfig{
		JWTSecret:           "one-key",
		AccessTokenDuration: time.Minute,
	})
	verifier := NewTokenAuthority(config.AuthConfig{
		JWTSecret:           "a-different-key",
		AccessTokenDuration: time.Minute,
	})

	token, _, err := minter.Mint(7, RoleAdmin)
	require.NoError(t, err)

	claims, err := verifier.Verify(token)
	assert.Nil(t, claims)
	require.Error(t, err)
	assert.True(t, apperror.IsAuthError(err))
}

func TestVerifyMalformedToken(t *testing.T) {
	ta := testTokenAuthority(time.Minute)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		claims, err := ta.Verify(tok)
		assert.Nil(t, claims)
		require.Error(t, err)
		assert.True(t, apperror.IsAuthError(err), "token %q must fail as unauthenticated", tok)
	}
}

// The failure message is uniform across causes so a caller probing the API
// cannot distinguish "expired" from "forged".
func TestVerifyFailureDetailIsUniform(t *testing.T) {
	ta := testTokenAuthority(-time.Minute)
	expiredTok, _, err := ta.Mint(1, RoleLearner)
	require.NoError(t, err)

	_, expiredErr := ta.Verify(expiredTok)
	_, malformedErr := ta.Verify("garbage")

	require.Error(t, expiredErr)
	require.Error(t, malformedErr)
	var e1, e2 *apperror.AppError
	require.ErrorAs(t, expiredErr, &e1)
	require.ErrorAs(t, malformedErr, &e2)
	assert.Equal(t, e1.Message, e2.Message)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleLearner.Valid())
	assert.True(t, RoleMentor.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}
