// This file implements the token authority: verification (and minting, for the
// issuing collaborator) of the signed claims token that authenticates every
// protected request. The original verified tokens inline in each controller
// with `jwt.verify(req.headers.authorization, _const.JWT_ACCESS_KEY, cb)`;
// here the signing key is injected once, at construction, and verification is
// a synchronous call returning either Claims or an error, with no callback.
package auth

import (
	"fmt"
	"time"

	// Third-party library for JWT handling. `jwt/v5` indicates version 5.
	"github.com/golang-jwt/jwt/v5"

	"github.com/user/learnhub-go/apperror"
	"github.com/user/learnhub-go/config"
)

// Role is the single axis of elevation in the system.
type Role string

// The three roles a user can hold. The original stored free-form strings like
// 'isMentor'; these are the normalized equivalents.
const (
	RoleLearner Role = "learner"
	RoleMentor  Role = "mentor"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleLearner, RoleMentor, RoleAdmin:
		return true
	}
	return false
}

// Claims defines the payload of our JWTs.
// Embedding `jwt.RegisteredClaims` includes the standard claims (`exp`, `iat`,
// `nbf`, ...). UserID and Role are the application-specific additions.
//
// Role is a snapshot taken at issuance time: promoting or demoting a user does
// NOT retroactively rewrite outstanding tokens. A changed role takes effect
// when the user obtains a fresh token. This is deliberate, documented behavior.
type Claims struct {
	UserID int  `json:"user_id"`
	Role   Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenAuthority verifies (and mints) HS256-signed claims tokens.
// The shared secret is explicit construction-time state, not a module-level
// singleton, so tests and alternate deployments can carry their own keys.
type TokenAuthority struct {
	secret         []byte
	accessTokenTTL time.Duration
}

// NewTokenAuthority creates a TokenAuthority from auth configuration.
func NewTokenAuthority(cfg config.AuthConfig) *TokenAuthority {
	return &TokenAuthority{
		secret:         []byte(cfg.JWTSecret),
		accessTokenTTL: cfg.AccessTokenDuration,
	}
}

// Mint creates a signed token embedding the user's id and current role.
//
// This is the issuing collaborator's side of the contract: the request path in
// this service only ever calls Verify. Mint exists so the login service (and
// the test suite) produce tokens with exactly the claims Verify expects.
func (ta *TokenAuthority) Mint(userID int, role Role) (string, time.Time, error) {
	expirationTime := time.Now().Add(ta.accessTokenTTL)
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "learnhub",
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	// Create a new token object with the specified signing method (HS256) and claims.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ta.secret)
	if err != nil {
		return "", time.Time{}, apperror.NewInternalError("failed to sign token", err)
	}
	return tokenString, expirationTime, nil
}

// Verify parses and validates a token string, returning its Claims.
//
// Every failure mode (malformed token, wrong signature, expired, wrong
// signing algorithm, nonsense claims) collapses into a single AuthError with
// a uniform message. The underlying cause is wrapped for server-side logs, but
// `apperror.ToResponse` guarantees the client only ever sees "unauthorized"-
// class detail, so verification failures cannot leak internals.
func (ta *TokenAuthority) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	// The key function provides the secret key for signature verification and
	// pins the signing method: a token signed with anything but HMAC (e.g. an
	// attacker switching to "none" or RSA) is rejected before key use.
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ta.secret, nil
	})
	if err != nil {
		// jwt/v5 already folds expiry into the parse error (jwt.ErrTokenExpired).
		return nil, apperror.NewAuthError("invalid or expired token", err)
	}
	if !token.Valid {
		return nil, apperror.NewAuthError("invalid or expired token", nil)
	}

	// Sanity-check the application claims: a structurally valid token that is
	// missing our claims was not minted by our issuer contract.
	if claims.UserID == 0 || !claims.Role.Valid() {
		return nil, apperror.NewAuthError("invalid or expired token", nil)
	}

	return claims, nil
}
