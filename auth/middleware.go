// This file defines the HTTP middleware that authenticates requests.
// Middleware are functions that process HTTP requests before they reach the
// main handler; this one is the Go counterpart of the original's
// `verifyToken.checkLogin` Express middleware.
package auth

import (
	"net/http"
	// `strings` for splitting the Authorization header.
	"strings"

	"github.com/user/learnhub-go/apperror"
)

// Middleware returns the authentication middleware for protected route groups.
// It verifies the Bearer token from the Authorization header and stores the
// resulting Principal in the request context.
//
// The returned function conforms to the standard Go
// `func(next http.Handler) http.Handler` middleware shape that chi composes.
// Authentication failure short-circuits here with 401: no downstream role
// check or storage access ever runs for an unauthenticated request.
func Middleware(ta *TokenAuthority) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewAuthError("Authorization header is missing", nil))
				return
			}

			// The Authorization header should be in the format "Bearer {token}".
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				WriteError(w, r, apperror.NewAuthError("Authorization header format must be Bearer {token}", nil))
				return
			}

			// Delegate parsing and validation to the token authority so error
			// classification lives in exactly one place.
			claims, err := ta.Verify(parts[1])
			if err != nil {
				WriteError(w, r, err)
				return
			}

			// Project the verified Claims down to a Principal. Handlers never
			// see the raw token or the full claims, only the identity + role.
			principal := &Principal{UserID: claims.UserID, Role: claims.Role}
			ctx := NewContextWithPrincipal(r.Context(), principal)
			// Call the next handler in the chain with the enriched context.
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
