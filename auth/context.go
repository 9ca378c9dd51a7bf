// This file deals with carrying the authenticated caller through the request
// context, and with the role gate built on top of it. The context is the
// standard way in Go to carry request-scoped values across API boundaries;
// it plays the part `req.user` played after the Express `verifyToken`
// middleware ran.
package auth

import (
	"context"

	"github.com/user/learnhub-go/apperror"
)

// Principal is the authenticated caller: the identity and role derived from a
// verified token. It is transient: reconstructed per request from Claims and
// never persisted.
type Principal struct {
	UserID int
	Role   Role
}

// `contextKey` is a custom type for context keys. Using a custom type prevents
// collisions with context keys defined in other packages. It's a common Go idiom.
type contextKey string

const (
	// principalContextKey is the key under which the Principal is stored.
	principalContextKey contextKey = "auth_principal"
)

// NewContextWithPrincipal returns a child context carrying the Principal.
// Called by the middleware after successful token verification.
func NewContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext extracts the Principal placed by the middleware.
// The second return value indicates whether a Principal was present.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(*Principal)
	return p, ok
}

// RequirePrincipal returns the Principal or an AuthError if the request was
// never authenticated. Handlers on protected routes call this first; the
// middleware should have rejected the request already, so a miss here means a
// route was wired without the middleware.
func RequirePrincipal(ctx context.Context) (*Principal, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return nil, apperror.NewAuthError("authentication required", nil)
	}
	return p, nil
}

// RequireRole is the capability predicate consumed by every role-gated
// operation: it succeeds iff the principal's role is one of the allowed roles.
//
// It is purely functional (no side effects, no storage access) and it is
// only ever called AFTER authentication succeeded. That ordering is what keeps
// 401 and 403 distinct: an unauthenticated caller is rejected before any role
// logic runs, so the API never reveals whether a given operation would have
// been within reach of some account.
func RequireRole(p *Principal, allowed ...Role) error {
	if p == nil {
		// A nil principal means authentication never happened.
		return apperror.NewAuthError("authentication required", nil)
	}
	for _, role := range allowed {
		if p.Role == role {
			return nil
		}
	}
	return apperror.NewForbiddenError("insufficient role for this operation", nil)
}
