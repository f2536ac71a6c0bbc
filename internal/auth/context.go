package auth

import (
	"context"
)

type contextKey int

const (
	claimsKey contextKey = iota
)

// Claims returns the user claims from context, or nil if not authenticated.
func Claims(ctx context.Context) *UserClaims {
	claims, _ := ctx.Value(claimsKey).(*UserClaims)
	return claims
}

// Subject returns the user's subject claim from context, or empty string if
// not authenticated.
func Subject(ctx context.Context) string {
	claims := Claims(ctx)
	if claims == nil {
		return ""
	}
	return claims.RegisteredClaims.Subject
}

// Email returns the user's email from context, or empty string if not available.
func Email(ctx context.Context) string {
	claims := Claims(ctx)
	if claims == nil {
		return ""
	}
	return claims.Email
}

// IsAuthenticated returns true if the request has valid authentication.
func IsAuthenticated(ctx context.Context) bool {
	return Claims(ctx) != nil
}
