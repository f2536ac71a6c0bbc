package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// WithClaims returns a new context with the given claims.
// This is primarily for testing purposes.
func WithClaims(ctx context.Context, claims *UserClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// NewTestClaims creates a UserClaims with the given subject and email.
// This is primarily for testing purposes.
func NewTestClaims(subject, email string) *UserClaims {
	return &UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: subject,
		},
		Email: email,
	}
}
