// Package auth provides JWT authentication middleware for the hosted API.
// Tokens are verified against the identity provider's JWKS endpoint.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Config holds identity provider configuration.
type Config struct {
	Issuer   string // e.g., "https://newslens.eu.auth0.com"
	Audience string // API audience identifier
}

// UserClaims represents the JWT claims issued by the identity provider.
type UserClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
}

// Verifier handles JWT verification with JWKS.
type Verifier struct {
	jwks     keyfunc.Keyfunc
	audience string
	issuer   string
}

// NewVerifier creates a JWT verifier for the configured issuer. The JWKS is
// fetched from the issuer's well-known endpoint and refreshed automatically.
func NewVerifier(cfg Config) (*Verifier, error) {
	issuer := strings.TrimSuffix(cfg.Issuer, "/")
	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", issuer)

	jwks, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS keyfunc: %w", err)
	}

	return &Verifier{
		jwks:     jwks,
		audience: cfg.Audience,
		issuer:   issuer,
	}, nil
}

// Verify validates a JWT token and returns the claims.
func (v *Verifier) Verify(tokenString string) (*UserClaims, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, v.jwks.Keyfunc, parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

// Middleware creates HTTP middleware that rejects requests without a valid
// bearer token.
func Middleware(verifier *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				http.Error(w, "Unauthorized: missing token", http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return parts[1]
}
