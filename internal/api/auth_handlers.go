package api

import (
	"net/http"

	"github.com/sravan-dsai/newslens/internal/auth"
)

// handleAuthSync syncs the authenticated user to the database.
// This should be called after login to ensure the user exists in our DB.
func (s *Server) handleAuthSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := auth.Claims(ctx)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	subject := claims.Subject
	email := claims.Email

	if email == "" {
		writeError(w, http.StatusBadRequest, "email not available in token")
		return
	}

	user, err := s.db.GetOrCreateUser(ctx, subject, email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sync user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":         user.ID,
		"subject":    user.AuthSubject,
		"email":      user.Email,
		"tier":       user.Tier,
		"created_at": user.CreatedAt,
	})
}

// handleGetMe returns the current user's information.
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := auth.Claims(ctx)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := s.db.GetUserBySubject(ctx, claims.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found - call /api/auth/sync first")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":         user.ID,
		"subject":    user.AuthSubject,
		"email":      user.Email,
		"name":       claims.Name,
		"tier":       user.Tier,
		"created_at": user.CreatedAt,
	})
}
