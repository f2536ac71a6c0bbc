package api

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/sravan-dsai/newslens/internal/auth"
	"github.com/sravan-dsai/newslens/internal/database"
)

// getCurrentUser resolves the authenticated user from the request claims.
func (s *Server) getCurrentUser(r *http.Request) (*database.User, error) {
	ctx := r.Context()
	subject := auth.Subject(ctx)
	if subject == "" {
		return nil, fmt.Errorf("not authenticated")
	}

	user, err := s.db.GetUserBySubject(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("database error")
	}
	if user == nil {
		return nil, fmt.Errorf("user not found - call /api/auth/sync first")
	}

	return user, nil
}

// requireUser validates the request is authenticated and the user exists.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (*database.User, bool) {
	user, err := s.getCurrentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return nil, false
	}
	return user, true
}

// requireBatch validates the "batchID" path parameter and checks the batch
// belongs to the given user.
func (s *Server) requireBatch(w http.ResponseWriter, r *http.Request, user *database.User) (*database.Batch, bool) {
	batchID, err := uuid.Parse(r.PathValue("batchID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid batch ID")
		return nil, false
	}

	batch, err := s.db.GetBatchByID(r.Context(), batchID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error")
		return nil, false
	}
	if batch == nil || batch.UserID != user.ID {
		writeError(w, http.StatusNotFound, "batch not found")
		return nil, false
	}

	return batch, true
}
