package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/sravan-dsai/newslens/internal/batch"
	"github.com/sravan-dsai/newslens/internal/billing"
	"github.com/sravan-dsai/newslens/internal/database"
	"github.com/sravan-dsai/newslens/internal/parser"
	"github.com/sravan-dsai/newslens/internal/results"
)

const maxUploadBytes = 10 << 20

// handleClassify classifies a single article. The result is persisted so the
// call counts against the user's monthly quota.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	if !s.checkQuota(w, r, user, 1) {
		return
	}

	preds, err := s.classifier.Classify(r.Context(), []string{req.Text})
	if err != nil {
		writeError(w, http.StatusBadGateway, "classification failed")
		return
	}

	if _, err := s.db.CreateBatch(r.Context(), database.CreateBatchParams{
		UserID:     user.ID,
		SourceName: "api",
		Results:    preds,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store result")
		return
	}

	writeJSON(w, http.StatusOK, preds[0])
}

// handleCreateBatch runs the batch pipeline over texts supplied as JSON or
// as an uploaded .txt/.csv file and stores the results.
func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	sourceName, texts, ok := s.readBatchInput(w, r)
	if !ok {
		return
	}
	if len(texts) == 0 {
		writeError(w, http.StatusBadRequest, "no texts to classify")
		return
	}

	maxBatch := s.maxBatchSize
	if maxBatch <= 0 {
		maxBatch = batch.DefaultMaxBatchSize
	}
	if len(texts) > maxBatch {
		texts = texts[:maxBatch]
	}

	if !s.checkQuota(w, r, user, len(texts)) {
		return
	}

	preds, err := batch.Run(r.Context(), batch.Params{
		Texts:        texts,
		MaxBatchSize: maxBatch,
		Classifier:   s.classifier,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, "classification failed")
		return
	}

	stored, err := s.db.CreateBatch(r.Context(), database.CreateBatchParams{
		UserID:     user.ID,
		SourceName: sourceName,
		Results:    preds,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store batch")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":            stored.ID,
		"source_name":   stored.SourceName,
		"article_count": stored.ArticleCount,
		"created_at":    stored.CreatedAt,
		"results":       stored.Results,
	})
}

// readBatchInput extracts the texts for a batch run. Multipart requests carry
// an uploaded file in the "file" field; everything else is treated as JSON.
func (s *Server) readBatchInput(w http.ResponseWriter, r *http.Request) (string, []string, bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return "", nil, false
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file field")
			return "", nil, false
		}
		defer file.Close()

		texts, err := parser.ParseUpload(header.Filename, file)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return "", nil, false
		}
		return header.Filename, texts, true
	}

	var req struct {
		SourceName string   `json:"source_name"`
		Texts      []string `json:"texts"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return "", nil, false
	}
	return req.SourceName, req.Texts, true
}

// checkQuota enforces the user's monthly article quota for n more articles.
func (s *Server) checkQuota(w http.ResponseWriter, r *http.Request, user *database.User, n int) bool {
	err := s.usageChecker.CheckQuota(r.Context(), user.ID, n)
	if err == nil {
		return true
	}
	if billing.IsLimitExceeded(err) {
		writeError(w, http.StatusPaymentRequired, err.Error())
		return false
	}
	writeError(w, http.StatusInternalServerError, "failed to check usage")
	return false
}

// handleListBatches returns the user's stored batches, newest first.
func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	limit, offset := parsePagination(r)
	batches, err := s.db.ListUserBatches(r.Context(), user.ID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list batches")
		return
	}
	if batches == nil {
		batches = []database.BatchSummary{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"batches": batches,
		"limit":   limit,
		"offset":  offset,
	})
}

// handleGetBatch returns a stored batch with its full results.
func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	b, ok := s.requireBatch(w, r, user)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":            b.ID,
		"source_name":   b.SourceName,
		"article_count": b.ArticleCount,
		"created_at":    b.CreatedAt,
		"results":       b.Results,
	})
}

// handleDeleteBatch deletes one of the user's stored batches.
func (s *Server) handleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	b, ok := s.requireBatch(w, r, user)
	if !ok {
		return
	}

	if err := s.db.DeleteBatch(r.Context(), b.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete batch")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleExportBatch streams a stored batch as a CSV download.
func (s *Server) handleExportBatch(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	b, ok := s.requireBatch(w, r, user)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := results.WriteCSV(&buf, b.Results); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode results")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "batch_"+b.ID.String()+".csv"))
	_, _ = w.Write(buf.Bytes())
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		fmt.Sscanf(v, "%d", &offset)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
