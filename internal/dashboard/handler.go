// Package dashboard serves the local demo UI and its API endpoints.
package dashboard

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"strings"

	"github.com/sravan-dsai/newslens/internal/classify"
	"github.com/sravan-dsai/newslens/internal/labelmap"
)

//go:embed static
var staticFiles embed.FS

// minArticleLength rejects single inputs too short to classify meaningfully.
const minArticleLength = 10

// Handler serves the web dashboard and API endpoints.
type Handler struct {
	mux        *http.ServeMux
	classifier classify.Classifier
	labels     *labelmap.Map
	provider   string
	model      string
	maxBatch   int
}

// Config holds dashboard dependencies.
type Config struct {
	Classifier   classify.Classifier
	Labels       *labelmap.Map
	Provider     string
	Model        string
	MaxBatchSize int
}

// NewHandler creates a dashboard handler with all routes registered.
func NewHandler(cfg Config) *Handler {
	h := &Handler{
		mux:        http.NewServeMux(),
		classifier: cfg.Classifier,
		labels:     cfg.Labels,
		provider:   cfg.Provider,
		model:      cfg.Model,
		maxBatch:   cfg.MaxBatchSize,
	}

	staticFS, _ := fs.Sub(staticFiles, "static")
	h.mux.Handle("GET /", http.FileServer(http.FS(staticFS)))
	h.mux.HandleFunc("GET /api/health", h.handleHealth)
	h.mux.HandleFunc("GET /api/model", h.handleModel)
	h.mux.HandleFunc("POST /api/classify", h.handleClassify)
	h.mux.HandleFunc("POST /api/batch", h.handleBatch)
	h.mux.HandleFunc("POST /api/export", h.handleExport)

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleModel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"provider":       h.provider,
		"model":          h.model,
		"categories":     h.labels.Names(),
		"max_batch_size": h.maxBatch,
	})
}

type classifyRequest struct {
	Text string `json:"text"`
}

func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if classify.IsBlank(req.Text) {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if len(strings.TrimSpace(req.Text)) < minArticleLength {
		writeError(w, http.StatusUnprocessableEntity, "input is too short, please provide more text")
		return
	}

	predictions, err := h.classifier.Classify(r.Context(), []string{req.Text})
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, predictions[0])
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
