package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sravan-dsai/newslens/internal/batch"
	"github.com/sravan-dsai/newslens/internal/classify"
	"github.com/sravan-dsai/newslens/internal/parser"
	"github.com/sravan-dsai/newslens/internal/results"
)

// maxUploadBytes bounds multipart uploads held in memory.
const maxUploadBytes = 10 << 20

// handleBatch accepts a multipart upload, runs the batch pipeline, and
// streams progress as Server-Sent Events. The final "done" event carries the
// full result list; failures surface as an "error" event on the stream.
func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field required")
		return
	}
	defer file.Close()

	texts, err := parser.ParseUpload(header.Filename, file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(texts) == 0 {
		writeError(w, http.StatusBadRequest, "no articles found in file")
		return
	}

	maxSize := h.maxBatch
	if v := r.FormValue("max_batch_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid max_batch_size")
			return
		}
		maxSize = n
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	emitter := NewSSEEmitter(w)
	if emitter == nil {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	predictions, err := batch.Run(r.Context(), batch.Params{
		Texts:        texts,
		MaxBatchSize: maxSize,
		Classifier:   h.classifier,
		Emitter:      emitter,
	})
	if err != nil {
		emitter.Emit(batch.ProgressEvent{Type: "error", Message: err.Error()})
		return
	}

	emitter.Emit(batch.ProgressEvent{
		Type:    "done",
		Done:    len(predictions),
		Total:   len(predictions),
		Results: predictions,
	})
}

type exportRequest struct {
	Results []classify.Prediction `json:"results"`
}

// handleExport converts a result collection into a downloadable CSV.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Results) == 0 {
		writeError(w, http.StatusBadRequest, "results are required")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="news_classification_results.csv"`)
	if err := results.WriteCSV(w, req.Results); err != nil {
		// Headers are already sent; the truncated body is the best signal left.
		fmt.Fprintf(w, "\nexport failed: %s\n", err)
	}
}
