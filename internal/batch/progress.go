package batch

import (
	"fmt"
	"io"

	"github.com/sravan-dsai/newslens/internal/classify"
)

// ProgressEvent is a single progress update during a batch run.
type ProgressEvent struct {
	Type    string                `json:"type"`              // "start", "chunk", "done", "error"
	Done    int                   `json:"done,omitempty"`    // articles classified so far
	Total   int                   `json:"total,omitempty"`   // articles in the batch
	Message string                `json:"message,omitempty"` // human-readable message
	Results []classify.Prediction `json:"results,omitempty"` // full results (for "done" type)
}

// ProgressEmitter receives progress events during a batch run.
type ProgressEmitter interface {
	Emit(event ProgressEvent)
}

// TextEmitter formats progress events as human-readable text for CLI output.
type TextEmitter struct {
	W io.Writer
}

// Emit writes a formatted progress line to the underlying writer.
func (e *TextEmitter) Emit(ev ProgressEvent) {
	switch ev.Type {
	case "start":
		fmt.Fprintf(e.W, "Classifying %d articles...\n", ev.Total)
	case "chunk":
		fmt.Fprintf(e.W, "  %d/%d articles classified\n", ev.Done, ev.Total)
	case "done":
		fmt.Fprintf(e.W, "Batch analysis complete.\n")
	case "error":
		fmt.Fprintf(e.W, "Error: %s\n", ev.Message)
	}
}
