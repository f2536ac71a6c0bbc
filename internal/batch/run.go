// Package batch runs the classifier over article collections with progress
// reporting.
package batch

import (
	"context"
	"fmt"

	"github.com/sravan-dsai/newslens/internal/classify"
)

// DefaultMaxBatchSize caps how many articles a single run processes.
const DefaultMaxBatchSize = 100

// chunkDivisor sets the progress granularity: a run is split into roughly
// n/chunkDivisor chunks. Chunking exists only to drive the progress
// indicator; boundaries never affect per-item results.
const chunkDivisor = 10

// Params configures a batch run.
type Params struct {
	Texts        []string
	MaxBatchSize int // 0 means DefaultMaxBatchSize
	Classifier   classify.Classifier
	Emitter      ProgressEmitter
}

// Run classifies the input articles chunk by chunk, emitting a progress
// event after each chunk, and returns one prediction per processed article
// in input order. Inputs beyond MaxBatchSize are dropped, matching the
// "only processing the first N" behavior of the settings cap.
func Run(ctx context.Context, p Params) ([]classify.Prediction, error) {
	if p.Classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}

	maxSize := p.MaxBatchSize
	if maxSize <= 0 {
		maxSize = DefaultMaxBatchSize
	}

	texts := p.Texts
	if len(texts) > maxSize {
		texts = texts[:maxSize]
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("no articles to classify")
	}

	emit(p.Emitter, ProgressEvent{Type: "start", Total: len(texts)})

	results := make([]classify.Prediction, 0, len(texts))
	for _, chunk := range chunks(texts) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		predictions, err := p.Classifier.Classify(ctx, chunk)
		if err != nil {
			return nil, err
		}
		results = append(results, predictions...)

		emit(p.Emitter, ProgressEvent{
			Type:    "chunk",
			Done:    len(results),
			Total:   len(texts),
			Message: fmt.Sprintf("Processing... %d/%d articles classified.", len(results), len(texts)),
		})
	}

	return results, nil
}

// chunks splits texts into max(1, n/chunkDivisor) near-equal slices.
func chunks(texts []string) [][]string {
	n := len(texts)
	count := n / chunkDivisor
	if count < 1 {
		count = 1
	}

	out := make([][]string, 0, count)
	base := n / count
	extra := n % count
	start := 0
	for i := 0; i < count; i++ {
		size := base
		if i < extra {
			size++
		}
		out = append(out, texts[start:start+size])
		start += size
	}
	return out
}

func emit(e ProgressEmitter, ev ProgressEvent) {
	if e != nil {
		e.Emit(ev)
	}
}
