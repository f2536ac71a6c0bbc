package batch

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sravan-dsai/newslens/internal/classify"
)

// fakeClassifier labels every non-blank text "Sports" and records call sizes.
type fakeClassifier struct {
	callSizes []int
	err       error
}

func (f *fakeClassifier) Classify(ctx context.Context, texts []string) ([]classify.Prediction, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.callSizes = append(f.callSizes, len(texts))
	results := make([]classify.Prediction, len(texts))
	for i, text := range texts {
		if classify.IsBlank(text) {
			results[i] = classify.Invalid(text)
			continue
		}
		results[i] = classify.Prediction{
			Text:          text,
			Category:      "Sports",
			Confidence:    0.9,
			Probabilities: map[string]float64{"Sports": 0.9, "World": 0.1},
		}
	}
	return results, nil
}

// collectEmitter records every emitted event.
type collectEmitter struct {
	events []ProgressEvent
}

func (c *collectEmitter) Emit(ev ProgressEvent) {
	c.events = append(c.events, ev)
}

func makeTexts(n int) []string {
	texts := make([]string, n)
	for i := range texts {
		texts[i] = fmt.Sprintf("article %d", i)
	}
	return texts
}

func TestRun_PreservesLengthAndOrder(t *testing.T) {
	texts := makeTexts(25)
	fc := &fakeClassifier{}

	results, err := Run(context.Background(), Params{Texts: texts, Classifier: fc})
	require.NoError(t, err)
	require.Len(t, results, 25)

	for i, r := range results {
		assert.Equal(t, texts[i], r.Text)
	}
}

func TestRun_ChunkCount(t *testing.T) {
	fc := &fakeClassifier{}
	_, err := Run(context.Background(), Params{Texts: makeTexts(50), Classifier: fc})
	require.NoError(t, err)

	// 50 articles -> 5 chunks of 10.
	assert.Len(t, fc.callSizes, 5)
	total := 0
	for _, size := range fc.callSizes {
		total += size
	}
	assert.Equal(t, 50, total)
}

func TestRun_SmallBatchSingleChunk(t *testing.T) {
	fc := &fakeClassifier{}
	_, err := Run(context.Background(), Params{Texts: makeTexts(7), Classifier: fc})
	require.NoError(t, err)
	assert.Equal(t, []int{7}, fc.callSizes)
}

func TestRun_CapsAtMaxBatchSize(t *testing.T) {
	fc := &fakeClassifier{}
	results, err := Run(context.Background(), Params{
		Texts:        makeTexts(30),
		MaxBatchSize: 12,
		Classifier:   fc,
	})
	require.NoError(t, err)
	assert.Len(t, results, 12)
	assert.Equal(t, "article 0", results[0].Text)
	assert.Equal(t, "article 11", results[11].Text)
}

func TestRun_DefaultMaxBatchSize(t *testing.T) {
	fc := &fakeClassifier{}
	results, err := Run(context.Background(), Params{Texts: makeTexts(150), Classifier: fc})
	require.NoError(t, err)
	assert.Len(t, results, DefaultMaxBatchSize)
}

func TestRun_ProgressEvents(t *testing.T) {
	emitter := &collectEmitter{}
	_, err := Run(context.Background(), Params{
		Texts:      makeTexts(20),
		Classifier: &fakeClassifier{},
		Emitter:    emitter,
	})
	require.NoError(t, err)

	require.NotEmpty(t, emitter.events)
	assert.Equal(t, "start", emitter.events[0].Type)
	assert.Equal(t, 20, emitter.events[0].Total)

	var chunkEvents []ProgressEvent
	for _, ev := range emitter.events[1:] {
		assert.Equal(t, "chunk", ev.Type)
		chunkEvents = append(chunkEvents, ev)
	}
	require.Len(t, chunkEvents, 2)
	assert.Equal(t, 10, chunkEvents[0].Done)
	assert.Equal(t, 20, chunkEvents[1].Done)
}

func TestRun_ErrorPropagates(t *testing.T) {
	emitter := &collectEmitter{}
	_, err := Run(context.Background(), Params{
		Texts:      makeTexts(3),
		Classifier: &fakeClassifier{err: fmt.Errorf("model unavailable")},
		Emitter:    emitter,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")

	// No results, so no chunk or done events after the start event.
	for _, ev := range emitter.events {
		assert.Equal(t, "start", ev.Type)
	}
}

func TestRun_EmptyInput(t *testing.T) {
	_, err := Run(context.Background(), Params{Texts: nil, Classifier: &fakeClassifier{}})
	assert.Error(t, err)
}

func TestRun_NilClassifier(t *testing.T) {
	_, err := Run(context.Background(), Params{Texts: makeTexts(1)})
	assert.Error(t, err)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Params{Texts: makeTexts(5), Classifier: &fakeClassifier{}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChunks_NearEqual(t *testing.T) {
	out := chunks(makeTexts(23))
	// 23/10 -> 2 chunks: 12 and 11.
	require.Len(t, out, 2)
	assert.Len(t, out[0], 12)
	assert.Len(t, out[1], 11)
}
