package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sravan-dsai/newslens/internal/classify"
	"github.com/sravan-dsai/newslens/internal/labelmap"
)

// stubClassifier returns a fixed category for every non-blank input.
type stubClassifier struct {
	category string
	err      error
}

func (s *stubClassifier) Classify(ctx context.Context, texts []string) ([]classify.Prediction, error) {
	if s.err != nil {
		return nil, s.err
	}
	results := make([]classify.Prediction, len(texts))
	for i, text := range texts {
		if classify.IsBlank(text) {
			results[i] = classify.Invalid(text)
			continue
		}
		results[i] = classify.Prediction{
			Text:          text,
			Category:      s.category,
			Confidence:    0.9,
			Probabilities: map[string]float64{s.category: 0.9, "World": 0.1},
		}
	}
	return results, nil
}

func testHandler(t *testing.T, c classify.Classifier) *Handler {
	t.Helper()
	labels, err := labelmap.Parse([]byte(`{"World": 0, "Sports": 1, "Business": 2, "Sci/Tech": 3}`))
	require.NoError(t, err)
	return NewHandler(Config{
		Classifier:   c,
		Labels:       labels,
		Provider:     "huggingface",
		Model:        "test-model",
		MaxBatchSize: 100,
	})
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(testHandler(t, &stubClassifier{category: "Sports"}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestModelInfo(t *testing.T) {
	srv := httptest.NewServer(testHandler(t, &stubClassifier{category: "Sports"}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/model")
	require.NoError(t, err)
	defer resp.Body.Close()

	var info struct {
		Provider   string   `json:"provider"`
		Model      string   `json:"model"`
		Categories []string `json:"categories"`
		MaxBatch   int      `json:"max_batch_size"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "huggingface", info.Provider)
	assert.Equal(t, "test-model", info.Model)
	assert.Equal(t, []string{"World", "Sports", "Business", "Sci/Tech"}, info.Categories)
	assert.Equal(t, 100, info.MaxBatch)
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func TestClassify(t *testing.T) {
	srv := httptest.NewServer(testHandler(t, &stubClassifier{category: "Sci/Tech"}))
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/classify", map[string]string{
		"text": "NASA launches new satellite into orbit",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pred classify.Prediction
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pred))
	assert.Equal(t, "Sci/Tech", pred.Category)
	assert.Greater(t, pred.Confidence, 0.5)
}

func TestClassify_EmptyText(t *testing.T) {
	srv := httptest.NewServer(testHandler(t, &stubClassifier{category: "Sports"}))
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/classify", map[string]string{"text": "   "})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClassify_TooShort(t *testing.T) {
	srv := httptest.NewServer(testHandler(t, &stubClassifier{category: "Sports"}))
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/classify", map[string]string{"text": "too short"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestClassify_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(testHandler(t, &stubClassifier{category: "Sports"}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/classify", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClassify_ModelError(t *testing.T) {
	srv := httptest.NewServer(testHandler(t, &stubClassifier{err: fmt.Errorf("model is loading")}))
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/classify", map[string]string{
		"text": "a sufficiently long article text",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "model is loading")
}

func TestExport(t *testing.T) {
	srv := httptest.NewServer(testHandler(t, &stubClassifier{category: "Sports"}))
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/export", map[string]any{
		"results": []classify.Prediction{
			{Text: "a", Category: "Sports", Confidence: 0.9, Probabilities: map[string]float64{"Sports": 0.9}},
		},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text,predicted_category,confidence,raw_probabilities")
	assert.Contains(t, buf.String(), "Sports")
}

func TestExport_Empty(t *testing.T) {
	srv := httptest.NewServer(testHandler(t, &stubClassifier{category: "Sports"}))
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/export", map[string]any{"results": []classify.Prediction{}})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
