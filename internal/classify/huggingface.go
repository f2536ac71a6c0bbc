package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"golang.org/x/time/rate"

	"github.com/sravan-dsai/newslens/internal/labelmap"
)

const (
	defaultHFBaseURL = "https://api-inference.huggingface.co/models"
	defaultHFModel   = "sravan-dsai/distilbert-ag-news"

	// The free inference endpoint throttles aggressively; stay under it.
	hfRequestsPerSecond = 2
	hfBurst             = 4
)

// HuggingFace classifies text via the HuggingFace Inference API.
type HuggingFace struct {
	apiKey     string
	baseURL    string
	model      string
	labels     *labelmap.Map
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHuggingFace creates a HuggingFace inference client. The API key is taken
// from options or the HF_API_TOKEN environment variable; the public endpoint
// also accepts anonymous requests at a lower rate limit.
func NewHuggingFace(labels *labelmap.Map, opts Options) (*HuggingFace, error) {
	if labels == nil {
		return nil, fmt.Errorf("label map is required")
	}

	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("HF_API_TOKEN")
	}

	model := opts.Model
	if model == "" {
		model = defaultHFModel
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultHFBaseURL
	}

	return &HuggingFace{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		labels:     labels,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(hfRequestsPerSecond), hfBurst),
	}, nil
}

// Model returns the model ID this client queries.
func (h *HuggingFace) Model() string {
	return h.model
}

// hfRequest is the inference API request body.
type hfRequest struct {
	Inputs  []string  `json:"inputs"`
	Options hfOptions `json:"options"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// hfScore is one label/score pair; the API returns one list per input.
type hfScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type hfError struct {
	Error string `json:"error"`
}

// Classify sends the non-blank texts to the inference endpoint and returns
// one prediction per input, in input order. Blank inputs become the sentinel
// without touching the API. Model errors propagate unretried.
func (h *HuggingFace) Classify(ctx context.Context, texts []string) ([]Prediction, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	valid, positions := splitBlank(texts)
	if len(valid) == 0 {
		return assemble(texts, nil, nil), nil
	}

	scores, err := h.infer(ctx, valid)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(valid) {
		return nil, fmt.Errorf("model returned %d results for %d inputs", len(scores), len(valid))
	}

	predicted := make([]Prediction, len(valid))
	for i, perInput := range scores {
		probs := make(map[string]float64, len(perInput))
		for _, s := range perInput {
			probs[h.labels.Resolve(s.Label)] = s.Score
		}
		category, confidence := normalize(probs)
		predicted[i] = Prediction{
			Text:          valid[i],
			Category:      category,
			Confidence:    confidence,
			Probabilities: probs,
		}
	}

	return assemble(texts, positions, predicted), nil
}

func (h *HuggingFace) infer(ctx context.Context, inputs []string) ([][]hfScore, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(hfRequest{
		Inputs:  inputs,
		Options: hfOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", h.baseURL, h.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr hfError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("inference API error (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("inference API error (status %d)", resp.StatusCode)
	}

	var scores [][]hfScore
	if err := json.Unmarshal(respBody, &scores); err != nil {
		return nil, fmt.Errorf("failed to parse inference response: %w", err)
	}
	return scores, nil
}
