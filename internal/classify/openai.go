package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/sravan-dsai/newslens/internal/labelmap"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAI classifies text zero-shot via chat completions: the model is asked
// for a JSON object of per-category probabilities.
type OpenAI struct {
	apiKey     string
	baseURL    string
	model      string
	labels     *labelmap.Map
	httpClient *http.Client
}

// NewOpenAI creates an OpenAI zero-shot classifier. Requires OPENAI_API_KEY
// unless the key is passed in options.
func NewOpenAI(labels *labelmap.Map, opts Options) (*OpenAI, error) {
	if labels == nil {
		return nil, fmt.Errorf("label map is required")
	}

	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable required")
	}

	model := opts.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	return &OpenAI{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		labels:     labels,
		httpClient: &http.Client{},
	}, nil
}

// Model returns the model ID this client queries.
func (o *OpenAI) Model() string {
	return o.model
}

type openAIRequest struct {
	Model          string               `json:"model"`
	Messages       []openAIMessage      `json:"messages"`
	Temperature    float64              `json:"temperature"`
	ResponseFormat openAIResponseFormat `json:"response_format"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
}

type openAIChoice struct {
	Message openAIMessage `json:"message"`
}

// Classify sends each non-blank text through a zero-shot prompt. One request
// per text keeps the probability JSON unambiguous; order is preserved and
// blank inputs become the sentinel locally.
func (o *OpenAI) Classify(ctx context.Context, texts []string) ([]Prediction, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	valid, positions := splitBlank(texts)
	predicted := make([]Prediction, len(valid))
	for i, text := range valid {
		probs, err := o.classifyOne(ctx, text)
		if err != nil {
			return nil, err
		}
		category, confidence := normalize(probs)
		predicted[i] = Prediction{
			Text:          text,
			Category:      category,
			Confidence:    confidence,
			Probabilities: probs,
		}
	}

	return assemble(texts, positions, predicted), nil
}

func (o *OpenAI) classifyOne(ctx context.Context, text string) (map[string]float64, error) {
	names := o.labels.Names()
	prompt := fmt.Sprintf(
		"Classify the news article below into exactly these categories: %s.\n"+
			"Respond with a JSON object mapping every category to its probability. "+
			"Probabilities must sum to 1.\n\nArticle:\n%s",
		strings.Join(names, ", "), text,
	)

	body, err := json.Marshal(openAIRequest{
		Model: o.model,
		Messages: []openAIMessage{
			{Role: "system", Content: "You are a precise news article classifier. Reply with JSON only."},
			{Role: "user", Content: prompt},
		},
		Temperature:    0,
		ResponseFormat: openAIResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", o.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	return o.parseProbabilities(parsed.Choices[0].Message.Content)
}

// parseProbabilities extracts the category distribution from the model's
// JSON reply. Categories the model skipped get probability 0; categories it
// invented are dropped.
func (o *OpenAI) parseProbabilities(content string) (map[string]float64, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw map[string]float64
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return nil, fmt.Errorf("model did not return a probability object: %w", err)
	}

	probs := make(map[string]float64, o.labels.Len())
	for _, name := range o.labels.Names() {
		probs[name] = raw[name]
	}
	return probs, nil
}
