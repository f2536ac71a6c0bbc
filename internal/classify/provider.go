package classify

import (
	"fmt"

	"github.com/sravan-dsai/newslens/internal/labelmap"
)

// Provider identifies a hosted model provider.
type Provider string

const (
	ProviderHuggingFace Provider = "huggingface"
	ProviderOpenAI      Provider = "openai"
)

// Options configures provider construction.
type Options struct {
	Model   string // provider-specific model ID; empty selects the default
	APIKey  string // overrides the provider's environment variable
	BaseURL string // overrides the provider's API endpoint
}

// New creates a classifier for the given provider.
func New(provider Provider, labels *labelmap.Map, opts Options) (Classifier, error) {
	switch provider {
	case ProviderHuggingFace, "":
		return NewHuggingFace(labels, opts)
	case ProviderOpenAI:
		return NewOpenAI(labels, opts)
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: huggingface, openai)", provider)
	}
}
