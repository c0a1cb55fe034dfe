package summarizer

import (
	"context"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Input describes the payload for a summary request.
type Input struct {
	// Text contains the original plain text to summarise.
	Text string
	// SourceURL is optional metadata used for logging.
	SourceURL string
	// Provider selects the backend, e.g. ProviderOpenAI.
	Provider string
	// Model overrides the provider's default model when set.
	Model string
	// APIKey is the caller's credential, passed through to the provider.
	APIKey string
}

// Summarizer produces a single summary for a given input text.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
}
