package summarizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"newsbrief/internal/domain"
)

const (
	openAIDefaultModel = "gpt-3.5-turbo-0125"
	geminiDefaultModel = "gemini-1.5-flash-latest"
	geminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta/openai/"

	maxInputRunes     = 60000
	defaultMaxRetries = 1
)

type provider struct {
	baseURL      string
	defaultModel string
}

type OpenAIConfig struct {
	// Prompt is prepended to the article text.
	Prompt string
	// BaseURLs overrides the endpoint per provider.
	BaseURLs   map[string]string
	HTTPClient *http.Client
	MaxRetries *int
}

// OpenAISummarizer calls the Chat Completions API of OpenAI or of any
// provider exposing an OpenAI-compatible endpoint. A client is built per
// call because the credential comes with each request.
type OpenAISummarizer struct {
	prompt     string
	providers  map[string]provider
	httpClient *http.Client
	maxRetries int
}

func NewOpenAISummarizer(cfg OpenAIConfig) (*OpenAISummarizer, error) {
	prompt := strings.TrimSpace(cfg.Prompt)
	if prompt == "" {
		return nil, errors.New("prompt is empty")
	}

	providers := map[string]provider{
		ProviderOpenAI: {defaultModel: openAIDefaultModel},
		ProviderGemini: {baseURL: geminiBaseURL, defaultModel: geminiDefaultModel},
	}
	for name, baseURL := range cfg.BaseURLs {
		p, ok := providers[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, name)
		}
		p.baseURL = baseURL
		providers[name] = p
	}

	maxRetries := defaultMaxRetries
	if cfg.MaxRetries != nil {
		maxRetries = *cfg.MaxRetries
	}

	return &OpenAISummarizer{
		prompt:     prompt,
		providers:  providers,
		httpClient: cfg.HTTPClient,
		maxRetries: maxRetries,
	}, nil
}

// Summarize produces the summary of input.Text with the selected provider.
func (s *OpenAISummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return "", fmt.Errorf("%w: input is empty", domain.ErrBackend)
	}

	providerName := strings.ToLower(strings.TrimSpace(input.Provider))
	p, ok := s.providers[providerName]
	if !ok {
		return "", fmt.Errorf("%w: %w: %q", domain.ErrBackend, domain.ErrUnsupportedProvider, input.Provider)
	}

	apiKey := strings.TrimSpace(input.APIKey)
	if apiKey == "" {
		return "", fmt.Errorf("%w: API key is empty (provider = %s)", domain.ErrBackend, providerName)
	}

	model := strings.TrimSpace(input.Model)
	if model == "" {
		model = p.defaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(s.maxRetries),
	}
	if p.baseURL != "" {
		opts = append(opts, option.WithBaseURL(p.baseURL))
	}
	if s.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(s.httpClient))
	}

	client := openai.NewClient(opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(buildPrompt(s.prompt, text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: do request (provider = %s, model = %s): %w",
			domain.ErrBackend, providerName, model, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned (provider = %s, model = %s)",
			domain.ErrBackend, providerName, model)
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("%w: output text is missing (finishReason = %s)",
			domain.ErrBackend, resp.Choices[0].FinishReason)
	}

	return summary, nil
}

// buildPrompt flattens the article onto one line after the instructions.
func buildPrompt(instructions string, text string) string {
	runes := []rune(text)
	if len(runes) > maxInputRunes {
		text = string(runes[:maxInputRunes])
	}

	prompt := instructions + " " + text
	prompt = strings.ReplaceAll(prompt, "\r", "")

	return strings.ReplaceAll(prompt, "\n", " ")
}
