package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultGeminiModel = "gemini-2.5-flash"
	geminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta/openai"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint,
// including Gemini's compatibility layer.
type OpenAIClient struct {
	client   *openai.Client
	provider string
	model    string
	cfg      Config
}

// NewOpenAIClient creates a client for the openai or gemini provider.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}

	model := cfg.Model
	baseURL := cfg.BaseURL
	if provider == ProviderGemini {
		if model == "" {
			model = defaultGeminiModel
		}
		if baseURL == "" {
			baseURL = geminiBaseURL
		}
	}
	if model == "" {
		model = defaultOpenAIModel
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if baseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.timeout()}

	return &OpenAIClient{
		client:   openai.NewClientWithConfig(clientConfig),
		provider: provider,
		model:    model,
		cfg:      cfg,
	}
}

// Complete sends req as a system + user message pair.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.cfg.maxTokens(req.MaxTokens),
		Temperature: float32(c.cfg.temperature()),
	})
	if err != nil {
		return "", c.classify(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fatalError(c.provider, errors.New("empty response"))
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) classify(err error) *Error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return statusError(c.provider, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return statusError(c.provider, reqErr.HTTPStatusCode, err)
	}
	return transportError(c.provider, err)
}
