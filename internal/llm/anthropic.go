package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultAnthropicURL   = "https://api.anthropic.com/v1/messages"
	defaultAnthropicModel = "claude-sonnet-4-20250514"
	anthropicVersion      = "2023-06-01"
)

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	apiKey      string
	model       string
	apiURL      string
	httpClient  *http.Client
	temperature float64
	cfg         Config
}

// NewAnthropicClient creates a new Anthropic API client
func NewAnthropicClient(cfg Config) *AnthropicClient {
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	apiURL := cfg.BaseURL
	if apiURL == "" {
		apiURL = defaultAnthropicURL
	}

	return &AnthropicClient{
		apiKey:      cfg.APIKey,
		model:       model,
		apiURL:      apiURL,
		temperature: cfg.temperature(),
		cfg:         cfg,
		httpClient: &http.Client{
			Timeout: cfg.timeout(),
		},
	}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends req as a single user turn and returns the concatenated text blocks.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	body := anthropicRequest{
		Model:       c.model,
		MaxTokens:   c.cfg.maxTokens(req.MaxTokens),
		Temperature: c.temperature,
		System:      req.System,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.Prompt},
		},
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return "", fatalError(ProviderAnthropic, fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", fatalError(ProviderAnthropic, fmt.Errorf("failed to create request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", transportError(ProviderAnthropic, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(ProviderAnthropic, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", statusError(ProviderAnthropic, resp.StatusCode, errors.New(apiErrorMessage(respBody)))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fatalError(ProviderAnthropic, fmt.Errorf("failed to unmarshal response: %w", err))
	}

	if apiResp.Error != nil {
		return "", fatalError(ProviderAnthropic, fmt.Errorf("API error: %s - %s", apiResp.Error.Type, apiResp.Error.Message))
	}

	var text strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fatalError(ProviderAnthropic, errors.New("empty response from API"))
	}

	return text.String(), nil
}

// apiErrorMessage pulls the message out of an Anthropic error body, falling
// back to the raw body.
func apiErrorMessage(body []byte) string {
	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		return parsed.Error.Type + ": " + parsed.Error.Message
	}
	return string(body)
}
