package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	openAIEndpoint     = "https://api.openai.com/v1/chat/completions"
	DefaultOpenAIModel = "gpt-4o-mini"
)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	TopP        float32       `json:"top_p"`
	MaxTokens   int32         `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenAIProvider implements Generator against the chat completions API.
// OpenAI has no top-k setting; the profile's TopK is ignored.
type OpenAIProvider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewOpenAIProvider returns a provider using the public endpoint. The 30s
// client timeout guards against stalled connections; context cancellation is
// still honoured.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIProvider{
		apiKey:   apiKey,
		model:    model,
		endpoint: openAIEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// WithEndpoint points the provider at another compatible endpoint.
func (p *OpenAIProvider) WithEndpoint(endpoint string) *OpenAIProvider {
	p.endpoint = endpoint
	return p
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(p.apiKey) == "" {
		return "", backendErr("openai", fmt.Errorf("missing api key"))
	}

	reqBody, err := json.Marshal(chatRequest{
		Model:       p.model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Profile.Temperature,
		TopP:        req.Profile.TopP,
		MaxTokens:   req.Profile.MaxOutputTokens,
	})
	if err != nil {
		return "", backendErr("openai", fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", backendErr("openai", fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", backendErr("openai", fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", backendErr("openai", fmt.Errorf("read response: %w", err))
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", backendErr("openai", fmt.Errorf("unmarshal response (status %d): %w", resp.StatusCode, err))
	}
	if cr.Error != nil {
		return "", backendErr("openai", fmt.Errorf("api error: %s", cr.Error.Message))
	}
	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return "", backendErr("openai", ErrEmptyResponse)
	}
	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}
