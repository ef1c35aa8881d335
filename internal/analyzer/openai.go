package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"health-report/internal/config"
)

const defaultBaseURL = "https://api.openai.com/v1"

var (
	ErrNoChoices    = errors.New("no choices in response")
	ErrEmptyContent = errors.New("empty content in response")
)

// OpenAI talks to any OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	APIKey              string
	BaseURL             string // API base URL, supports OpenAI-compatible endpoints
	Model               string
	Temperature         float64
	MaxCompletionTokens int
	SystemPrompt        string

	client *http.Client
}

type ChatRequest struct {
	Model               string    `json:"model"`
	Messages            []Message `json:"messages"`
	Temperature         float64   `json:"temperature"`
	MaxCompletionTokens int       `json:"max_completion_tokens,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatResponse struct {
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// NewOpenAI builds a client from the openai config section.
// A zero timeout leaves the call bounded only by the caller's context.
func NewOpenAI(cfg config.OpenAIConfig) (*OpenAI, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = config.DefaultSystemPrompt
	}

	return &OpenAI{
		APIKey:              cfg.APIKey,
		BaseURL:             baseURL,
		Model:               cfg.Model,
		Temperature:         cfg.Temperature,
		MaxCompletionTokens: cfg.MaxCompletionTokens,
		SystemPrompt:        systemPrompt,
		client:              &http.Client{Timeout: timeout},
	}, nil
}

// Analyze sends prompt as the user message and returns the first choice's text.
// It makes exactly one request.
func (o *OpenAI) Analyze(ctx context.Context, prompt string) (string, error) {
	req := ChatRequest{
		Model:               o.Model,
		Temperature:         o.Temperature,
		MaxCompletionTokens: o.MaxCompletionTokens,
		Messages: []Message{
			{Role: "system", Content: o.SystemPrompt},
			{Role: "user", Content: prompt},
		},
	}
	return o.callAPI(ctx, req)
}

func (o *OpenAI) callAPI(ctx context.Context, req ChatRequest) (string, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/chat/completions", o.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", o.APIKey))

	client := o.client
	if client == nil {
		client = &http.Client{}
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", ErrNoChoices
	}

	content := chatResp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}

	logRequest(o.Model, time.Since(start), len(content))
	return content, nil
}
