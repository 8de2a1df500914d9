// Package gateway holds the two external-service clients the orchestration
// core depends on: the completion backend (Model Gateway) and web search
// (Search Gateway). Both are pure transports; routing and fallback decisions
// live with their callers.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/polymath-ai/polymath/config"
	"github.com/polymath-ai/polymath/internal/telemetry"
)

// Completion is the result of one completion call.
type Completion struct {
	Text       string
	TokensUsed int
}

// Completer is the call interface the orchestration core programs against.
// Implemented by LLMClient; tests substitute mocks.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (Completion, error)
}

// Streamer is the streaming variant of Completer.
type Streamer interface {
	CompleteStream(ctx context.Context, system, user string, temperature float64, maxTokens int) (<-chan StreamChunk, error)
}

// LLMClient talks to an OpenAI-compatible chat completions endpoint.
type LLMClient struct {
	cfg       config.LLMConfig
	client    *http.Client
	telemetry *telemetry.Telemetry
}

// NewLLMClient creates a completion client. The API key must already be
// validated at startup; an empty key here is a programming error surfaced on
// first call.
func NewLLMClient(cfg config.LLMConfig, tele *telemetry.Telemetry) *LLMClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &LLMClient{
		cfg:       cfg,
		client:    &http.Client{Timeout: timeout},
		telemetry: tele,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one completion request and returns the generated text with
// its token count. Temperature and token budget are caller-supplied per call.
func (c *LLMClient) Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (Completion, error) {
	if c.cfg.APIKey == "" {
		return Completion{}, fmt.Errorf("%w: api key missing", ErrAuth)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return Completion{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return Completion{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		c.telemetry.RecordLLMCall(false, 0)
		return Completion{}, fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		c.telemetry.RecordLLMCall(false, 0)
		return Completion{}, fmt.Errorf("read response: %w", err)
	}

	var out chatResponse
	if jsonErr := json.Unmarshal(raw, &out); jsonErr != nil && resp.StatusCode == http.StatusOK {
		c.telemetry.RecordLLMCall(false, 0)
		return Completion{}, fmt.Errorf("decode response: %w", jsonErr)
	}

	if resp.StatusCode != http.StatusOK {
		c.telemetry.RecordLLMCall(false, 0)
		return Completion{}, classifyStatus(resp.StatusCode, out.Error.Code, strings.TrimSpace(out.Error.Message))
	}

	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		c.telemetry.RecordLLMCall(false, 0)
		return Completion{}, ErrEmptyCompletion
	}

	c.telemetry.RecordLLMCall(true, out.Usage.TotalTokens)
	return Completion{
		Text:       out.Choices[0].Message.Content,
		TokensUsed: out.Usage.TotalTokens,
	}, nil
}

func (c *LLMClient) endpoint() string {
	base := c.cfg.BaseURL
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	return strings.TrimSuffix(base, "/") + "/chat/completions"
}
