package gateway

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// StreamChunk is one increment of streamed completion text. Chunks carry no
// sentence or token boundary guarantees. A chunk with Err set is terminal.
type StreamChunk struct {
	Text string
	Err  error
}

// CompleteStream issues a streaming completion request. The returned channel
// yields incremental text and closes when the backend signals completion.
// Cancelling ctx stops consumption at the next chunk boundary; partial output
// already delivered has no side effects to undo.
func (c *LLMClient) CompleteStream(ctx context.Context, system, user string, temperature float64, maxTokens int) (<-chan StreamChunk, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: api key missing", ErrAuth)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stream request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		var out chatResponse
		_ = json.Unmarshal(raw, &out)
		return nil, classifyStatus(resp.StatusCode, out.Error.Code, strings.TrimSpace(out.Error.Message))
	}

	ch := make(chan StreamChunk)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "[DONE]" {
				return
			}

			var event struct {
				Choices []struct {
					Delta struct {
						Content string `json:"content"`
					} `json:"delta"`
				} `json:"choices"`
			}
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				continue // malformed event, keep reading
			}
			if len(event.Choices) == 0 || event.Choices[0].Delta.Content == "" {
				continue
			}

			select {
			case ch <- StreamChunk{Text: event.Choices[0].Delta.Content}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			select {
			case ch <- StreamChunk{Err: fmt.Errorf("stream read: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return ch, nil
}
