// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/northbound/seekkb/internal/seekkberr"
)

// OpenAIClient talks to OpenAI's (or an OpenAI-compatible) chat
// completions endpoint, parsing `data:` SSE lines into token deltas per
// spec.md §4.5.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewOpenAIClient builds a chat client. baseURL defaults to the official
// API when empty.
func NewOpenAIClient(apiKey, baseURL, model string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, seekkberr.New(seekkberr.InvalidAPIKey, "openai api_key is required")
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		// No client-level timeout: the stream is long-lived and bounded
		// by ctx cancellation instead (spec.md §4.5's "cancellation is by
		// dropping the stream handle").
		client: &http.Client{},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatDelta struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type chatErrorPayload struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ChatStream opens the SSE stream. A transport error or non-2xx status
// before any byte of the stream is read fails synchronously with
// LlmError; everything after that point is reported through the returned
// channel.
func (c *OpenAIClient) ChatStream(ctx context.Context, systemPrompt, userPrompt string) (TokenStream, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: true,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, seekkberr.Wrap(seekkberr.LlmError, "failed to marshal chat request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, seekkberr.Wrap(seekkberr.LlmError, "failed to build chat request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, seekkberr.Wrap(seekkberr.LlmError, "chat request failed", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		var errPayload chatErrorPayload
		if json.Unmarshal(data, &errPayload) == nil && errPayload.Error.Message != "" {
			return nil, seekkberr.New(seekkberr.LlmError, errPayload.Error.Message)
		}
		return nil, seekkberr.New(seekkberr.LlmError, fmt.Sprintf("chat API error (status %d): %s", resp.StatusCode, string(data)))
	}

	ch := make(chan StreamItem, 16)
	go c.pump(ctx, resp.Body, ch)
	return ch, nil
}

func (c *OpenAIClient) pump(ctx context.Context, body io.ReadCloser, ch chan<- StreamItem) {
	defer close(ch)
	defer body.Close()

	ch <- StreamItem{Kind: ItemStart}

	var full strings.Builder
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			ch <- StreamItem{Kind: ItemEnd, FullText: full.String()}
			return
		}

		var delta chatDelta
		if err := json.Unmarshal([]byte(data), &delta); err != nil {
			ch <- StreamItem{Kind: ItemError, Err: fmt.Errorf("failed to decode stream delta: %w", err)}
			return
		}
		for _, choice := range delta.Choices {
			if choice.Delta.Content != "" {
				full.WriteString(choice.Delta.Content)
				ch <- StreamItem{Kind: ItemToken, Delta: choice.Delta.Content}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		ch <- StreamItem{Kind: ItemError, Err: err}
		return
	}
	// Stream closed without an explicit [DONE] sentinel: treat whatever
	// was accumulated as the final text.
	ch <- StreamItem{Kind: ItemEnd, FullText: full.String()}
}
