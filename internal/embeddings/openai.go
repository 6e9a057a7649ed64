// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/northbound/seekkb/internal/seekkberr"
)

// OpenAIEmbedder uses OpenAI's (or an OpenAI-compatible) embedding API.
type OpenAIEmbedder struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewOpenAIEmbedder creates a new OpenAI-compatible embedder. baseURL
// defaults to the official API when empty, so self-hosted
// OpenAI-compatible gateways can be substituted via config.
func NewOpenAIEmbedder(apiKey, baseURL, model string, timeout time.Duration) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, seekkberr.New(seekkberr.InvalidAPIKey, "openai api_key is required")
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &OpenAIEmbedder{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Dimension returns RequiredDimension without asking OpenAI; NewEmbedder
// wraps this in a dimensionValidator that checks every returned vector
// against RequiredDimension.
func (e *OpenAIEmbedder) Dimension() int {
	return RequiredDimension
}

// EmbedText generates an embedding for a single text.
func (e *OpenAIEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	type requestPayload struct {
		Input []string `json:"input"`
		Model string   `json:"model"`
	}

	payload := requestPayload{Input: texts, Model: e.model}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, seekkberr.Wrap(seekkberr.EmbedError, "failed to marshal embedding request", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, seekkberr.Wrap(seekkberr.EmbedError, "failed to build embedding request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", e.apiKey))

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, seekkberr.Wrap(seekkberr.EmbedError, "embedding request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, seekkberr.New(seekkberr.EmbedError, fmt.Sprintf("embedding API error (status %d): %s", resp.StatusCode, string(body)))
	}

	type responsePayload struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}

	var response responsePayload
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, seekkberr.Wrap(seekkberr.EmbedError, "failed to decode embedding response", err)
	}
	if len(response.Data) != len(texts) {
		return nil, seekkberr.New(seekkberr.EmbedError, fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(response.Data)))
	}

	result := make([][]float32, len(response.Data))
	for i, data := range response.Data {
		result[i] = make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			result[i][j] = float32(v)
		}
	}
	return result, nil
}
