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
	"time"

	"github.com/northbound/seekkb/internal/seekkberr"
)

// OllamaEmbedder uses a local Ollama instance for embeddings. The
// dimensionValidator wrapping this still enforces D=1536 (spec.md §4.4),
// so the configured Ollama model must itself produce 1536-dimensional
// vectors; the default nomic-embed-text (768) will fail validation.
type OllamaEmbedder struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaEmbedder creates a new Ollama embedder.
func NewOllamaEmbedder(baseURL, model string, timeout time.Duration) (*OllamaEmbedder, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaEmbedder{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (e *OllamaEmbedder) Dimension() int { return RequiredDimension }

// EmbedText generates an embedding for a single text.
func (e *OllamaEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	type requestPayload struct {
		Model  string `json:"model"`
		Prompt string `json:"prompt"`
	}
	payload := requestPayload{Model: e.model, Prompt: text}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, seekkberr.Wrap(seekkberr.EmbedError, "failed to marshal embedding request", err)
	}

	url := fmt.Sprintf("%s/api/embeddings", e.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, seekkberr.Wrap(seekkberr.EmbedError, "failed to build embedding request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, seekkberr.Wrap(seekkberr.EmbedError, "embedding request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, seekkberr.New(seekkberr.EmbedError, fmt.Sprintf("ollama API error (status %d): %s", resp.StatusCode, string(body)))
	}

	type responsePayload struct {
		Embedding []float64 `json:"embedding"`
	}
	var response responsePayload
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, seekkberr.Wrap(seekkberr.EmbedError, "failed to decode embedding response", err)
	}

	result := make([]float32, len(response.Embedding))
	for i, v := range response.Embedding {
		result[i] = float32(v)
	}
	return result, nil
}

// EmbedBatch generates embeddings for multiple texts (sequential for
// Ollama, which has no native batch endpoint).
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := e.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = embedding
	}
	return result, nil
}
