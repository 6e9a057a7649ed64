// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package embeddings implements C4, the embedding client from spec.md
// §4.4: a stateless HTTP client producing fixed-dimension float vectors
// for chunks and queries, failing with EmbedError on network error,
// non-2xx response, dimension mismatch, or empty input.
package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/northbound/seekkb/internal/config"
	"github.com/northbound/seekkb/internal/seekkberr"
)

// RequiredDimension is D from spec.md §3/§4.4.
const RequiredDimension = 1536

// Embedder generates vector embeddings from text.
type Embedder interface {
	// EmbedText generates an embedding vector for the given text.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts (more efficient
	// than calling EmbedText in a loop, where the provider supports it).
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the dimension of the embedding vectors.
	Dimension() int
}

// NewEmbedder builds the configured provider's Embedder and wraps it in a
// dimensionValidator enforcing spec.md §4.4's contract uniformly across
// providers.
func NewEmbedder(cfg config.APIConfig, timeout time.Duration) (Embedder, error) {
	var inner Embedder
	var err error

	switch cfg.Provider {
	case "ollama":
		inner, err = NewOllamaEmbedder(cfg.BaseURL, cfg.EmbeddingModel, timeout)
	case "mock":
		inner = NewMockEmbedder(RequiredDimension)
	case "openai", "":
		inner, err = NewOpenAIEmbedder(cfg.APIKey, cfg.BaseURL, cfg.EmbeddingModel, timeout)
	default:
		return nil, seekkberr.New(seekkberr.ConfigMissing, "unknown embedding provider: "+cfg.Provider).WithField("api.provider")
	}
	if err != nil {
		return nil, err
	}
	return &dimensionValidator{inner: inner}, nil
}

// dimensionValidator enforces the fixed D=1536 dimension and the
// empty-input rule from spec.md §4.4 regardless of which provider is
// configured underneath.
type dimensionValidator struct {
	inner Embedder
}

func (d *dimensionValidator) Dimension() int { return RequiredDimension }

func (d *dimensionValidator) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, seekkberr.New(seekkberr.EmbedError, "cannot embed empty input")
	}
	vec, err := d.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) != RequiredDimension {
		return nil, seekkberr.New(seekkberr.EmbedError, fmt.Sprintf("embedding provider returned dimension %d, want %d", len(vec), RequiredDimension))
	}
	return vec, nil
}

func (d *dimensionValidator) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	for _, t := range texts {
		if t == "" {
			return nil, seekkberr.New(seekkberr.EmbedError, "cannot embed empty input")
		}
	}
	vecs, err := d.inner.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	for _, v := range vecs {
		if len(v) != RequiredDimension {
			return nil, seekkberr.New(seekkberr.EmbedError, fmt.Sprintf("embedding provider returned dimension %d, want %d", len(v), RequiredDimension))
		}
	}
	return vecs, nil
}
