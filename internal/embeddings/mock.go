// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package embeddings

import (
	"context"
	"hash/fnv"
	"math"
)

// MockEmbedder produces deterministic, hash-derived vectors instead of
// calling out to a provider, so config.APIConfig{Provider: "mock"} lets
// ingestion and retrieval be exercised in tests without network access or
// an API key (spec.md's config contract requires one of both at runtime;
// tests use this embedder to route around that requirement).
type MockEmbedder struct {
	dim int
}

// NewMockEmbedder builds a MockEmbedder producing vectors of the given
// dimension.
func NewMockEmbedder(dim int) *MockEmbedder {
	return &MockEmbedder{dim: dim}
}

// Dimension returns the embedding dimension.
func (e *MockEmbedder) Dimension() int {
	return e.dim
}

// EmbedText hashes text with FNV-1a and turns the hash into a unit vector
// via a sine-based pseudo-random fill, so the same text always yields the
// same vector and distinct texts yield distinct (if not meaningfully
// "similar") vectors.
func (e *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	embedding := make([]float32, e.dim)
	for i := 0; i < e.dim; i++ {
		val := float32(math.Sin(float64(seed*uint32(i+1)) * 0.1))
		embedding[i] = val
	}

	var sum float32
	for _, v := range embedding {
		sum += v * v
	}
	norm := float32(math.Sqrt(float64(sum)))
	if norm > 0 {
		for i := range embedding {
			embedding[i] /= norm
		}
	}

	return embedding, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
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

