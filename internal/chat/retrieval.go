// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package chat implements C7, the chat pipeline from spec.md §4.7: embed
// the query, retrieve context via §4.6, load recent history, build a
// prompt, and stream an LLM response with a token/context/end/error
// lifecycle.
package chat

import (
	"context"

	"github.com/northbound/seekkb/internal/embeddings"
	"github.com/northbound/seekkb/internal/store"
)

// retriever is the subset of *store.Store the chat pipeline needs for
// retrieval, narrowed to an interface for testability.
type retriever interface {
	SimilaritySearch(projectID string, queryEmbedding []float32, k int) ([]store.ScoredChunk, error)
}

// retrieve embeds the query and runs similarity search, implementing
// spec.md §4.7 steps 2-3.
func retrieve(ctx context.Context, embedder embeddings.Embedder, s retriever, projectID, query string, k int) ([]store.ScoredChunk, error) {
	queryVec, err := embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.SimilaritySearch(projectID, queryVec, k)
}

// sourcesOf converts retrieved chunks into the (filename, relevance_score)
// pairs carried by onContext and the persisted Assistant message
// (spec.md §4.7 step 6: onContext, step 7: sources=context list).
func sourcesOf(scored []store.ScoredChunk, filenames map[string]string) []store.Source {
	sources := make([]store.Source, len(scored))
	for i, sc := range scored {
		sources[i] = store.Source{
			Filename:       filenames[sc.Chunk.DocumentID],
			RelevanceScore: sc.Similarity,
		}
	}
	return sources
}
