// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package store

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/northbound/seekkb/internal/bridge"
)

// relevanceFloor is the minimum similarity score a chunk must clear to be
// considered relevant (spec.md §4.6).
const relevanceFloor = 0.3

// NewChunkVector is the (content, metadata, embedding) triple
// upsert_vector_chunks accepts for one chunk of one document.
type NewChunkVector struct {
	ChunkIndex int
	Content    string
	Embedding  []float32
	Metadata   string
}

// UpsertVectorChunks inserts all chunks for one document in a single
// transaction, per spec.md §4.8 step 5 ("upsert all chunks for the file
// into vector_documents in a single transaction"). Callers are expected to
// Commit/Rollback the enclosing transaction; this method issues only the
// INSERT statements.
func (s *Store) UpsertVectorChunks(projectID, documentID string, chunks []NewChunkVector) error {
	now := formatTime(time.Now().UTC())
	for _, c := range chunks {
		sql := fmt.Sprintf(
			`INSERT INTO vector_documents (id, project_id, document_id, chunk_index, content, embedding, metadata, created_at) VALUES (%s, %s, %s, %s, %s, %s, %s, %s)`,
			bridge.Literal(bridge.Text(uuid.NewString())),
			bridge.Literal(bridge.Text(projectID)),
			bridge.Literal(bridge.Text(documentID)),
			bridge.Literal(bridge.Int(int64(c.ChunkIndex))),
			bridge.Literal(bridge.Text(c.Content)),
			vectorLiteral(c.Embedding),
			bridge.Literal(bridge.Text(c.Metadata)),
			bridge.Literal(bridge.Text(now)),
		)
		if _, err := s.exec(sql); err != nil {
			return err
		}
	}
	return nil
}

func vectorLiteral(vec []float32) string {
	parts := make([]string, len(vec))
	for i, f := range vec {
		parts[i] = fmt.Sprintf("%g", f)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// ListChunksForDocument returns every chunk of a document, ordered by
// chunk_index asc (spec.md §4.3's document-chunks ordering policy,
// document_id fixed so only the chunk_index key varies).
func (s *Store) ListChunksForDocument(documentID string) ([]VectorChunk, error) {
	sql := fmt.Sprintf(
		`SELECT id, project_id, document_id, chunk_index, content, metadata, created_at FROM vector_documents WHERE document_id = %s`,
		bridge.Literal(bridge.Text(documentID)),
	)
	rows, err := s.query(sql)
	if err != nil {
		return nil, err
	}
	chunks := make([]VectorChunk, len(rows))
	for i, row := range rows {
		chunks[i] = decodeChunk(row)
	}
	sortChunks(chunks)
	return chunks, nil
}

// SimilaritySearch implements retrieval per spec.md §4.6: issues the sole
// permitted ORDER BY ... APPROXIMATE form for up to 2k candidates, converts
// L2 distance to similarity, drops anything below the relevance floor,
// keeps the top k by similarity desc (stable, ties broken by chunk_index
// then document_id), and blanks the embedding on every returned chunk.
func (s *Store) SimilaritySearch(projectID string, queryEmbedding []float32, k int) ([]ScoredChunk, error) {
	limit := 2 * k
	sql := fmt.Sprintf(
		`SELECT id, project_id, document_id, chunk_index, content, metadata, created_at, l2_distance(embedding, %s) AS distance FROM vector_documents WHERE project_id = %s ORDER BY l2_distance(embedding, %s) APPROXIMATE LIMIT %s`,
		vectorLiteral(queryEmbedding),
		bridge.Literal(bridge.Text(projectID)),
		vectorLiteral(queryEmbedding),
		bridge.Literal(bridge.Int(int64(limit))),
	)
	rows, err := s.query(sql)
	if err != nil {
		return nil, err
	}

	candidates := make([]ScoredChunk, 0, len(rows))
	for _, row := range rows {
		chunk := decodeChunk(row)
		distance := row["distance"].Float()
		similarity := math.Max(0, 1-distance/math.Sqrt2)
		if similarity < relevanceFloor {
			continue
		}
		candidates = append(candidates, ScoredChunk{Chunk: chunk, Similarity: similarity})
	}

	sortScoredChunks(candidates)
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}
