// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/northbound/seekkb/internal/bridge"
	"github.com/northbound/seekkb/internal/seekkberr"
)

// FindDocumentByHash returns the Document in project projectID whose
// content_hash matches hash, or nil if none exists. Used by ingestion's
// de-duplication check (spec.md §4.8: "reject files whose content hash
// matches an existing Document in the same project"). A match whose
// ProcessingStatus is Failed is not a duplicate: internal/ingest.Pipeline
// treats it as a retry of the original upload instead of rejecting it.
func (s *Store) FindDocumentByHash(projectID, hash string) (*Document, error) {
	sql := fmt.Sprintf(
		`SELECT id, project_id, filename, file_path, file_size, mime_type, content_hash, processing_status, chunk_count, metadata, created_at, updated_at FROM documents WHERE project_id = %s AND content_hash = %s`,
		bridge.Literal(bridge.Text(projectID)), bridge.Literal(bridge.Text(hash)),
	)
	row, err := s.queryOne(sql)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	d := decodeDocument(row)
	return &d, nil
}

// CreateDocument inserts a new Document row with processing_status=Uploaded.
func (s *Store) CreateDocument(projectID, filename, filePath string, fileSize int64, mimeType, contentHash, metadata string) (Document, error) {
	now := time.Now().UTC()
	d := Document{
		ID:               uuid.NewString(),
		ProjectID:        projectID,
		Filename:         filename,
		FilePath:         filePath,
		FileSize:         fileSize,
		MimeType:         mimeType,
		ContentHash:      contentHash,
		ProcessingStatus: DocumentUploaded,
		Metadata:         metadata,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	sql := fmt.Sprintf(
		`INSERT INTO documents (id, project_id, filename, file_path, file_size, mime_type, content_hash, processing_status, chunk_count, metadata, created_at, updated_at) VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)`,
		bridge.Literal(bridge.Text(d.ID)),
		bridge.Literal(bridge.Text(d.ProjectID)),
		bridge.Literal(bridge.Text(d.Filename)),
		bridge.Literal(bridge.Text(d.FilePath)),
		bridge.Literal(bridge.Int(d.FileSize)),
		bridge.Literal(bridge.Text(d.MimeType)),
		bridge.Literal(bridge.Text(d.ContentHash)),
		bridge.Literal(bridge.Text(string(d.ProcessingStatus))),
		bridge.Literal(bridge.Int(0)),
		bridge.Literal(bridge.Text(d.Metadata)),
		bridge.Literal(bridge.Text(formatTime(d.CreatedAt))),
		bridge.Literal(bridge.Text(formatTime(d.UpdatedAt))),
	)
	if _, err := s.exec(sql); err != nil {
		return Document{}, err
	}
	return d, nil
}

// GetDocument returns the Document with id, or ErrNotFound.
func (s *Store) GetDocument(id string) (Document, error) {
	sql := fmt.Sprintf(`SELECT id, project_id, filename, file_path, file_size, mime_type, content_hash, processing_status, chunk_count, metadata, created_at, updated_at FROM documents WHERE id = %s`, bridge.Literal(bridge.Text(id)))
	row, err := s.queryOne(sql)
	if err != nil {
		return Document{}, err
	}
	if row == nil {
		return Document{}, seekkberr.New(seekkberr.NotFound, fmt.Sprintf("document %s not found", id))
	}
	return decodeDocument(row), nil
}

// ListDocuments returns every Document belonging to projectID. Document
// listing has no ordering policy entry in spec.md §4.3's table, so results
// are returned in a stable, filename-ascending order for presentation.
func (s *Store) ListDocuments(projectID string) ([]Document, error) {
	sql := fmt.Sprintf(`SELECT id, project_id, filename, file_path, file_size, mime_type, content_hash, processing_status, chunk_count, metadata, created_at, updated_at FROM documents WHERE project_id = %s`, bridge.Literal(bridge.Text(projectID)))
	rows, err := s.query(sql)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, len(rows))
	for i, row := range rows {
		docs[i] = decodeDocument(row)
	}
	sortDocuments(docs)
	return docs, nil
}

// SetDocumentStatus transitions processing_status. Per spec.md §3,
// transitions are monotone except Failed->Processing on retry; this layer
// just writes the value, internal/ingest.Pipeline.ingestOne is the caller
// responsible for honoring the monotone rule (it only ever retries a
// Failed document by deleting and recreating it, never by writing
// Processing directly over a Failed row).
func (s *Store) SetDocumentStatus(id string, status DocumentStatus) error {
	sql := fmt.Sprintf(`UPDATE documents SET processing_status = %s, updated_at = %s WHERE id = %s`,
		bridge.Literal(bridge.Text(string(status))),
		bridge.Literal(bridge.Text(formatTime(time.Now().UTC()))),
		bridge.Literal(bridge.Text(id)),
	)
	_, err := s.exec(sql)
	return err
}

// SetDocumentIndexed marks a Document Indexed with its final chunk count,
// the terminal step of the indexing stage (spec.md §4.8 step 5).
func (s *Store) SetDocumentIndexed(id string, chunkCount int) error {
	sql := fmt.Sprintf(`UPDATE documents SET processing_status = %s, chunk_count = %s, updated_at = %s WHERE id = %s`,
		bridge.Literal(bridge.Text(string(DocumentIndexed))),
		bridge.Literal(bridge.Int(int64(chunkCount))),
		bridge.Literal(bridge.Text(formatTime(time.Now().UTC()))),
		bridge.Literal(bridge.Text(id)),
	)
	_, err := s.exec(sql)
	return err
}

// DeleteDocument removes a Document; CASCADE DELETE removes its
// VectorChunks. internal/ingest.Pipeline.ingestOne calls this to clear a
// Failed Document before re-running extraction on a retried upload.
func (s *Store) DeleteDocument(id string) error {
	sql := fmt.Sprintf(`DELETE FROM documents WHERE id = %s`, bridge.Literal(bridge.Text(id)))
	_, err := s.exec(sql)
	return err
}
