// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/northbound/seekkb/internal/config"
	"github.com/northbound/seekkb/internal/embeddings"
	"github.com/northbound/seekkb/internal/ingest"
	"github.com/northbound/seekkb/internal/store"
)

// fakeDocStore structurally satisfies ingest's unexported documentStore
// interface: Go interface satisfaction needs matching methods, not a
// declared relationship, so this type works as ingest.NewPipeline's store
// argument without ingest exporting the interface.
type fakeDocStore struct {
	created []store.Document
}

func (f *fakeDocStore) FindDocumentByHash(projectID, hash string) (*store.Document, error) {
	return nil, nil
}

func (f *fakeDocStore) CreateDocument(projectID, filename, filePath string, fileSize int64, mimeType, contentHash, metadata string) (store.Document, error) {
	d := store.Document{ID: filename, ProjectID: projectID, Filename: filename, FilePath: filePath}
	f.created = append(f.created, d)
	return d, nil
}

func (f *fakeDocStore) DeleteDocument(id string) error                                { return nil }
func (f *fakeDocStore) SetDocumentStatus(id string, status store.DocumentStatus) error { return nil }
func (f *fakeDocStore) SetDocumentIndexed(id string, chunkCount int) error             { return nil }
func (f *fakeDocStore) UpsertVectorChunks(projectID, documentID string, chunks []store.NewChunkVector) error {
	return nil
}
func (f *fakeDocStore) IncrementDocumentCount(id string, delta int) error { return nil }
func (f *fakeDocStore) Commit() error                                    { return nil }
func (f *fakeDocStore) Rollback() error                                  { return nil }

func TestHandleIngestFile_RunsFileThroughPipeline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(path, []byte("a file dropped for ingestion"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	embedder, err := embeddings.NewEmbedder(config.APIConfig{Provider: "mock"}, time.Second)
	if err != nil {
		t.Fatalf("NewEmbedder failed: %v", err)
	}
	fakeStore := &fakeDocStore{}
	pipeline := ingest.NewPipeline(fakeStore, embedder, 1024*1024, time.Second)

	job, err := NewIngestFileJob(IngestFilePayload{ProjectID: "p1", FilePath: path})
	if err != nil {
		t.Fatalf("NewIngestFileJob failed: %v", err)
	}

	if err := HandleIngestFile(pipeline)(context.Background(), job); err != nil {
		t.Fatalf("HandleIngestFile failed: %v", err)
	}
	if len(fakeStore.created) != 1 {
		t.Errorf("created documents = %d, want 1", len(fakeStore.created))
	}
}

func TestHandleIngestFile_IgnoresWrongJobType(t *testing.T) {
	embedder, _ := embeddings.NewEmbedder(config.APIConfig{Provider: "mock"}, time.Second)
	fakeStore := &fakeDocStore{}
	pipeline := ingest.NewPipeline(fakeStore, embedder, 1024*1024, time.Second)

	job, _ := NewPruneConversationJob(PruneConversationPayload{ConversationID: "c1", KeepLast: 1})
	if err := HandleIngestFile(pipeline)(context.Background(), job); err != nil {
		t.Fatalf("expected nil error for mismatched job type, got %v", err)
	}
	if len(fakeStore.created) != 0 {
		t.Errorf("expected no ingestion for mismatched job type, got %d", len(fakeStore.created))
	}
}
