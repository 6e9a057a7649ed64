// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/northbound/seekkb/internal/config"
	"github.com/northbound/seekkb/internal/embeddings"
	"github.com/northbound/seekkb/internal/store"
)

// mockStore is a minimal in-memory double for documentStore.
type mockStore struct {
	byHash       map[string]store.Document
	created      []store.Document
	failedIDs    []string
	deletedIDs   []string
	indexedCalls int
	chunkCalls   [][]store.NewChunkVector
	incrementErr error
	upsertErr    error
	commitErr    error
	nextID       int
}

func newMockStore() *mockStore {
	return &mockStore{byHash: map[string]store.Document{}}
}

func (m *mockStore) FindDocumentByHash(projectID, hash string) (*store.Document, error) {
	if d, ok := m.byHash[projectID+"|"+hash]; ok {
		return &d, nil
	}
	return nil, nil
}

func (m *mockStore) CreateDocument(projectID, filename, filePath string, fileSize int64, mimeType, contentHash, metadata string) (store.Document, error) {
	m.nextID++
	d := store.Document{ID: filename, ProjectID: projectID, Filename: filename, FilePath: filePath, ContentHash: contentHash}
	m.byHash[projectID+"|"+contentHash] = d
	m.created = append(m.created, d)
	return d, nil
}

func (m *mockStore) DeleteDocument(id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	for key, d := range m.byHash {
		if d.ID == id {
			delete(m.byHash, key)
		}
	}
	return nil
}

func (m *mockStore) SetDocumentStatus(id string, status store.DocumentStatus) error {
	if status == store.DocumentFailed {
		m.failedIDs = append(m.failedIDs, id)
	}
	return nil
}

func (m *mockStore) SetDocumentIndexed(id string, chunkCount int) error {
	m.indexedCalls++
	return nil
}

func (m *mockStore) UpsertVectorChunks(projectID, documentID string, chunks []store.NewChunkVector) error {
	m.chunkCalls = append(m.chunkCalls, chunks)
	return m.upsertErr
}

func (m *mockStore) IncrementDocumentCount(id string, delta int) error {
	return m.incrementErr
}

func (m *mockStore) Commit() error   { return m.commitErr }
func (m *mockStore) Rollback() error { return nil }

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func mockEmbedder() embeddings.Embedder {
	e, err := embeddings.NewEmbedder(config.APIConfig{Provider: "mock"}, time.Second)
	if err != nil {
		panic(err)
	}
	return e
}

func TestPipeline_UploadDocuments_Success(t *testing.T) {
	path := writeTempFile(t, "hello.txt", "the mitochondria is the powerhouse of the cell")
	ms := newMockStore()
	p := NewPipeline(ms, mockEmbedder(), 50*1024*1024, 60*time.Second)

	results, summary := p.UploadDocuments(context.Background(), "proj1", []string{path})

	if summary.Total != 1 || summary.Successful != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want {1,1,0}", summary)
	}
	if !results[0].Success {
		t.Fatalf("expected success, got error %q at stage %q", results[0].Error, results[0].ErrorStage)
	}
	if results[0].ChunkCount == 0 {
		t.Error("expected at least one chunk indexed")
	}
	if ms.indexedCalls != 1 {
		t.Errorf("SetDocumentIndexed called %d times, want 1", ms.indexedCalls)
	}
	if len(ms.failedIDs) != 0 {
		t.Errorf("did not expect any document marked Failed, got %v", ms.failedIDs)
	}
}

func TestPipeline_UploadDocuments_EmptyFileFailsAtProcessing(t *testing.T) {
	path := writeTempFile(t, "empty.txt", "")
	ms := newMockStore()
	p := NewPipeline(ms, mockEmbedder(), 50*1024*1024, 60*time.Second)

	results, summary := p.UploadDocuments(context.Background(), "proj1", []string{path})

	if summary.Failed != 1 {
		t.Fatalf("summary = %+v, want 1 failure", summary)
	}
	if results[0].ErrorStage != stageProcessing {
		t.Errorf("ErrorStage = %q, want %q", results[0].ErrorStage, stageProcessing)
	}
}

func TestPipeline_UploadDocuments_OversizeFailsValidation(t *testing.T) {
	path := writeTempFile(t, "big.txt", strings.Repeat("a", 1024))
	ms := newMockStore()
	p := NewPipeline(ms, mockEmbedder(), 100, 60*time.Second)

	results, _ := p.UploadDocuments(context.Background(), "proj1", []string{path})

	if results[0].ErrorStage != stageValidation {
		t.Errorf("ErrorStage = %q, want %q", results[0].ErrorStage, stageValidation)
	}
}

func TestPipeline_UploadDocuments_UnsupportedExtensionFailsValidation(t *testing.T) {
	path := writeTempFile(t, "data.bin", "binary content")
	ms := newMockStore()
	p := NewPipeline(ms, mockEmbedder(), 50*1024*1024, 60*time.Second)

	results, _ := p.UploadDocuments(context.Background(), "proj1", []string{path})

	if results[0].ErrorStage != stageValidation {
		t.Errorf("ErrorStage = %q, want %q", results[0].ErrorStage, stageValidation)
	}
}

func TestPipeline_UploadDocuments_DuplicateContentRejected(t *testing.T) {
	path1 := writeTempFile(t, "a.txt", "identical content here")
	path2 := writeTempFile(t, "b.txt", "identical content here")
	ms := newMockStore()
	p := NewPipeline(ms, mockEmbedder(), 50*1024*1024, 60*time.Second)

	results, summary := p.UploadDocuments(context.Background(), "proj1", []string{path1, path2})

	if summary.Successful != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v, want {2,1,1}", summary)
	}
	if results[1].ErrorStage != stageValidation {
		t.Errorf("ErrorStage = %q, want %q", results[1].ErrorStage, stageValidation)
	}
}

func TestPipeline_UploadDocuments_RetryOfFailedDocumentSucceeds(t *testing.T) {
	path := writeTempFile(t, "retry.txt", "the mitochondria is the powerhouse of the cell")
	ms := newMockStore()
	hash, err := hashFile(path)
	if err != nil {
		t.Fatalf("hashFile: %v", err)
	}
	ms.byHash["proj1|"+hash] = store.Document{ID: "stale-doc", ProjectID: "proj1", ContentHash: hash, ProcessingStatus: store.DocumentFailed}
	p := NewPipeline(ms, mockEmbedder(), 50*1024*1024, 60*time.Second)

	results, summary := p.UploadDocuments(context.Background(), "proj1", []string{path})

	if summary.Successful != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want {1,1,0}", summary)
	}
	if !results[0].Success {
		t.Fatalf("expected retry to succeed, got error %q at stage %q", results[0].Error, results[0].ErrorStage)
	}
	if len(ms.deletedIDs) != 1 || ms.deletedIDs[0] != "stale-doc" {
		t.Errorf("deletedIDs = %v, want [stale-doc]", ms.deletedIDs)
	}
}

func TestPipeline_UploadDocuments_EmptyPathListYieldsZeroSummary(t *testing.T) {
	ms := newMockStore()
	p := NewPipeline(ms, mockEmbedder(), 50*1024*1024, 60*time.Second)

	results, summary := p.UploadDocuments(context.Background(), "proj1", nil)

	if len(results) != 0 || summary != (Summary{}) {
		t.Errorf("expected zero results/summary for empty input, got %v, %+v", results, summary)
	}
}

func TestPipeline_UploadDocuments_MissingFileFailsValidation(t *testing.T) {
	ms := newMockStore()
	p := NewPipeline(ms, mockEmbedder(), 50*1024*1024, 60*time.Second)

	results, _ := p.UploadDocuments(context.Background(), "proj1", []string{"/nonexistent/path.txt"})

	if results[0].ErrorStage != stageValidation {
		t.Errorf("ErrorStage = %q, want %q", results[0].ErrorStage, stageValidation)
	}
}
