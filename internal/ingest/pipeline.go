// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package ingest

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/northbound/seekkb/internal/embeddings"
	"github.com/northbound/seekkb/internal/parser"
	"github.com/northbound/seekkb/internal/seekkberr"
	"github.com/northbound/seekkb/internal/store"
)

// documentStore is the subset of *store.Store the pipeline depends on,
// narrowed to an interface so tests can substitute a double, mirroring
// internal/store's own rpcClient pattern.
type documentStore interface {
	FindDocumentByHash(projectID, hash string) (*store.Document, error)
	CreateDocument(projectID, filename, filePath string, fileSize int64, mimeType, contentHash, metadata string) (store.Document, error)
	DeleteDocument(id string) error
	SetDocumentStatus(id string, status store.DocumentStatus) error
	SetDocumentIndexed(id string, chunkCount int) error
	UpsertVectorChunks(projectID, documentID string, chunks []store.NewChunkVector) error
	IncrementDocumentCount(id string, delta int) error
	Commit() error
	Rollback() error
}

// Pipeline runs the per-file validate -> extract -> chunk -> embed ->
// index sequence described in spec.md §4.8.
type Pipeline struct {
	store       documentStore
	embedder    embeddings.Embedder
	chunker     *Chunker
	maxFileSize int64
	embedTimeout time.Duration
}

// NewPipeline builds a Pipeline over the given store and embedder.
func NewPipeline(s documentStore, embedder embeddings.Embedder, maxFileSize int64, embedTimeout time.Duration) *Pipeline {
	return &Pipeline{
		store:        s,
		embedder:     embedder,
		chunker:      NewChunker(),
		maxFileSize:  maxFileSize,
		embedTimeout: embedTimeout,
	}
}

// Result is the outcome of ingesting one file.
type Result struct {
	Filename   string
	FilePath   string
	Success    bool
	Error      string
	ErrorStage string
	DocumentID string
	ChunkCount int
}

// UploadDocuments ingests every path independently, so one file's failure
// does not abort the batch (spec.md §4.8: "Per file, the pipeline runs
// independently"). Paths that fail validation (including de-duplication)
// never reach reading/chunking/embedding/indexing. Re-uploading a file
// whose last attempt ended in a Failed Document is a retry, not a
// duplicate (spec.md §3's Failed->Processing transition), and proceeds
// through extraction again rather than being rejected.
func (p *Pipeline) UploadDocuments(ctx context.Context, projectID string, paths []string) ([]Result, Summary) {
	results := make([]Result, 0, len(paths))
	summary := Summary{Total: len(paths)}

	for _, path := range paths {
		result := p.ingestOne(ctx, projectID, path)
		results = append(results, result)
		if result.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}

	return results, summary
}

func (p *Pipeline) ingestOne(ctx context.Context, projectID, path string) Result {
	filename := filenameOf(path)
	fail := func(stage string, err error) Result {
		return Result{Filename: filename, FilePath: path, Error: err.Error(), ErrorStage: stage}
	}

	// Step 1: validation.
	info, err := os.Stat(path)
	if err != nil {
		return fail(stageValidation, fmt.Errorf("file does not exist or is not readable: %w", err))
	}
	if info.Size() > p.maxFileSize {
		return fail(stageValidation, seekkberr.New(seekkberr.FileTooLarge, fmt.Sprintf("file size %d bytes exceeds the %d byte limit", info.Size(), p.maxFileSize)))
	}
	if !parser.IsSupportedFile(path) {
		return fail(stageValidation, seekkberr.New(seekkberr.UnsupportedFileType, fmt.Sprintf("unsupported file extension: %s", path)))
	}
	hash, err := hashFile(path)
	if err != nil {
		return fail(stageValidation, fmt.Errorf("failed to hash file: %w", err))
	}
	existing, err := p.store.FindDocumentByHash(projectID, hash)
	if err != nil {
		return fail(stageValidation, err)
	}
	if existing != nil {
		if existing.ProcessingStatus != store.DocumentFailed {
			return fail(stageValidation, seekkberr.New(seekkberr.DuplicateFile, "a document with identical content already exists in this project"))
		}
		// Failed->Processing retry (spec.md §3): a prior attempt at this
		// same content left a Failed row behind. Clear it (and its
		// cascade-deleted chunks) so the file runs through extraction
		// again instead of being rejected as a duplicate forever.
		if err := p.store.DeleteDocument(existing.ID); err != nil {
			return fail(stageValidation, err)
		}
	}

	// Step 2: reading/extraction.
	text, err := parser.ParseFile(path)
	if err != nil {
		return fail(stageReading, err)
	}

	mimeType := sniffMimeType(path)
	doc, err := p.store.CreateDocument(projectID, filename, path, info.Size(), mimeType, hash, "{}")
	if err != nil {
		return fail(stageReading, err)
	}

	// Step 3: chunking.
	chunkTexts, err := p.chunker.ChunkText(text)
	if err != nil {
		p.markFailed(doc.ID)
		return fail(stageProcessing, err)
	}
	if len(chunkTexts) == 0 {
		p.markFailed(doc.ID)
		return fail(stageProcessing, seekkberr.New(seekkberr.Validation, "document produced no text to index"))
	}

	// Step 4: embedding. Any failure aborts the file; chunks already
	// embedded are discarded without being inserted (atomicity per file).
	embedCtx, cancel := context.WithTimeout(ctx, p.embedTimeout)
	defer cancel()
	vectors, err := p.embedder.EmbedBatch(embedCtx, chunkTexts)
	if err != nil {
		p.markFailed(doc.ID)
		return fail(stageEmbedding, err)
	}

	chunks := make([]store.NewChunkVector, len(chunkTexts))
	for i, text := range chunkTexts {
		chunks[i] = store.NewChunkVector{ChunkIndex: i, Content: text, Embedding: vectors[i], Metadata: "{}"}
	}

	// Step 5: indexing, in a single transaction.
	if err := p.store.UpsertVectorChunks(projectID, doc.ID, chunks); err != nil {
		p.store.Rollback()
		p.markFailed(doc.ID)
		return fail(stageIndexing, err)
	}
	if err := p.store.SetDocumentIndexed(doc.ID, len(chunks)); err != nil {
		p.store.Rollback()
		p.markFailed(doc.ID)
		return fail(stageIndexing, err)
	}
	if err := p.store.IncrementDocumentCount(projectID, 1); err != nil {
		p.store.Rollback()
		p.markFailed(doc.ID)
		return fail(stageIndexing, err)
	}
	if err := p.store.Commit(); err != nil {
		return fail(stageIndexing, err)
	}

	return Result{Filename: filename, FilePath: path, Success: true, DocumentID: doc.ID, ChunkCount: len(chunks)}
}

// markFailed best-effort transitions a Document to Failed; the original
// error is what's surfaced to the caller, so this swallows its own
// failure rather than shadowing it.
func (p *Pipeline) markFailed(documentID string) {
	_ = p.store.SetDocumentStatus(documentID, store.DocumentFailed)
}

// sniffMimeType uses the first 512 bytes of the file to classify its MIME
// type; the parser package dispatches by extension, not MIME, so this is
// purely for the stored document metadata.
func sniffMimeType(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return "application/octet-stream"
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	return http.DetectContentType(buf[:n])
}
