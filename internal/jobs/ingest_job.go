// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package jobs

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/northbound/seekkb/internal/ingest"
	"github.com/northbound/seekkb/internal/queue"
)

// JobTypeIngestFile identifies a single-file ingestion job on the queue,
// which Dispatch runs through the ingestion pipeline. The inbox watcher in
// internal/ingest/watch.go does not enqueue these jobs; it calls the
// pipeline directly.
const JobTypeIngestFile = "ingest_file"

// IngestFilePayload names one file to run through the ingestion pipeline.
type IngestFilePayload struct {
	ProjectID   string    `json:"projectId"`
	FilePath    string    `json:"filePath"`
	RequestedAt time.Time `json:"requestedAt"`
}

// NewIngestFileJob creates a new job for ingesting a single file.
func NewIngestFileJob(payload IngestFilePayload) (queue.Job, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		log.Printf("NewIngestFileJob: failed to marshal payload: %v", err)
		return queue.Job{}, err
	}
	return queue.Job{
		Type:      JobTypeIngestFile,
		Payload:   payloadJSON,
		CreatedAt: time.Now(),
	}, nil
}

// EnqueueIngestFile enqueues an ingestion job for path under projectID.
func EnqueueIngestFile(ctx context.Context, q queue.Queue, projectID, path string) error {
	job, err := NewIngestFileJob(IngestFilePayload{ProjectID: projectID, FilePath: path, RequestedAt: time.Now()})
	if err != nil {
		return err
	}
	return q.Enqueue(ctx, job)
}

// HandleIngestFile returns a queue.Job handler that runs a single file
// through pipeline's validate -> extract -> chunk -> embed -> index
// sequence (spec.md §4.8), the same path upload_documents uses for each of
// its paths.
func HandleIngestFile(pipeline *ingest.Pipeline) func(ctx context.Context, job queue.Job) error {
	return func(ctx context.Context, job queue.Job) error {
		if job.Type != JobTypeIngestFile {
			log.Printf("HandleIngestFile: unexpected job type %s, expected %s", job.Type, JobTypeIngestFile)
			return nil
		}

		var payload IngestFilePayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			log.Printf("HandleIngestFile: failed to unmarshal payload: %v", err)
			return err
		}

		results, summary := pipeline.UploadDocuments(ctx, payload.ProjectID, []string{payload.FilePath})
		if summary.Failed > 0 {
			log.Printf("HandleIngestFile: projectId=%s filePath=%s failed: %+v", payload.ProjectID, payload.FilePath, results)
		} else {
			log.Printf("HandleIngestFile: projectId=%s filePath=%s indexed", payload.ProjectID, payload.FilePath)
		}
		return nil
	}
}
