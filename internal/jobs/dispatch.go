// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package jobs

import (
	"context"
	"log"

	"github.com/northbound/seekkb/internal/ingest"
	"github.com/northbound/seekkb/internal/queue"
)

// Dispatch builds a single worker.HandlerFunc-shaped function that routes a
// job to the right handler by job.Type, so cmd/seekkbd's serve command can
// hand one function to worker.StartWorkers instead of running a pool per
// job type. Unrecognized job types are logged and dropped rather than
// treated as an error, since a future job type on the queue shouldn't wedge
// every worker on an old binary.
func Dispatch(store pruneStore, pipeline *ingest.Pipeline) func(ctx context.Context, job queue.Job) error {
	prune := HandlePruneConversation(store)
	ingestFile := HandleIngestFile(pipeline)
	return func(ctx context.Context, job queue.Job) error {
		switch job.Type {
		case JobTypePruneConversation:
			return prune(ctx, job)
		case JobTypeIngestFile:
			return ingestFile(ctx, job)
		default:
			log.Printf("Dispatch: unrecognized job type %s, dropping", job.Type)
			return nil
		}
	}
}
