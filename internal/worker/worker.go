// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package worker runs a small pool of goroutines pulling queue.Job values
// off an internal/queue.Queue and handing each to a caller-supplied
// handler, the consumer side of internal/jobs' prune_conversation and
// ingest_file job types.
package worker

import (
	"context"
	"sync"

	"github.com/northbound/seekkb/internal/logger"
	"github.com/northbound/seekkb/internal/queue"
)

// HandlerFunc processes a single job. An error is logged and the worker
// moves on to the next job; it never stops the pool.
type HandlerFunc func(ctx context.Context, job queue.Job) error

// StartWorkers starts workerCount goroutines dequeuing from q and running
// handler on each job, blocking until ctx is cancelled and every worker has
// drained its current job.
func StartWorkers(ctx context.Context, q queue.Queue, handler HandlerFunc, workerCount int) error {
	logger.Printf("StartWorkers: workerCount=%d", workerCount)

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		workerID := i + 1
		go func() {
			defer wg.Done()
			workerLoop(ctx, q, handler, workerID)
		}()
	}

	wg.Wait()
	logger.Printf("StartWorkers: all workers stopped")
	return nil
}

func workerLoop(ctx context.Context, q queue.Queue, handler HandlerFunc, workerID int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := q.Dequeue(ctx)
		if err != nil {
			if err == context.Canceled || err == context.DeadlineExceeded {
				return
			}
			logger.Warnf("workerLoop: workerID=%d dequeue error: %v, continuing", workerID, err)
			continue
		}

		if err := handler(ctx, job); err != nil {
			logger.Warnf("workerLoop: workerID=%d handler error for job type=%s: %v", workerID, job.Type, err)
			continue
		}
	}
}
