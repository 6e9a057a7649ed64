// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package commands

import (
	"context"
	"path/filepath"
	"time"

	"github.com/northbound/seekkb/internal/bootstrap"
	"github.com/northbound/seekkb/internal/ingest"
	"github.com/northbound/seekkb/internal/jobs"
	"github.com/northbound/seekkb/internal/logger"
	"github.com/northbound/seekkb/internal/queue"
	"github.com/northbound/seekkb/internal/worker"
)

// pruneSweepInterval is how often runPruneSweep walks every conversation
// looking for ones past the keep-last horizon. Conversations are usually
// pruned far less often than this fires; the sweep is cheap to no-op.
const pruneSweepInterval = 10 * time.Minute

const pruneWorkerCount = 2

// startBackgroundJobs runs once holder reports the engine ready: it starts
// the worker pool consuming jobQueue (fed by runPruneSweep below; the inbox
// watchers started here call the ingest pipeline directly rather than
// through the queue) and a ticker that periodically enqueues a prune job
// per conversation.
func startBackgroundJobs(ctx context.Context, holder *bootstrap.Holder, jobQueue queue.Queue, dataDir string) {
	st, err := holder.Get()
	if err != nil {
		logger.Errorf("startBackgroundJobs: engine reported ready but Get failed: %v", err)
		return
	}

	handler := jobs.Dispatch(st.Store, st.Ingest)
	go func() {
		if err := worker.StartWorkers(ctx, jobQueue, worker.HandlerFunc(handler), pruneWorkerCount); err != nil {
			logger.Errorf("worker pool stopped: %v", err)
		}
	}()

	go runPruneSweep(ctx, st, jobQueue)
	startInboxWatchers(ctx, st, dataDir)
}

// startInboxWatchers starts one internal/ingest.Watcher per existing
// project over "<dataDir>/projects/<id>/inbox", so a project's inbox
// folder starts empty and begins participating in ingestion the moment a
// file lands in it. Newly created projects don't get a watcher until the
// next serve restart; wiring CreateProject to start one live is left for
// when the desktop shell actually exposes an inbox folder to the user.
func startInboxWatchers(ctx context.Context, st *bootstrap.State, dataDir string) {
	projects, err := st.Store.ListProjects()
	if err != nil {
		logger.Warnf("startInboxWatchers: ListProjects failed: %v", err)
		return
	}
	for _, project := range projects {
		inboxDir := filepath.Join(dataDir, "projects", project.ID, "inbox")
		w, err := ingest.NewWatcher(st.Ingest, project.ID, inboxDir)
		if err != nil {
			logger.Warnf("startInboxWatchers: project %s: %v", project.ID, err)
			continue
		}
		w.Start(ctx)
		go func(w *ingest.Watcher) {
			<-ctx.Done()
			w.Stop()
		}(w)
	}
}

// runPruneSweep enqueues a prune_conversation job for every conversation on
// an interval, keeping a few times chat.Pipeline's own history window so a
// slow prune run never trims a turn the pipeline still needs.
func runPruneSweep(ctx context.Context, st *bootstrap.State, jobQueue queue.Queue) {
	ticker := time.NewTicker(pruneSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepOnce(ctx, st, jobQueue)
		}
	}
}

// sweepOnce enqueues one prune job per conversation. Split out of
// runPruneSweep so it can be exercised directly in tests without waiting on
// pruneSweepInterval.
func sweepOnce(ctx context.Context, st *bootstrap.State, jobQueue queue.Queue) {
	keepLast := st.Config.App.HistoryWindow * 4
	if keepLast <= 0 {
		keepLast = 40
	}

	conversations, err := st.Store.ListConversations("")
	if err != nil {
		logger.Warnf("sweepOnce: ListConversations failed: %v", err)
		return
	}
	for _, conv := range conversations {
		if err := jobs.EnqueuePruneConversation(ctx, jobQueue, conv.ID, keepLast); err != nil {
			logger.Warnf("sweepOnce: enqueue for %s failed: %v", conv.ID, err)
		}
	}
}
