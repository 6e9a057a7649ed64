// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/northbound/seekkb/internal/logger"
	"github.com/northbound/seekkb/internal/parser"
)

const watchDebounce = 500 * time.Millisecond

// Watcher watches a single project's inbox directory and feeds newly
// created or modified files through the same per-file path
// upload_documents uses, so dropping a file into the inbox has the same
// effect as calling upload_documents with that one path. This is an
// optional supplement (spec.md's Non-goals exclude none of this by name):
// serve starts one for each project that exists when it starts.
type Watcher struct {
	pipeline  *Pipeline
	projectID string
	dir       string

	watcher   *fsnotify.Watcher
	debouncer *debouncer
	wg        sync.WaitGroup
	cancel    context.CancelFunc
}

// NewWatcher creates a Watcher over dir for projectID, creating dir if it
// doesn't already exist.
func NewWatcher(pipeline *Pipeline, projectID, dir string) (*Watcher, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve inbox path: %w", err)
	}
	if _, err := os.Stat(absDir); os.IsNotExist(err) {
		if err := os.MkdirAll(absDir, 0o755); err != nil {
			return nil, fmt.Errorf("create inbox directory: %w", err)
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fw.Add(absDir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch inbox directory: %w", err)
	}

	return &Watcher{
		pipeline:  pipeline,
		projectID: projectID,
		dir:       absDir,
		watcher:   fw,
	}, nil
}

// Start begins watching in the background; Stop or cancelling ctx ends it.
func (w *Watcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.debouncer = newDebouncer(watchDebounce, func(path string) {
		w.ingest(ctx, path)
	})

	w.wg.Add(1)
	go w.loop(ctx)
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if parser.IsTemporaryFile(event.Name) || !parser.IsSupportedFile(event.Name) {
				continue
			}
			w.debouncer.trigger(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("ingest watcher error for %s: %v", w.dir, err)
		}
	}
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		// Already moved or deleted by the time the debounce fired.
		return
	}
	_, summary := w.pipeline.UploadDocuments(ctx, w.projectID, []string{path})
	if summary.Failed > 0 {
		logger.Warnf("ingest watcher: %s failed to ingest", path)
	} else {
		logger.Debugf("ingest watcher: %s ingested", path)
	}
}

// Stop cancels the watch loop and releases the fsnotify watcher.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.debouncer != nil {
		w.debouncer.stop()
	}
	w.watcher.Close()
	w.wg.Wait()
}
