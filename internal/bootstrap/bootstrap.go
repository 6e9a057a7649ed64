// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package bootstrap runs the engine's three-step startup sequence from
// spec.md §5 ("Startup ordering"): the desktop shell paints immediately
// while runtime+package init, configuration load, and engine state
// construction run in a background task and publish startup-progress
// events. Commands that need the engine before it's ready see
// seekkberr.ErrInitializing.
package bootstrap

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/northbound/seekkb/internal/chat"
	"github.com/northbound/seekkb/internal/config"
	"github.com/northbound/seekkb/internal/embeddings"
	"github.com/northbound/seekkb/internal/eventbus"
	"github.com/northbound/seekkb/internal/ingest"
	"github.com/northbound/seekkb/internal/llm"
	"github.com/northbound/seekkb/internal/logger"
	"github.com/northbound/seekkb/internal/seekkberr"
	"github.com/northbound/seekkb/internal/store"
)

const totalSteps = 3

// State is everything a ready engine needs to serve the command surface.
type State struct {
	Config   *config.Config
	Store    *store.Store
	Embedder embeddings.Embedder
	LLM      llm.Client
	Chat     *chat.Pipeline
	Ingest   *ingest.Pipeline
}

// Holder publishes State once startup completes, returning
// ErrInitializing for every caller that arrives first.
type Holder struct {
	state atomic.Pointer[State]
	bus   *eventbus.Bus
}

// NewHolder creates an empty Holder publishing progress on bus.
func NewHolder(bus *eventbus.Bus) *Holder {
	return &Holder{bus: bus}
}

// Get returns the ready State, or ErrInitializing if startup has not
// completed.
func (h *Holder) Get() (*State, error) {
	s := h.state.Load()
	if s == nil {
		return nil, seekkberr.ErrInitializing
	}
	return s, nil
}

// Install publishes state, making every subsequent Get call succeed. Run
// calls this at the end of step 3; tests that don't want to stand up a
// live storage helper and external services can call it directly with a
// hand-built State.
func (h *Holder) Install(s *State) {
	h.state.Store(s)
}

// Options carries everything Run needs to construct a State that the
// caller cannot derive from config alone (paths resolved by the caller's
// flags/environment, mainly).
type Options struct {
	ConfigPath string
	DataDir    string
	PythonPath string
	ScriptPath string
}

// Run performs the three-step sequence, publishing a startup-progress
// event before/after each step, and installs the resulting State into
// holder on success. It runs synchronously; callers invoke it from a
// background goroutine so the shell can paint immediately.
func Run(ctx context.Context, opts Options, holder *Holder) error {
	publish := func(step int, status, message string, err error) {
		holder.bus.Publish(eventbus.StartupProgress(step, totalSteps, status, message, err))
	}

	// Step 1: runtime + package.
	publish(1, "progress", "initializing runtime", nil)
	logger.Printf("[bootstrap] step 1/3: runtime+package")
	publish(1, "success", "runtime ready", nil)

	// Step 2: configuration load.
	publish(2, "progress", "loading configuration", nil)
	cfg, err := config.Load(opts.ConfigPath, opts.DataDir)
	if err != nil {
		publish(2, "error", "configuration load failed", err)
		return err
	}
	publish(2, "success", "configuration loaded", nil)

	// Step 3: engine state (store, embedder, llm, pipelines).
	publish(3, "progress", "starting storage helper", nil)
	state, err := buildState(ctx, cfg, opts)
	if err != nil {
		publish(3, "error", "engine state failed to start", err)
		return err
	}
	publish(3, "success", "engine ready", nil)

	holder.Install(state)
	return nil
}

func buildState(ctx context.Context, cfg *config.Config, opts Options) (*State, error) {
	s, err := store.Open(ctx, cfg.Database.PythonPath, cfg.Database.ScriptPath, cfg.Database.DataDir, cfg.Database.Name)
	if err != nil {
		return nil, err
	}

	embedTimeout := timeoutSeconds(cfg.App.EmbedTimeoutSecond)
	embedder, err := embeddings.NewEmbedder(cfg.API, embedTimeout)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	llmClient, err := llm.NewOpenAIClient(cfg.API.APIKey, cfg.API.BaseURL, cfg.API.ChatModel)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	chatPipeline := chat.NewPipeline(s, embedder, llmClient, cfg.App.RetrievalTopK, cfg.App.HistoryWindow)
	ingestPipeline := ingest.NewPipeline(s, embedder, cfg.App.MaxFileSizeBytes, embedTimeout)

	return &State{
		Config:   cfg,
		Store:    s,
		Embedder: embedder,
		LLM:      llmClient,
		Chat:     chatPipeline,
		Ingest:   ingestPipeline,
	}, nil
}

func timeoutSeconds(n int) time.Duration {
	if n <= 0 {
		n = 60
	}
	return time.Duration(n) * time.Second
}
