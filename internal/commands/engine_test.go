// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/northbound/seekkb/internal/bootstrap"
	"github.com/northbound/seekkb/internal/bridge"
	"github.com/northbound/seekkb/internal/chat"
	"github.com/northbound/seekkb/internal/config"
	"github.com/northbound/seekkb/internal/embeddings"
	"github.com/northbound/seekkb/internal/eventbus"
	"github.com/northbound/seekkb/internal/ingest"
	"github.com/northbound/seekkb/internal/llm"
	"github.com/northbound/seekkb/internal/seekkberr"
	"github.com/northbound/seekkb/internal/store"
)

// mockClient is a deterministic rpcClient double, mirroring
// internal/store/store_test.go's double of the same name.
type mockClient struct {
	queryRows []bridge.Row
	queryOne  bridge.Row
}

func (m *mockClient) Execute(sql string) (int64, error)      { return 1, nil }
func (m *mockClient) Query(sql string) ([]bridge.Row, error) { return m.queryRows, nil }
func (m *mockClient) QueryOne(sql string) (bridge.Row, error) { return m.queryOne, nil }
func (m *mockClient) Commit() error                           { return nil }
func (m *mockClient) Rollback() error                         { return nil }
func (m *mockClient) Ping() error                             { return nil }
func (m *mockClient) Close() error                            { return nil }

// newTestEngine builds an Engine plus the Holder and State it would
// eventually publish, without standing up a live storage helper or
// external services: tests call holder.Install(state) themselves once
// they want GetAppStatus/CheckInitializationStatus/etc. to see a ready
// engine.
func newTestEngine(t *testing.T) (*Engine, *bootstrap.Holder, *bootstrap.State) {
	t.Helper()
	s := store.New(&mockClient{})

	embedder, err := embeddings.NewEmbedder(config.APIConfig{Provider: "mock"}, time.Second)
	if err != nil {
		t.Fatalf("NewEmbedder failed: %v", err)
	}
	llmClient := llm.NewMockClient("ok")

	state := &bootstrap.State{
		Config:   &config.Config{App: config.AppConfig{MaxFileSizeBytes: 1024 * 1024, RetrievalTopK: 5, HistoryWindow: 8}},
		Store:    s,
		Embedder: embedder,
		LLM:      llmClient,
		Chat:     chat.NewPipeline(s, embedder, llmClient, 5, 8),
		Ingest:   ingest.NewPipeline(s, embedder, 1024*1024, time.Second),
	}

	bus := eventbus.New()
	holder := bootstrap.NewHolder(bus)
	return New(holder, bus, t.TempDir()+"/config.json"), holder, state
}

func TestEngine_GetProjects_InitializingBeforeReady(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.GetProjects()
	if !errors.Is(err, seekkberr.ErrInitializing) {
		t.Errorf("error = %v, want ErrInitializing", err)
	}
}

func TestEngine_GetAppStatus_NotReadyBeforeHolderPublishes(t *testing.T) {
	e, _, _ := newTestEngine(t)
	status, err := e.GetAppStatus()
	if err != nil {
		t.Fatalf("GetAppStatus should not error, got %v", err)
	}
	if status.Ready {
		t.Error("expected Ready=false before the engine finishes bootstrap")
	}
}

func TestEngine_CreateProject_EmptyFileListNoIngestion(t *testing.T) {
	e, holder, state := newTestEngine(t)
	holder.Install(state)

	project, results, err := e.CreateProject(context.Background(), "Docs", "", nil)
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if project.Name != "Docs" {
		t.Errorf("project.Name = %q, want %q", project.Name, "Docs")
	}
	if len(results) != 0 {
		t.Errorf("expected no ingestion results for an empty file list, got %d", len(results))
	}
}

func TestEngine_CheckInitializationStatus(t *testing.T) {
	e, holder, state := newTestEngine(t)
	if e.CheckInitializationStatus() {
		t.Error("expected false before bootstrap publishes state")
	}
	holder.Install(state)
	if !e.CheckInitializationStatus() {
		t.Error("expected true after bootstrap publishes state")
	}
}
