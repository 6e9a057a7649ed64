// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/northbound/seekkb/internal/bootstrap"
	"github.com/northbound/seekkb/internal/bridge"
	"github.com/northbound/seekkb/internal/chat"
	"github.com/northbound/seekkb/internal/commands"
	"github.com/northbound/seekkb/internal/config"
	"github.com/northbound/seekkb/internal/embeddings"
	"github.com/northbound/seekkb/internal/eventbus"
	"github.com/northbound/seekkb/internal/ingest"
	"github.com/northbound/seekkb/internal/llm"
	"github.com/northbound/seekkb/internal/store"
)

type mockClient struct{}

func (m *mockClient) Execute(sql string) (int64, error)       { return 1, nil }
func (m *mockClient) Query(sql string) ([]bridge.Row, error)  { return nil, nil }
func (m *mockClient) QueryOne(sql string) (bridge.Row, error) { return bridge.Row{}, nil }
func (m *mockClient) Commit() error                           { return nil }
func (m *mockClient) Rollback() error                         { return nil }
func (m *mockClient) Ping() error                              { return nil }
func (m *mockClient) Close() error                             { return nil }

func newTestEngine(t *testing.T) (*commands.Engine, *bootstrap.Holder, *bootstrap.State) {
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
	return commands.New(holder, bus, t.TempDir()+"/config.json"), holder, state
}

func TestHandleHealth_ServiceUnavailableBeforeReady(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	HandleHealth(engine)(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestHandleHealth_OKAfterReady(t *testing.T) {
	engine, holder, state := newTestEngine(t)
	holder.Install(state)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	HandleHealth(engine)(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestHandleHealth_RejectsNonGet(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	HandleHealth(engine)(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}
