// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/northbound/seekkb/internal/config"
	"github.com/northbound/seekkb/internal/embeddings"
	"github.com/northbound/seekkb/internal/ingest"
	"github.com/northbound/seekkb/internal/queue"
)

func TestDispatch_RoutesPruneAndIngestJobs(t *testing.T) {
	st := &fakePruneStore{messages: seedMessages(6)}
	embedder, err := embeddings.NewEmbedder(config.APIConfig{Provider: "mock"}, time.Second)
	if err != nil {
		t.Fatalf("NewEmbedder: %v", err)
	}
	pipeline := ingest.NewPipeline(&fakeDocStore{}, embedder, 0, time.Second)
	handler := Dispatch(st, pipeline)

	pruneJob, err := NewPruneConversationJob(PruneConversationPayload{ConversationID: "c1", KeepLast: 2})
	if err != nil {
		t.Fatalf("NewPruneConversationJob: %v", err)
	}
	if err := handler(context.Background(), pruneJob); err != nil {
		t.Fatalf("handler(prune): %v", err)
	}
	if len(st.deleted) != 4 {
		t.Errorf("deleted = %d, want 4", len(st.deleted))
	}

	unknown := queue.Job{Type: "something_else"}
	if err := handler(context.Background(), unknown); err != nil {
		t.Errorf("handler(unknown) returned error: %v", err)
	}
}
