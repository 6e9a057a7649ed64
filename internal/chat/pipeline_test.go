// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package chat

import (
	"context"
	"testing"
	"time"

	"github.com/northbound/seekkb/internal/llm"
	"github.com/northbound/seekkb/internal/store"
)

type fakeStore struct {
	conv          store.Conversation
	chunks        []store.ScoredChunk
	docs          map[string]store.Document
	history       []store.Message
	messages      []createdMessage
	touchCalls    int
	messageCount  int
}

type createdMessage struct {
	conversationID string
	role           store.MessageRole
	content        string
	sources        []store.Source
}

func (f *fakeStore) SimilaritySearch(projectID string, queryEmbedding []float32, k int) ([]store.ScoredChunk, error) {
	return f.chunks, nil
}

func (f *fakeStore) GetConversation(id string) (store.Conversation, error) {
	return f.conv, nil
}

func (f *fakeStore) GetDocument(id string) (store.Document, error) {
	return f.docs[id], nil
}

func (f *fakeStore) RecentMessages(conversationID string, n int) ([]store.Message, error) {
	return f.history, nil
}

func (f *fakeStore) CreateMessage(conversationID string, role store.MessageRole, content string, sources []store.Source) (store.Message, error) {
	f.messages = append(f.messages, createdMessage{conversationID, role, content, sources})
	f.messageCount++
	return store.Message{ConversationID: conversationID, Role: role, Content: content, Sources: sources}, nil
}

func (f *fakeStore) TouchConversation(id string, messageCount int) error {
	f.touchCalls++
	return nil
}

func (f *fakeStore) CountMessages(conversationID string) (int, error) {
	return f.messageCount, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}
func (fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}
func (fakeEmbedder) Dimension() int { return 2 }

func newFakeStore() *fakeStore {
	return &fakeStore{
		conv: store.Conversation{ID: "c1", ProjectID: "p1"},
		docs: map[string]store.Document{"d1": {ID: "d1", Filename: "report.txt"}},
		chunks: []store.ScoredChunk{
			{Chunk: store.VectorChunk{DocumentID: "d1", ChunkIndex: 0, Content: "mitochondria is the powerhouse"}, Similarity: 0.9},
		},
	}
}

func TestPipeline_SendMessage_FullLifecycle(t *testing.T) {
	fs := newFakeStore()
	mockLLM := llm.NewMockClient("the answer is 42")
	p := NewPipeline(fs, fakeEmbedder{}, mockLLM, 5, 8)

	events, err := p.SendMessage(context.Background(), "c1", "what powers the cell?")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	var kinds []EventKind
	var fullText string
	var sawSources bool
	for e := range events {
		kinds = append(kinds, e.Kind)
		if e.Kind == OnContext {
			sawSources = len(e.Sources) > 0
		}
		if e.Kind == OnEnd {
			fullText = e.FullText
		}
	}

	if len(kinds) < 3 || kinds[0] != OnStart {
		t.Fatalf("unexpected event sequence: %v", kinds)
	}
	if kinds[len(kinds)-1] != OnEnd {
		t.Errorf("last event = %v, want OnEnd", kinds[len(kinds)-1])
	}
	if !sawSources {
		t.Error("expected onContext to carry at least one source")
	}
	if fullText != "the answer is 42" {
		t.Errorf("FullText = %q, want %q", fullText, "the answer is 42")
	}

	if len(fs.messages) != 2 {
		t.Fatalf("expected 2 persisted messages (user+assistant), got %d", len(fs.messages))
	}
	if fs.messages[0].role != store.RoleUser {
		t.Errorf("first persisted message role = %v, want User", fs.messages[0].role)
	}
	if fs.messages[1].role != store.RoleAssistant {
		t.Errorf("second persisted message role = %v, want Assistant", fs.messages[1].role)
	}
	if len(fs.messages[1].sources) == 0 {
		t.Error("expected assistant message to carry sources")
	}
	if fs.touchCalls != 2 {
		t.Errorf("TouchConversation called %d times, want 2 (steps 1 and 7)", fs.touchCalls)
	}
}

func TestPipeline_SendMessage_RejectsConcurrentTurn(t *testing.T) {
	fs := newFakeStore()
	mockLLM := llm.NewMockClient("a slow response that takes a while to stream word by word")
	p := NewPipeline(fs, fakeEmbedder{}, mockLLM, 5, 8)

	events, err := p.SendMessage(context.Background(), "c1", "first question")
	if err != nil {
		t.Fatalf("first SendMessage failed: %v", err)
	}

	_, err = p.SendMessage(context.Background(), "c1", "second question")
	if err == nil {
		t.Fatal("expected Busy error for a concurrent turn on the same conversation")
	}

	for range events {
	}
}

func TestPipeline_SendMessage_CancellationStopsBeforeAssistantPersist(t *testing.T) {
	fs := newFakeStore()
	mockLLM := llm.NewMockClient(repeatWord(500))
	p := NewPipeline(fs, fakeEmbedder{}, mockLLM, 5, 8)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := p.SendMessage(ctx, "c1", "question")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	<-events // onStart
	cancel()

	for range events {
	}

	time.Sleep(10 * time.Millisecond)

	assistantPersisted := false
	for _, m := range fs.messages {
		if m.role == store.RoleAssistant {
			assistantPersisted = true
		}
	}
	if assistantPersisted {
		t.Error("assistant turn should not be persisted after the consumer drops the stream")
	}
	if len(fs.messages) != 1 {
		t.Errorf("expected only the user turn retained, got %d messages", len(fs.messages))
	}
}

func repeatWord(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += "word "
	}
	return out
}
