// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package chat

import (
	"context"
	"sync"

	"github.com/northbound/seekkb/internal/embeddings"
	"github.com/northbound/seekkb/internal/llm"
	"github.com/northbound/seekkb/internal/seekkberr"
	"github.com/northbound/seekkb/internal/store"
)

// conversationStore is the subset of *store.Store the chat pipeline needs,
// narrowed to an interface for testability.
type conversationStore interface {
	retriever
	GetConversation(id string) (store.Conversation, error)
	GetDocument(id string) (store.Document, error)
	RecentMessages(conversationID string, n int) ([]store.Message, error)
	CreateMessage(conversationID string, role store.MessageRole, content string, sources []store.Source) (store.Message, error)
	TouchConversation(id string, messageCount int) error
	CountMessages(conversationID string) (int, error)
}

// Pipeline runs the retrieval-augmented chat turn described in spec.md
// §4.7.
type Pipeline struct {
	store         conversationStore
	embedder      embeddings.Embedder
	llm           llm.Client
	retrievalK    int
	historyWindow int

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewPipeline builds a chat Pipeline.
func NewPipeline(s conversationStore, embedder embeddings.Embedder, llmClient llm.Client, retrievalK, historyWindow int) *Pipeline {
	return &Pipeline{
		store:         s,
		embedder:      embedder,
		llm:           llmClient,
		retrievalK:    retrievalK,
		historyWindow: historyWindow,
		inFlight:      make(map[string]bool),
	}
}

// EventKind identifies one event in the lifecycle spec.md §4.7 step 6
// describes.
type EventKind string

const (
	OnStart   EventKind = "start"
	OnContext EventKind = "context"
	OnToken   EventKind = "token"
	OnEnd     EventKind = "end"
	OnError   EventKind = "error"
)

// Event is one lifecycle event emitted while a turn is in flight.
type Event struct {
	Kind     EventKind
	Sources  []store.Source
	Delta    string
	FullText string
	Err      error
}

// SendMessage runs one full chat turn and returns a channel of lifecycle
// events, closed after onEnd/onError. Cancelling ctx (spec.md §4.7
// "Cancellation: if the consumer drops the event stream, steps 6 and 7
// abort") stops delivery; the user-turn row persisted in step 1 is
// retained regardless.
func (p *Pipeline) SendMessage(ctx context.Context, conversationID, content string) (<-chan Event, error) {
	if !p.tryLock(conversationID) {
		return nil, seekkberr.ErrBusy
	}

	// Step 1: persist user turn.
	if _, err := p.store.CreateMessage(conversationID, store.RoleUser, content, nil); err != nil {
		p.unlock(conversationID)
		return nil, err
	}
	if err := p.bumpConversation(conversationID); err != nil {
		p.unlock(conversationID)
		return nil, err
	}

	events := make(chan Event, 8)
	go p.run(ctx, conversationID, content, events)
	return events, nil
}

func (p *Pipeline) run(ctx context.Context, conversationID, content string, events chan<- Event) {
	defer close(events)
	defer p.unlock(conversationID)

	send := func(e Event) bool {
		select {
		case events <- e:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !send(Event{Kind: OnStart}) {
		return
	}

	conv, err := p.store.GetConversation(conversationID)
	if err != nil {
		send(Event{Kind: OnError, Err: err})
		return
	}

	// Steps 2-3: embed query, retrieve context.
	scored, err := retrieve(ctx, p.embedder, p.store, conv.ProjectID, content, p.retrievalK)
	if err != nil {
		send(Event{Kind: OnError, Err: err})
		return
	}

	filenames := p.resolveFilenames(scored)
	sources := sourcesOf(scored, filenames)
	if !send(Event{Kind: OnContext, Sources: sources}) {
		return
	}

	// Step 4: load recent history (excludes the user turn just persisted,
	// which the prompt already carries verbatim as the question).
	history, err := p.store.RecentMessages(conversationID, p.historyWindow)
	if err != nil {
		send(Event{Kind: OnError, Err: err})
		return
	}
	if n := len(history); n > 0 && history[n-1].Content == content && history[n-1].Role == store.RoleUser {
		history = history[:n-1]
	}

	// Step 5: build prompt.
	userPrompt := buildUserPrompt(history, scored, filenames, content)

	// Step 6: open LLM stream.
	stream, err := p.llm.ChatStream(ctx, systemPrompt, userPrompt)
	if err != nil {
		send(Event{Kind: OnError, Err: err})
		return
	}

	var fullText string
	for item := range stream {
		select {
		case <-ctx.Done():
			return
		default:
		}
		switch item.Kind {
		case llm.ItemToken:
			fullText += item.Delta
			if !send(Event{Kind: OnToken, Delta: item.Delta}) {
				return
			}
		case llm.ItemEnd:
			fullText = item.FullText
		case llm.ItemError:
			send(Event{Kind: OnError, Err: item.Err})
			return
		}
	}
	if ctx.Err() != nil {
		return
	}

	// Step 7: persist assistant turn on success.
	if _, err := p.store.CreateMessage(conversationID, store.RoleAssistant, fullText, sources); err != nil {
		send(Event{Kind: OnError, Err: err})
		return
	}
	if err := p.bumpConversation(conversationID); err != nil {
		send(Event{Kind: OnError, Err: err})
		return
	}

	send(Event{Kind: OnEnd, FullText: fullText})
}

func (p *Pipeline) bumpConversation(conversationID string) error {
	count, err := p.store.CountMessages(conversationID)
	if err != nil {
		return err
	}
	return p.store.TouchConversation(conversationID, count)
}

// resolveFilenames looks up the filename for every unique document_id
// among the retrieved chunks, so buildUserPrompt/sourcesOf can annotate
// each chunk with its origin without repeated lookups.
func (p *Pipeline) resolveFilenames(scored []store.ScoredChunk) map[string]string {
	filenames := make(map[string]string)
	for _, sc := range scored {
		if _, ok := filenames[sc.Chunk.DocumentID]; ok {
			continue
		}
		doc, err := p.store.GetDocument(sc.Chunk.DocumentID)
		if err != nil {
			filenames[sc.Chunk.DocumentID] = ""
			continue
		}
		filenames[sc.Chunk.DocumentID] = doc.Filename
	}
	return filenames
}

// tryLock enforces the Busy error for a concurrent send_message on the
// same conversation (an Open Question resolution, recorded in DESIGN.md:
// one in-flight turn per conversation at a time, mirroring the single
// outstanding RPC per child the rest of the engine already assumes).
func (p *Pipeline) tryLock(conversationID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inFlight[conversationID] {
		return false
	}
	p.inFlight[conversationID] = true
	return true
}

func (p *Pipeline) unlock(conversationID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inFlight, conversationID)
}
