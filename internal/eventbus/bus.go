// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package eventbus fans out the engine's push surface (startup-progress,
// chat-stream, document_processing, project_status, per spec.md §6) to
// however many UI subscribers are currently attached.
package eventbus

import "sync"

// Kind identifies which of the four event-surface streams an Event belongs
// to.
type Kind string

const (
	StartupProgressKind Kind = "startup-progress"
	ChatStream         Kind = "chat-stream"
	DocumentProcessing Kind = "document_processing"
	ProjectStatus      Kind = "project_status"
)

// Event is the single envelope carried over the bus; only the fields that
// apply to Kind are populated.
type Event struct {
	Kind Kind `json:"kind"`

	// startup-progress
	Step      int    `json:"step,omitempty"`
	TotalSteps int   `json:"total_steps,omitempty"`
	Status    string `json:"status,omitempty"` // progress | success | error

	// chat-stream
	Type     string   `json:"type,omitempty"` // token | context | complete | error
	Content  string   `json:"content,omitempty"`
	Sources  []Source `json:"sources,omitempty"`
	FullText string   `json:"full_text,omitempty"`

	// shared free-form fields
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
	Error   string `json:"error,omitempty"`

	// routing: which client mailbox this belongs to, e.g. a conversation or
	// project id. Empty means "broadcast to every subscriber".
	ClientID string `json:"-"`
}

// Source mirrors the (filename, relevance_score) pair from spec.md §3/§4.7.
type Source struct {
	Filename       string  `json:"filename"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Bus manages subscriptions and fan-out, grounded on the per-client
// subscriber map used by the drone file-watch event broadcaster.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[chan Event]bool
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subscribers: make(map[chan Event]bool)}
}

// Subscribe registers a new channel that will receive every event published
// after this call. The caller owns the channel and must call Unsubscribe
// when done.
func (b *Bus) Subscribe() chan Event {
	ch := make(chan Event, 32)
	b.mu.Lock()
	b.subscribers[ch] = true
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a channel previously returned by Subscribe.
func (b *Bus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscribers[ch] {
		delete(b.subscribers, ch)
		close(ch)
	}
}

// Publish delivers event to every current subscriber, non-blocking: a
// subscriber that isn't draining its channel fast enough skips this event
// rather than stalling the publisher.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// StartupProgress is a convenience constructor for the three-step bootstrap
// sequence in spec.md §5 ("Startup ordering").
func StartupProgress(step, total int, status, message string, err error) Event {
	e := Event{Kind: StartupProgressKind, Step: step, TotalSteps: total, Status: status, Message: message}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}
