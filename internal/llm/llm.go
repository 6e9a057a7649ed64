// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package llm implements C5, the LLM client from spec.md §4.5: a chat
// client whose chat_stream operation returns a lazy, cancellable sequence
// of string deltas over server-sent events.
package llm

import "context"

// ItemKind discriminates the tagged union a stream emits, mirroring the
// onStart/onContext/onToken/onEnd/onError lifecycle from spec.md §4.7 step
// 6.
type ItemKind string

const (
	ItemStart ItemKind = "start"
	ItemToken ItemKind = "token"
	ItemEnd   ItemKind = "end"
	ItemError ItemKind = "error"
)

// StreamItem is one element of a TokenStream. Only the fields relevant to
// Kind are populated: Delta for ItemToken, FullText for ItemEnd, Err for
// ItemError.
type StreamItem struct {
	Kind     ItemKind
	Delta    string
	FullText string
	Err      error
}

// TokenStream is the lazy, cancellable sequence chat_stream returns.
// Cancellation is by dropping the stream (cancelling ctx); the client
// aborts the underlying HTTP request, per spec.md §4.5.
type TokenStream <-chan StreamItem

// Client is the chat-completion half of the external LLM service.
type Client interface {
	// ChatStream opens a single-pass, non-restartable SSE stream for one
	// turn. Fails with LlmError synchronously for transport errors before
	// the first token; mid-stream errors instead terminate the returned
	// stream with an ItemError.
	ChatStream(ctx context.Context, systemPrompt, userPrompt string) (TokenStream, error)
}
