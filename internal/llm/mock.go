// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package llm

import (
	"context"
	"strings"
)

// MockClient generates a deterministic fixed response split into
// word-sized deltas, for exercising the chat pipeline without a network
// dependency.
type MockClient struct {
	Response string
}

// NewMockClient builds a mock client that always answers with response.
func NewMockClient(response string) *MockClient {
	if response == "" {
		response = "This is a mock response."
	}
	return &MockClient{Response: response}
}

// ChatStream ignores systemPrompt/userPrompt and streams the configured
// response one word at a time.
func (m *MockClient) ChatStream(ctx context.Context, systemPrompt, userPrompt string) (TokenStream, error) {
	ch := make(chan StreamItem)
	go func() {
		defer close(ch)
		emit := func(item StreamItem) bool {
			select {
			case ch <- item:
				return true
			case <-ctx.Done():
				return false
			}
		}
		if !emit(StreamItem{Kind: ItemStart}) {
			return
		}
		words := strings.Fields(m.Response)
		for i, w := range words {
			select {
			case <-ctx.Done():
				return
			default:
			}
			delta := w
			if i < len(words)-1 {
				delta += " "
			}
			if !emit(StreamItem{Kind: ItemToken, Delta: delta}) {
				return
			}
		}
		emit(StreamItem{Kind: ItemEnd, FullText: m.Response})
	}()
	return ch, nil
}
