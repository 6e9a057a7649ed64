// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package server

import (
	"context"
	"sync"

	"github.com/northbound/seekkb/internal/eventbus"
)

// fakeMailbox is an in-memory Mailbox double for tests that don't want a
// live Redis instance.
type fakeMailbox struct {
	mu     sync.Mutex
	queues map[string][]eventbus.Event
}

func newFakeMailbox() *fakeMailbox {
	return &fakeMailbox{queues: make(map[string][]eventbus.Event)}
}

func (f *fakeMailbox) Push(ctx context.Context, clientID string, event eventbus.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queues[clientID] = append(f.queues[clientID], event)
	return nil
}

func (f *fakeMailbox) Drain(ctx context.Context, clientID string) ([]eventbus.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := f.queues[clientID]
	delete(f.queues, clientID)
	return events, nil
}
