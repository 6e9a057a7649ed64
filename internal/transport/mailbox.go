// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package server

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/northbound/seekkb/internal/eventbus"
)

// mailboxTTL bounds how long an offline client's queued events survive.
// Ingestion and chat turns both finish well inside a day; a week is
// generous headroom for a UI that stays detached over a weekend.
const mailboxTTL = 7 * 24 * time.Hour

// Mailbox holds per-client events published while no websocket is attached
// for that client, so a UI that reattaches later doesn't miss the
// completion of work that kept running in the background (spec.md §6's
// event surface — ingestion in particular can outlive a detached UI).
type Mailbox interface {
	Push(ctx context.Context, clientID string, event eventbus.Event) error
	Drain(ctx context.Context, clientID string) ([]eventbus.Event, error)
}

// RedisMailbox is a Mailbox backed by a Redis list per client, grounded on
// internal/server/websocket_handler.go's own offline-notification mailbox.
type RedisMailbox struct {
	client *redis.Client
}

// NewRedisMailbox wraps an existing Redis client.
func NewRedisMailbox(client *redis.Client) *RedisMailbox {
	return &RedisMailbox{client: client}
}

func mailboxKey(clientID string) string {
	return "seekkb:mailbox:" + clientID
}

// Push appends event to clientID's mailbox and refreshes its TTL.
func (m *RedisMailbox) Push(ctx context.Context, clientID string, event eventbus.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	key := mailboxKey(clientID)
	if err := m.client.LPush(ctx, key, payload).Err(); err != nil {
		return err
	}
	return m.client.Expire(ctx, key, mailboxTTL).Err()
}

// Drain pops and returns every queued event for clientID, oldest first.
func (m *RedisMailbox) Drain(ctx context.Context, clientID string) ([]eventbus.Event, error) {
	key := mailboxKey(clientID)
	var events []eventbus.Event
	for {
		result, err := m.client.RPop(ctx, key).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return events, err
		}
		var event eventbus.Event
		if err := json.Unmarshal([]byte(result), &event); err != nil {
			log.Printf("RedisMailbox.Drain: failed to unmarshal queued event for %s: %v", clientID, err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}
