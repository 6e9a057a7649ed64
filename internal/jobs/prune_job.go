// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package jobs holds the engine's one-shot background jobs: small units of
// work dispatched through internal/queue rather than run inline on a
// command-surface call.
package jobs

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/northbound/seekkb/internal/queue"
	"github.com/northbound/seekkb/internal/store"
)

// JobTypePruneConversation identifies a recent-conversation pruning job on
// the queue.
const JobTypePruneConversation = "prune_conversation"

// PruneConversationPayload carries the conversation to prune and the
// number of most recent messages to keep. The periodic sweep in
// cmd/seekkbd/commands/background.go passes four times the configured
// history window (40 when unset), so a prune run never removes a turn the
// chat pipeline still reads at send time.
type PruneConversationPayload struct {
	ConversationID string    `json:"conversationId"`
	KeepLast       int       `json:"keepLast"`
	RequestedAt    time.Time `json:"requestedAt"`
}

// NewPruneConversationJob creates a new job for pruning a conversation's
// message history.
func NewPruneConversationJob(payload PruneConversationPayload) (queue.Job, error) {
	log.Printf("NewPruneConversationJob: conversationId=%s keepLast=%d", payload.ConversationID, payload.KeepLast)

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		log.Printf("NewPruneConversationJob: failed to marshal payload: %v", err)
		return queue.Job{}, err
	}

	job := queue.Job{
		Type:      JobTypePruneConversation,
		Payload:   payloadJSON,
		CreatedAt: time.Now(),
	}

	log.Printf("NewPruneConversationJob: created job type=%s createdAt=%s", job.Type, job.CreatedAt.Format(time.RFC3339))
	return job, nil
}

// EnqueuePruneConversation enqueues a prune job for conversationID.
func EnqueuePruneConversation(ctx context.Context, q queue.Queue, conversationID string, keepLast int) error {
	job, err := NewPruneConversationJob(PruneConversationPayload{
		ConversationID: conversationID,
		KeepLast:       keepLast,
		RequestedAt:    time.Now(),
	})
	if err != nil {
		log.Printf("EnqueuePruneConversation: failed to create job: %v", err)
		return err
	}

	if err := q.Enqueue(ctx, job); err != nil {
		log.Printf("EnqueuePruneConversation: failed to enqueue job: %v", err)
		return err
	}

	log.Printf("EnqueuePruneConversation: successfully enqueued job")
	return nil
}

// pruneStore is the narrow slice of *store.Store a prune job needs.
type pruneStore interface {
	ListMessages(conversationID string) ([]store.Message, error)
	DeleteMessage(id string) error
}

// HandlePruneConversation returns a queue.Job handler that trims s's
// persisted messages for a conversation down to the last KeepLast turns.
// This is a best-effort compaction of the rows the chat pipeline reads for
// history (spec.md §4.7 step 4): it never touches the chunks or documents a
// conversation's project owns, and a failure here never blocks
// send_message.
func HandlePruneConversation(s pruneStore) func(ctx context.Context, job queue.Job) error {
	return func(ctx context.Context, job queue.Job) error {
		log.Printf("HandlePruneConversation: processing job type=%s createdAt=%s", job.Type, job.CreatedAt.Format(time.RFC3339))

		if job.Type != JobTypePruneConversation {
			log.Printf("HandlePruneConversation: unexpected job type %s, expected %s", job.Type, JobTypePruneConversation)
			return nil
		}

		var payload PruneConversationPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			log.Printf("HandlePruneConversation: failed to unmarshal payload: %v", err)
			return err
		}
		if payload.KeepLast <= 0 {
			return nil
		}

		messages, err := s.ListMessages(payload.ConversationID)
		if err != nil {
			log.Printf("HandlePruneConversation: ListMessages failed: %v", err)
			return err
		}
		if len(messages) <= payload.KeepLast {
			return nil
		}

		toDrop := messages[:len(messages)-payload.KeepLast]
		for _, m := range toDrop {
			if err := s.DeleteMessage(m.ID); err != nil {
				log.Printf("HandlePruneConversation: DeleteMessage(%s) failed: %v", m.ID, err)
				return err
			}
		}
		log.Printf("HandlePruneConversation: conversationId=%s pruned=%d kept=%d", payload.ConversationID, len(toDrop), payload.KeepLast)
		return nil
	}
}
