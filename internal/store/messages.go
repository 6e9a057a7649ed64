// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/northbound/seekkb/internal/bridge"
)

// CreateMessage inserts a Message row. sources must be nil/empty for any
// role other than Assistant, the invariant from spec.md §3; callers (the
// chat pipeline) enforce that, this layer persists whatever it is given.
func (s *Store) CreateMessage(conversationID string, role MessageRole, content string, sources []Source) (Message, error) {
	now := time.Now().UTC()
	m := Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Sources:        sources,
		CreatedAt:      now,
	}

	sourcesValue := bridge.Null()
	if encoded, ok := encodeSources(sources); ok {
		sourcesValue = bridge.Text(encoded)
	}

	sql := fmt.Sprintf(
		`INSERT INTO messages (id, conversation_id, role, content, sources, created_at) VALUES (%s, %s, %s, %s, %s, %s)`,
		bridge.Literal(bridge.Text(m.ID)),
		bridge.Literal(bridge.Text(m.ConversationID)),
		bridge.Literal(bridge.Text(string(m.Role))),
		bridge.Literal(bridge.Text(m.Content)),
		bridge.Literal(sourcesValue),
		bridge.Literal(bridge.Text(formatTime(m.CreatedAt))),
	)
	if _, err := s.exec(sql); err != nil {
		return Message{}, err
	}
	return m, nil
}

// ListMessages returns every Message in conversationID, ordered created_at
// asc per spec.md §4.3 (history-load order).
func (s *Store) ListMessages(conversationID string) ([]Message, error) {
	sql := fmt.Sprintf(`SELECT id, conversation_id, role, content, sources, created_at FROM messages WHERE conversation_id = %s`, bridge.Literal(bridge.Text(conversationID)))
	rows, err := s.query(sql)
	if err != nil {
		return nil, err
	}
	messages := make([]Message, len(rows))
	for i, row := range rows {
		messages[i] = decodeMessage(row)
	}
	sortMessages(messages)
	return messages, nil
}

// RecentMessages returns the last n Messages in conversationID, in
// created_at asc order, for the chat pipeline's history-window load
// (spec.md §4.7 step 4: "last N, N>=8").
func (s *Store) RecentMessages(conversationID string, n int) ([]Message, error) {
	all, err := s.ListMessages(conversationID)
	if err != nil {
		return nil, err
	}
	if len(all) <= n {
		return all, nil
	}
	return all[len(all)-n:], nil
}

// CountMessages returns the actual row count for conversationID, used to
// keep conversations.message_count consistent (spec.md §3 invariant).
func (s *Store) CountMessages(conversationID string) (int, error) {
	sql := fmt.Sprintf(`SELECT id FROM messages WHERE conversation_id = %s`, bridge.Literal(bridge.Text(conversationID)))
	rows, err := s.query(sql)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// DeleteMessage removes a single Message row.
func (s *Store) DeleteMessage(id string) error {
	sql := fmt.Sprintf(`DELETE FROM messages WHERE id = %s`, bridge.Literal(bridge.Text(id)))
	_, err := s.exec(sql)
	return err
}

// ClearMessages deletes every Message in conversationID.
func (s *Store) ClearMessages(conversationID string) error {
	sql := fmt.Sprintf(`DELETE FROM messages WHERE conversation_id = %s`, bridge.Literal(bridge.Text(conversationID)))
	_, err := s.exec(sql)
	return err
}
