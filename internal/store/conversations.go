// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/northbound/seekkb/internal/bridge"
	"github.com/northbound/seekkb/internal/seekkberr"
)

// CreateConversation inserts a new Conversation scoped to projectID.
func (s *Store) CreateConversation(projectID, title string) (Conversation, error) {
	now := time.Now().UTC()
	c := Conversation{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	sql := fmt.Sprintf(
		`INSERT INTO conversations (id, project_id, title, message_count, created_at, updated_at) VALUES (%s, %s, %s, %s, %s, %s)`,
		bridge.Literal(bridge.Text(c.ID)),
		bridge.Literal(bridge.Text(c.ProjectID)),
		bridge.Literal(bridge.Text(c.Title)),
		bridge.Literal(bridge.Int(0)),
		bridge.Literal(bridge.Text(formatTime(c.CreatedAt))),
		bridge.Literal(bridge.Text(formatTime(c.UpdatedAt))),
	)
	if _, err := s.exec(sql); err != nil {
		return Conversation{}, err
	}
	return c, nil
}

// GetConversation returns the Conversation with id, or ErrNotFound.
func (s *Store) GetConversation(id string) (Conversation, error) {
	sql := fmt.Sprintf(`SELECT id, project_id, title, message_count, created_at, updated_at FROM conversations WHERE id = %s`, bridge.Literal(bridge.Text(id)))
	row, err := s.queryOne(sql)
	if err != nil {
		return Conversation{}, err
	}
	if row == nil {
		return Conversation{}, seekkberr.New(seekkberr.NotFound, fmt.Sprintf("conversation %s not found", id))
	}
	return decodeConversation(row), nil
}

// ListConversations returns Conversations for projectID (or every
// Conversation when projectID is empty), ordered updated_at desc per
// spec.md §4.3.
func (s *Store) ListConversations(projectID string) ([]Conversation, error) {
	sql := `SELECT id, project_id, title, message_count, created_at, updated_at FROM conversations`
	if projectID != "" {
		sql += fmt.Sprintf(` WHERE project_id = %s`, bridge.Literal(bridge.Text(projectID)))
	}
	rows, err := s.query(sql)
	if err != nil {
		return nil, err
	}
	convs := make([]Conversation, len(rows))
	for i, row := range rows {
		convs[i] = decodeConversation(row)
	}
	sortConversations(convs)
	return convs, nil
}

// RenameConversation updates a Conversation's title and bumps updated_at.
func (s *Store) RenameConversation(id, newTitle string) error {
	sql := fmt.Sprintf(`UPDATE conversations SET title = %s, updated_at = %s WHERE id = %s`,
		bridge.Literal(bridge.Text(newTitle)),
		bridge.Literal(bridge.Text(formatTime(time.Now().UTC()))),
		bridge.Literal(bridge.Text(id)),
	)
	_, err := s.exec(sql)
	return err
}

// TouchConversation bumps updated_at and sets message_count, used after
// persisting a turn (spec.md §4.7 steps 1 and 7).
func (s *Store) TouchConversation(id string, messageCount int) error {
	sql := fmt.Sprintf(`UPDATE conversations SET message_count = %s, updated_at = %s WHERE id = %s`,
		bridge.Literal(bridge.Int(int64(messageCount))),
		bridge.Literal(bridge.Text(formatTime(time.Now().UTC()))),
		bridge.Literal(bridge.Text(id)),
	)
	_, err := s.exec(sql)
	return err
}

// DeleteConversation removes a Conversation; CASCADE DELETE removes its
// Messages.
func (s *Store) DeleteConversation(id string) error {
	sql := fmt.Sprintf(`DELETE FROM conversations WHERE id = %s`, bridge.Literal(bridge.Text(id)))
	_, err := s.exec(sql)
	return err
}
