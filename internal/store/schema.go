// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package store

import "fmt"

// bootstrapSchema idempotently creates the five tables named in spec.md §3
// plus the vector index and secondary B-tree indexes. Runs once per init.
// CASCADE DELETE is declared on every foreign key where a parent exists,
// per the ownership rules in §3 (Project owns Document/VectorChunk/
// Conversation; Document owns VectorChunk; Conversation owns Message).
func (s *Store) bootstrapSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			status TEXT NOT NULL,
			document_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			filename TEXT NOT NULL,
			file_path TEXT NOT NULL,
			file_size INTEGER NOT NULL,
			mime_type TEXT,
			content_hash TEXT NOT NULL,
			processing_status TEXT NOT NULL,
			chunk_count INTEGER NOT NULL DEFAULT 0,
			metadata TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE(project_id, content_hash)
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS vector_documents (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			chunk_index INTEGER NOT NULL,
			content TEXT NOT NULL,
			embedding VECTOR(%d) NOT NULL,
			metadata TEXT,
			created_at TEXT NOT NULL,
			UNIQUE(document_id, chunk_index)
		)`, VectorDimension),
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			message_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			sources TEXT,
			created_at TEXT NOT NULL
		)`,

		// Approximate-NN index over the vector column, searched exclusively
		// through the ORDER BY ... APPROXIMATE form in §4.6.
		`CREATE INDEX IF NOT EXISTS idx_vector_documents_ann ON vector_documents USING ANN(embedding) WITH (metric = 'l2')`,

		`CREATE INDEX IF NOT EXISTS idx_documents_project_id ON documents(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_vector_documents_project_id ON vector_documents(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_vector_documents_document_id ON vector_documents(document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_project_id ON conversations(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation_id ON messages(conversation_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
