// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package store implements C3, the store adapter from spec.md §4.3: a
// small typed surface above the raw bridge RPC that applies parameter
// interpolation, in-memory ordering, and schema bootstrap. No other
// package touches the database files.
package store

import "time"

// ProjectStatus is the lifecycle state of a Project (spec.md §3).
type ProjectStatus string

const (
	ProjectCreated    ProjectStatus = "Created"
	ProjectProcessing ProjectStatus = "Processing"
	ProjectReady      ProjectStatus = "Ready"
	ProjectError      ProjectStatus = "Error"
)

// DocumentStatus is the lifecycle state of a Document (spec.md §3).
type DocumentStatus string

const (
	DocumentUploaded   DocumentStatus = "Uploaded"
	DocumentProcessing DocumentStatus = "Processing"
	DocumentIndexed    DocumentStatus = "Indexed"
	DocumentFailed     DocumentStatus = "Failed"
)

// MessageRole identifies who produced a Message.
type MessageRole string

const (
	RoleUser      MessageRole = "User"
	RoleAssistant MessageRole = "Assistant"
	RoleSystem    MessageRole = "System"
)

// Project is a named bucket of documents, owning its Documents,
// VectorChunks, and Conversations.
type Project struct {
	ID            string
	Name          string
	Description   string
	Status        ProjectStatus
	DocumentCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Document is one uploaded file belonging to a Project.
type Document struct {
	ID               string
	ProjectID        string
	Filename         string
	FilePath         string
	FileSize         int64
	MimeType         string
	ContentHash      string
	ProcessingStatus DocumentStatus
	ChunkCount       int
	Metadata         string // opaque JSON, spec.md §3
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// VectorChunk is an embedded text slice of a Document. Embedding is left
// empty ([]float32{}) on anything returned from a query per the
// projection policy in spec.md §4.3: no caller needs the raw vector
// post-retrieval.
type VectorChunk struct {
	ID         string
	ProjectID  string
	DocumentID string
	ChunkIndex int
	Content    string
	Embedding  []float32
	Metadata   string
	CreatedAt  time.Time
}

// Source is the (filename, relevance_score) pair attached to a retrieval
// result or an Assistant Message (spec.md §3/§4.7).
type Source struct {
	Filename       string
	RelevanceScore float64
}

// ScoredChunk pairs a VectorChunk with its similarity score, the return
// shape of similarity_search (spec.md §4.6).
type ScoredChunk struct {
	Chunk      VectorChunk
	Similarity float64
}

// Conversation is a chat thread scoped to a Project.
type Conversation struct {
	ID           string
	ProjectID    string
	Title        string
	MessageCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Message is one chat turn. Sources is only ever populated for
// role=Assistant (spec.md §3 invariant).
type Message struct {
	ID             string
	ConversationID string
	Role           MessageRole
	Content        string
	Sources        []Source
	CreatedAt      time.Time
}
