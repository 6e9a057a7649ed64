// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package store

import (
	"encoding/json"
	"sort"

	"github.com/northbound/seekkb/internal/bridge"
)

// decodeProject turns one bridge.Row into a Project.
func decodeProject(row bridge.Row) Project {
	return Project{
		ID:            row["id"].Text(),
		Name:          row["name"].Text(),
		Description:   row["description"].Text(),
		Status:        ProjectStatus(row["status"].Text()),
		DocumentCount: int(row["document_count"].Int()),
		CreatedAt:     row["created_at"].Time(),
		UpdatedAt:     row["updated_at"].Time(),
	}
}

// sortProjects applies the ordering policy from spec.md §4.3: updated_at
// desc, stable.
func sortProjects(projects []Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
	})
}

func decodeDocument(row bridge.Row) Document {
	return Document{
		ID:               row["id"].Text(),
		ProjectID:        row["project_id"].Text(),
		Filename:         row["filename"].Text(),
		FilePath:         row["file_path"].Text(),
		FileSize:         row["file_size"].Int(),
		MimeType:         row["mime_type"].Text(),
		ContentHash:      row["content_hash"].Text(),
		ProcessingStatus: DocumentStatus(row["processing_status"].Text()),
		ChunkCount:       int(row["chunk_count"].Int()),
		Metadata:         row["metadata"].Text(),
		CreatedAt:        row["created_at"].Time(),
		UpdatedAt:        row["updated_at"].Time(),
	}
}

// sortDocuments applies filename-ascending order, stable: spec.md §4.3's
// ordering table has no entry for documents, so this layer picks a
// deterministic presentation order rather than leaving it to child-process
// row order.
func sortDocuments(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Filename < docs[j].Filename
	})
}

// sortChunks applies the (document_id, chunk_index) asc, asc ordering
// policy from spec.md §4.3.
func sortChunks(chunks []VectorChunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].DocumentID != chunks[j].DocumentID {
			return chunks[i].DocumentID < chunks[j].DocumentID
		}
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})
}

func decodeChunk(row bridge.Row) VectorChunk {
	return VectorChunk{
		ID:         row["id"].Text(),
		ProjectID:  row["project_id"].Text(),
		DocumentID: row["document_id"].Text(),
		ChunkIndex: int(row["chunk_index"].Int()),
		Content:    row["content"].Text(),
		Embedding:  []float32{}, // projection policy: never returned, §4.3
		Metadata:   row["metadata"].Text(),
		CreatedAt:  row["created_at"].Time(),
	}
}

// sortScoredChunks keeps the top-k selection in SimilaritySearch (chunks.go) stable:
// similarity desc, ties broken by earlier chunk_index then lower
// document_id (spec.md §4.6).
func sortScoredChunks(scored []ScoredChunk) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		if scored[i].Chunk.ChunkIndex != scored[j].Chunk.ChunkIndex {
			return scored[i].Chunk.ChunkIndex < scored[j].Chunk.ChunkIndex
		}
		return scored[i].Chunk.DocumentID < scored[j].Chunk.DocumentID
	})
}

func decodeConversation(row bridge.Row) Conversation {
	return Conversation{
		ID:           row["id"].Text(),
		ProjectID:    row["project_id"].Text(),
		Title:        row["title"].Text(),
		MessageCount: int(row["message_count"].Int()),
		CreatedAt:    row["created_at"].Time(),
		UpdatedAt:    row["updated_at"].Time(),
	}
}

// sortConversations applies updated_at desc, stable.
func sortConversations(convs []Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
}

func decodeMessage(row bridge.Row) Message {
	msg := Message{
		ID:             row["id"].Text(),
		ConversationID: row["conversation_id"].Text(),
		Role:           MessageRole(row["role"].Text()),
		Content:        row["content"].Text(),
		CreatedAt:      row["created_at"].Time(),
	}
	if sourcesText := row["sources"]; !sourcesText.IsNull() && sourcesText.Text() != "" {
		var sources []Source
		if err := json.Unmarshal([]byte(sourcesText.Text()), &sources); err == nil {
			msg.Sources = sources
		}
	}
	return msg
}

// sortMessages applies created_at asc, stable — the history-load order
// required by spec.md §4.3 and §5's ordering guarantees.
func sortMessages(messages []Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
}

// encodeSources serializes a Source list to the JSON text stored in
// messages.sources; an empty/nil list stores as NULL.
func encodeSources(sources []Source) (string, bool) {
	if len(sources) == 0 {
		return "", false
	}
	data, err := json.Marshal(sources)
	if err != nil {
		return "", false
	}
	return string(data), true
}
