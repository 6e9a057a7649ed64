// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package chat

import (
	"fmt"
	"strings"

	"github.com/northbound/seekkb/internal/store"
)

// systemPrompt fixes the "knowledge-base assistant" persona (spec.md §4.7
// step 5).
const systemPrompt = `You are a knowledge-base assistant. Answer the user's question using only the information in the provided context. If the context does not contain the answer, say so plainly rather than guessing.`

// chunkDelimiter separates retrieved chunk texts in the user prompt; it is
// deliberately distinctive so it cannot be confused with ordinary
// document content.
const chunkDelimiter = "\n-----\n"

// buildUserPrompt concatenates retrieved chunk texts, each annotated with
// its origin filename, ahead of the literal question (spec.md §4.7 step
// 5: "User role is the literal question preceded by the concatenation of
// retrieved chunk texts ... annotated with origin filename"). Recent
// history (step 4) is rendered as a transcript ahead of the retrieved
// context, so the model sees prior turns without them being mistaken for
// retrieved knowledge-base content.
func buildUserPrompt(history []store.Message, scored []store.ScoredChunk, filenames map[string]string, question string) string {
	var b strings.Builder

	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, m := range history {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
		b.WriteString(chunkDelimiter)
	}

	for i, sc := range scored {
		if i > 0 {
			b.WriteString(chunkDelimiter)
		}
		filename := filenames[sc.Chunk.DocumentID]
		fmt.Fprintf(&b, "[Source: %s]\n%s", filename, sc.Chunk.Content)
	}
	if len(scored) > 0 {
		b.WriteString(chunkDelimiter)
	}
	b.WriteString(question)
	return b.String()
}
