// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package ingest implements C6, the ingestion pipeline from spec.md §4.8:
// validate -> extract -> chunk -> embed -> index, per file, with per-file
// failure isolation and error_stage classification.
package ingest

import "strings"

// targetTokens and overlapTokens implement spec.md §4.8 step 3: "roughly
// 500-1000 tokens with a small overlap (~50 tokens)". There is no
// tokenizer library in the dependency set, so a token is approximated as
// one whitespace-delimited word, which is close enough for chunk sizing
// purposes and keeps chunking allocation-free of any external model.
const (
	targetTokens  = 800
	overlapTokens = 50
)

// Chunker splits extracted document text into semantic chunks.
type Chunker struct {
	targetTokens  int
	overlapTokens int
}

// NewChunker creates a chunker using the default target/overlap sizes.
func NewChunker() *Chunker {
	return &Chunker{targetTokens: targetTokens, overlapTokens: overlapTokens}
}

// word is one whitespace-delimited token with its byte offsets in the
// original text, so chunk boundaries can be snapped to sentence endings
// without losing the source text's exact spacing.
type word struct {
	start, end int
}

// ChunkText splits text into contiguous, 0-indexed, overlapping chunks.
// Empty text yields zero chunks (spec.md §4.8 step 3: "Empty text yields
// zero chunks"); the caller is responsible for treating that as a
// processing-stage failure.
func (c *Chunker) ChunkText(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	words := splitWords(text)
	if len(words) == 0 {
		return []string{}, nil
	}

	var chunks []string
	start := 0
	for start < len(words) {
		end := start + c.targetTokens
		if end > len(words) {
			end = len(words)
		}
		end = snapToSentenceBoundary(text, words, start, end)

		chunkStart := words[start].start
		chunkEnd := words[end-1].end
		chunk := strings.TrimSpace(text[chunkStart:chunkEnd])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(words) {
			break
		}
		next := end - c.overlapTokens
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks, nil
}

// splitWords tokenizes text into whitespace-delimited words with byte
// offsets.
func splitWords(text string) []word {
	var words []word
	inWord := false
	wordStart := 0
	for i, r := range text {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		if !isSpace && !inWord {
			inWord = true
			wordStart = i
		} else if isSpace && inWord {
			inWord = false
			words = append(words, word{start: wordStart, end: i})
		}
	}
	if inWord {
		words = append(words, word{start: wordStart, end: len(text)})
	}
	return words
}

// snapToSentenceBoundary moves end backward, within the last
// few words of the target window, to land after a sentence-ending
// punctuation mark when one is nearby; otherwise it returns end
// unmodified.
func snapToSentenceBoundary(text string, words []word, start, end int) int {
	if end >= len(words) {
		return end
	}
	lookback := end - 15
	if lookback < start+1 {
		lookback = start + 1
	}
	for i := end; i > lookback; i-- {
		lastChar := text[words[i-1].end-1]
		if lastChar == '.' || lastChar == '!' || lastChar == '?' {
			return i
		}
	}
	return end
}
