// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/northbound/seekkb/internal/logger"
)

// ParseFile routes filePath to the extractor for its extension and returns
// the extracted text, unchunked. internal/ingest.Pipeline calls this as
// the extract step of the upload_documents sequence (spec.md §4.8 step 2);
// an extension with no case below is UnsupportedFileType (spec.md §6).
func ParseFile(filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	var text string
	var err error

	switch ext {
	case ".pdf":
		text, err = parsePDF(filePath)
	case ".docx":
		text, err = parseDOCX(filePath)
	case ".doc":
		text, err = parseDOC(filePath)
	case ".rtf":
		text, err = parseRTF(filePath)
	case ".txt", ".md":
		text, err = parseText(filePath)
	case ".xlsx", ".xls":
		text, err = parseExcel(filePath)
	case ".html", ".htm":
		text, err = parseHTML(filePath)
	case ".eml":
		text, err = parseEmail(filePath)
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}

	if err != nil {
		return "", err
	}

	snippet := text
	if len(snippet) > 150 {
		snippet = snippet[:150] + "..."
	}
	logger.Debugf("parsed %s: %d characters, starts %q", filePath, len(text), snippet)

	return text, nil
}

// IsSupportedFile checks if a file extension is supported
func IsSupportedFile(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	supported := []string{".pdf", ".docx", ".doc", ".rtf", ".txt", ".md", ".xlsx", ".xls", ".html", ".htm", ".eml"}
	for _, s := range supported {
		if ext == s {
			return true
		}
	}
	return false
}

// IsTemporaryFile checks if a file is a temporary file (e.g., ~$doc.docx)
func IsTemporaryFile(filePath string) bool {
	base := filepath.Base(filePath)
	// Check for common temporary file patterns
	if strings.HasPrefix(base, "~$") {
		return true
	}
	if strings.HasPrefix(base, "._") {
		return true
	}
	if strings.HasSuffix(base, ".tmp") {
		return true
	}
	return false
}
