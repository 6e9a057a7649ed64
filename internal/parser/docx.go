// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// parseDOCX extracts text from a modern (OOXML) .docx document; parseDOC
// below handles the legacy OLE2 format.
func parseDOCX(filePath string) (string, error) {
	doc, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX file: %w", err)
	}
	defer doc.Close()

	// Extract text content
	text := doc.Editable().GetContent()
	
	// Strip XML tags and clean up
	text = strings.ReplaceAll(text, "</w:p>", "\n")
	text = regexp.MustCompile(`<[^>]*>`).ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no text extracted from DOCX: %s", filePath)
	}

	return text, nil
}

