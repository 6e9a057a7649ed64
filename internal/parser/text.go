// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"fmt"
	"os"
)

// parseText reads a plain-text or Markdown file verbatim; no markup
// stripping applies since a .md file's prose is already chunk-friendly.
func parseText(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read text file: %w", err)
	}

	text := string(content)
	if text == "" {
		return "", fmt.Errorf("file is empty: %s", filePath)
	}

	return text, nil
}

