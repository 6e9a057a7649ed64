// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// parsePDF extracts text page by page via go-fitz's MuPDF bindings,
// joining pages with a blank line. A page that fails to extract (a scanned
// image page with no text layer, say) is skipped rather than failing the
// whole document.
func parsePDF(filePath string) (string, error) {
	doc, err := fitz.New(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var textBuilder strings.Builder
	numPages := doc.NumPage()

	for i := 0; i < numPages; i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			continue
		}
		textBuilder.WriteString(pageText)
		if i < numPages-1 {
			textBuilder.WriteString("\n\n")
		}
	}

	extractedText := strings.TrimSpace(textBuilder.String())
	if extractedText == "" {
		return "", fmt.Errorf("no text extracted from PDF: %s", filePath)
	}

	return extractedText, nil
}
