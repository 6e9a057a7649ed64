// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseHTML extracts visible text from an HTML document, dropping
// script/style/noscript content before flattening the DOM to a string.
func parseHTML(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open HTML file: %w", err)
	}
	defer file.Close()

	text, err := stripHTMLText(file)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	if text == "" {
		return "", fmt.Errorf("no text extracted from HTML: %s", filePath)
	}
	return text, nil
}

// stripHTMLText parses r as HTML and returns its visible text with
// script/style/noscript content removed. parseEmail reuses this for the
// HTML-body fallback so an HTML-only email doesn't leak raw markup into a
// chunk.
func stripHTMLText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})
	return strings.TrimSpace(doc.Text()), nil
}
