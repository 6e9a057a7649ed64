// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mnako/letters"
)

// parseEmail extracts a short header block (subject, sender, date) plus
// body text from an .eml file, preferring the plain-text part over HTML.
func parseEmail(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open EML file: %w", err)
	}
	defer file.Close()

	email, err := letters.ParseEmail(file)
	if err != nil {
		return "", fmt.Errorf("failed to parse EML file: %w", err)
	}

	var builder strings.Builder

	// Format email metadata
	if email.Headers.Subject != "" {
		builder.WriteString(fmt.Sprintf("Subject: %s\n", email.Headers.Subject))
	}

	if len(email.Headers.From) > 0 {
		from := email.Headers.From[0]
		sender := ""
		if from.Name != "" {
			sender = fmt.Sprintf("%s <%s>", from.Name, from.Address)
		} else {
			sender = from.Address
		}
		builder.WriteString(fmt.Sprintf("Sender: %s\n", sender))
	}

	if !email.Headers.Date.IsZero() {
		builder.WriteString(fmt.Sprintf("Date: %s\n", email.Headers.Date.Format(time.RFC3339)))
	}

	// Add body text
	builder.WriteString("\n")

	// Prefer the plain-text part; an HTML-only email is run through the
	// same goquery-based stripper parseHTML uses so markup doesn't end up
	// inside a chunk.
	bodyText := ""
	if email.Text != "" {
		bodyText = email.Text
	} else if email.HTML != "" {
		if stripped, err := stripHTMLText(strings.NewReader(email.HTML)); err == nil {
			bodyText = stripped
		} else {
			bodyText = email.HTML
		}
	}

	if bodyText != "" {
		builder.WriteString(bodyText)
	}

	result := strings.TrimSpace(builder.String())
	if result == "" {
		return "", fmt.Errorf("no content extracted from EML: %s", filePath)
	}

	return result, nil
}
