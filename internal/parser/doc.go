// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf16"

	"github.com/richardlehane/mscfb"
)

// parseDOC extracts text from a legacy (OLE2 compound-file) .doc document.
// mscfb is already pulled in transitively by excelize for legacy .xls
// support; this promotes it to a direct dependency to read the
// WordDocument stream. There is no structured Word-binary-format parser
// in the dependency set, so text is recovered heuristically: the stream
// is scanned for runs of UTF-16LE text, which is where Word stores the
// bulk of a document's characters. Formatting, tables, and embedded
// objects are not reconstructed.
func parseDOC(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open DOC file: %w", err)
	}
	defer f.Close()

	doc, err := mscfb.New(f)
	if err != nil {
		return "", fmt.Errorf("failed to open DOC compound file: %w", err)
	}

	var wordStream []byte
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Name == "WordDocument" {
			buf := make([]byte, entry.Size)
			if _, err := doc.Read(buf); err != nil {
				return "", fmt.Errorf("failed to read WordDocument stream: %w", err)
			}
			wordStream = buf
			break
		}
	}
	if wordStream == nil {
		return "", fmt.Errorf("no WordDocument stream found in %s", filePath)
	}

	text := extractUTF16Text(wordStream)
	if text == "" {
		return "", fmt.Errorf("no text extracted from DOC: %s", filePath)
	}
	return text, nil
}

// extractUTF16Text scans raw bytes for runs of plausible UTF-16LE text
// (printable characters and common whitespace) and decodes each run of
// three or more characters, joining runs with a newline. Non-text control and formatting bytes
// interspersed by the binary format are dropped.
func extractUTF16Text(data []byte) string {
	var out bytes.Buffer
	var run []uint16

	flush := func() {
		if len(run) < 3 {
			run = run[:0]
			return
		}
		decoded := utf16.Decode(run)
		out.WriteString(string(decoded))
		out.WriteByte('\n')
		run = run[:0]
	}

	for i := 0; i+1 < len(data); i += 2 {
		code := uint16(data[i]) | uint16(data[i+1])<<8
		if isPlausibleDocChar(code) {
			run = append(run, code)
		} else {
			flush()
		}
	}
	flush()

	return string(bytes.TrimSpace(out.Bytes()))
}

func isPlausibleDocChar(code uint16) bool {
	if code == '\t' || code == '\n' || code == '\r' {
		return true
	}
	return code >= 0x20 && code < 0x2028
}
