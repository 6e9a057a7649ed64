// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// parseRTF extracts plain text from a Rich Text Format document.
//
// No RTF library appears anywhere in the dependency set or the wider
// example corpus, so this is a hand-rolled control-word stripper rather
// than an adaptation of an existing library, using the standard library
// only. It walks the token stream directly instead of
// using a single regular expression, since RTF's escaped braces
// (\{, \}) and hex/unicode character escapes (\'hh, \uN) cannot be
// stripped correctly with regex alone.
func parseRTF(filePath string) (string, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read RTF file: %w", err)
	}

	text, err := stripRTF(string(raw))
	if err != nil {
		return "", fmt.Errorf("failed to strip RTF markup: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// stripRTF walks an RTF byte stream and emits the document's visible
// text, discarding control words, control symbols, and group markers.
// Content inside \fonttbl, \colortbl, \stylesheet, and \*-prefixed
// (destination) groups is skipped entirely.
func stripRTF(s string) (string, error) {
	var out strings.Builder
	depth := 0
	skipDepth := -1 // group depth at which a skipped destination started; -1 means not skipping

	i := 0
	for i < len(s) {
		c := s[i]
		switch c {
		case '{':
			depth++
			i++
		case '}':
			if skipDepth != -1 && depth <= skipDepth {
				skipDepth = -1
			}
			depth--
			i++
		case '\\':
			word, skip, consumed := readControl(s[i:])
			i += consumed
			if skip && skipDepth == -1 {
				skipDepth = depth
			}
			if word != "" && skipDepth == -1 {
				out.WriteString(word)
			}
		case '\r', '\n':
			i++
		default:
			if skipDepth == -1 {
				out.WriteByte(c)
			}
			i++
		}
	}

	return out.String(), nil
}

var skipDestinations = map[string]bool{
	"fonttbl": true, "colortbl": true, "stylesheet": true, "info": true,
	"generator": true, "pict": true, "object": true, "themedata": true,
	"datastore": true, "xmlnstbl": true, "listtable": true, "listoverridetable": true,
}

// readControl parses one control word/symbol starting at a backslash and
// returns any literal text it represents (e.g. \par -> "\n", \'e9 ->
// the corresponding byte), whether it marks a destination to skip, and
// how many bytes were consumed from s.
func readControl(s string) (text string, skip bool, consumed int) {
	if len(s) < 2 {
		return "", false, len(s)
	}
	switch s[1] {
	case '\\', '{', '}':
		return string(s[1]), false, 2
	case '\'':
		if len(s) >= 4 {
			if b, err := strconv.ParseUint(s[2:4], 16, 8); err == nil {
				return string(rune(b)), false, 4
			}
		}
		return "", false, 2
	case '*':
		return "", true, 2
	}

	j := 1
	for j < len(s) && isAlpha(s[j]) {
		j++
	}
	if j == 1 {
		// Non-alphabetic control symbol (e.g. \~, \-, \_): no visible text.
		return "", false, 2
	}
	word := s[1:j]

	numStart := j
	for j < len(s) && (s[j] == '-' || isDigit(s[j])) {
		j++
	}
	consumed = j
	if j < len(s) && s[j] == ' ' {
		consumed++
	}
	_ = numStart

	switch word {
	case "par", "line":
		return "\n", false, consumed
	case "tab":
		return "\t", false, consumed
	}
	if skipDestinations[word] {
		return "", true, consumed
	}
	return "", false, consumed
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
