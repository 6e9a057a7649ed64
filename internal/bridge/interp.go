// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package bridge

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Ident marks a string as a SQL identifier (table or column name). Plain
// strings are never accepted in identifier position: spec.md §9 calls the
// interpolation routine "security-critical" and requires that callers be
// forbidden from constructing SQL that mixes untrusted identifiers, so the
// type system is the enforcement here, not a runtime check alone.
type Ident string

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Quote renders an Ident for inclusion in a query. It panics on a malformed
// identifier: identifiers are supplied by this codebase, never by end
// users, so a bad one is a programming error, not user input to reject
// gracefully.
func (id Ident) Quote() string {
	if !identPattern.MatchString(string(id)) {
		panic(fmt.Sprintf("bridge: invalid identifier %q", string(id)))
	}
	return string(id)
}

// Literal renders v as SQL-literal text per the rules in spec.md §4.2:
// strings are single-quoted with embedded quotes doubled, booleans become
// 1/0, nulls become NULL, numbers stringify bare, and lists/vectors
// serialize as JSON array text in single quotes (the store's native
// vector-literal syntax).
func Literal(v Value) string {
	switch v.kind {
	case kindNull:
		return "NULL"
	case kindBool:
		if v.b {
			return "1"
		}
		return "0"
	case kindInt:
		return strconv.FormatInt(v.i, 10)
	case kindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case kindText:
		return quoteString(v.s)
	case kindBytes:
		return quoteString(encodeBytesLiteral(v.bytes))
	case kindList:
		return quoteString(vectorLiteral(v.list))
	case kindMap:
		encoded, err := json.Marshal(v.m)
		if err != nil {
			// A map that fails to marshal is a programming error upstream;
			// degrade to an empty JSON object rather than emit broken SQL.
			return quoteString("{}")
		}
		return quoteString(string(encoded))
	default:
		return "NULL"
	}
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// vectorLiteral renders a list of numeric values as JSON array text, the
// form the store expects for a vector column literal (§4.2: "lists
// serialize as JSON arrays (used for vector literals)").
func vectorLiteral(items []Value) string {
	parts := make([]string, len(items))
	for i, it := range items {
		switch it.kind {
		case kindInt:
			parts[i] = strconv.FormatInt(it.i, 10)
		case kindFloat:
			parts[i] = strconv.FormatFloat(it.f, 'g', -1, 64)
		default:
			parts[i] = Literal(it)
		}
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func encodeBytesLiteral(b []byte) string {
	// Bytes already travel base64-encoded on the wire (§4.2); re-encoding
	// here keeps the literal representation consistent with what the
	// helper will hand back on read.
	return base64.StdEncoding.EncodeToString(b)
}

// VectorLiteral renders a []float32 query embedding as the JSON-array
// literal text used in the ORDER BY ... APPROXIMATE clause of §4.6.
func VectorLiteral(vec []float32) string {
	parts := make([]string, len(vec))
	for i, f := range vec {
		parts[i] = strconv.FormatFloat(float64(f), 'g', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
