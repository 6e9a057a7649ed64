// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateFiles_EmptyListYieldsZeroSummary(t *testing.T) {
	result, err := ValidateFiles("proj1", nil, 1024, nil)
	if err != nil {
		t.Fatalf("ValidateFiles failed: %v", err)
	}
	if result.Summary != (Summary{}) {
		t.Errorf("summary = %+v, want zero value", result.Summary)
	}
}

func TestValidateFiles_NoSideEffects(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	dupCalls := 0
	dup := func(projectID, hash string) (bool, error) {
		dupCalls++
		return false, nil
	}

	result, err := ValidateFiles("proj1", []string{path}, 1024, dup)
	if err != nil {
		t.Fatalf("ValidateFiles failed: %v", err)
	}
	if len(result.Valid) != 1 || result.Valid[0] != path {
		t.Errorf("Valid = %v, want [%s]", result.Valid, path)
	}
	if dupCalls != 1 {
		t.Errorf("dup called %d times, want 1", dupCalls)
	}
	// Calling it again must produce the identical result: no state was
	// mutated by the first call.
	result2, err := ValidateFiles("proj1", []string{path}, 1024, dup)
	if err != nil {
		t.Fatalf("ValidateFiles failed: %v", err)
	}
	if len(result2.Valid) != 1 {
		t.Errorf("second call Valid = %v, want 1 entry", result2.Valid)
	}
}

func TestValidateFiles_MissingFileIsInvalid(t *testing.T) {
	result, err := ValidateFiles("proj1", []string{"/no/such/file.txt"}, 1024, nil)
	if err != nil {
		t.Fatalf("ValidateFiles failed: %v", err)
	}
	if len(result.Invalid) != 1 {
		t.Fatalf("expected 1 invalid file, got %d", len(result.Invalid))
	}
	if result.Invalid[0].ErrorStage != stageValidation {
		t.Errorf("ErrorStage = %q, want %q", result.Invalid[0].ErrorStage, stageValidation)
	}
}

func TestValidateFiles_OversizeIsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	if err := os.WriteFile(path, make([]byte, 2048), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	result, err := ValidateFiles("proj1", []string{path}, 100, nil)
	if err != nil {
		t.Fatalf("ValidateFiles failed: %v", err)
	}
	if len(result.Invalid) != 1 {
		t.Fatalf("expected 1 invalid file, got %d", len(result.Invalid))
	}
}

func TestValidateFiles_UnsupportedExtensionIsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	result, err := ValidateFiles("proj1", []string{path}, 1024, nil)
	if err != nil {
		t.Fatalf("ValidateFiles failed: %v", err)
	}
	if len(result.Invalid) != 1 {
		t.Fatalf("expected 1 invalid file, got %d", len(result.Invalid))
	}
}

func TestValidateFiles_DuplicateHashIsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	dup := func(projectID, hash string) (bool, error) { return true, nil }
	result, err := ValidateFiles("proj1", []string{path}, 1024, dup)
	if err != nil {
		t.Fatalf("ValidateFiles failed: %v", err)
	}
	if len(result.Invalid) != 1 {
		t.Fatalf("expected 1 invalid file, got %d", len(result.Invalid))
	}
}
