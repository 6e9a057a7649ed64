// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/northbound/seekkb/internal/parser"
	"github.com/northbound/seekkb/internal/seekkberr"
)

// stageValidation through stageUnknown are the error_stage values spec.md
// §4.8 defines for a failed file.
const (
	stageValidation = "validation"
	stageReading    = "reading"
	stageProcessing = "processing"
	stageEmbedding  = "embedding"
	stageIndexing   = "indexing"
	stageUnknown    = "unknown"
)

// FileFailure describes why one file could not be ingested.
type FileFailure struct {
	Filename  string
	FilePath  string
	Error     string
	ErrorStage string
}

// ValidationResult is the return shape of validate_files (spec.md §4.8
// step 1): valid paths, invalid files with reasons, and a summary.
type ValidationResult struct {
	Valid   []string
	Invalid []FileFailure
	Summary Summary
}

// Summary is the {successful, failed, total} tally spec.md §4.8 returns
// from both validate_files and the full ingestion run.
type Summary struct {
	Total      int
	Successful int
	Failed     int
}

// hashLookup checks whether a project already has a Document with the
// given content hash, for de-duplication (spec.md §4.8: "reject files
// whose content hash matches an existing Document in the same project").
type hashLookup func(projectID, hash string) (bool, error)

// ValidateFiles performs existence, size, extension, and de-duplication
// checks for a whole batch up front, without any side effects (spec.md
// §4.8 step 1). maxFileSize is the configured size ceiling; dup reports
// whether a hash already exists for projectID.
func ValidateFiles(projectID string, paths []string, maxFileSize int64, dup hashLookup) (ValidationResult, error) {
	result := ValidationResult{Summary: Summary{Total: len(paths)}}

	for _, path := range paths {
		reason, err := validateOne(projectID, path, maxFileSize, dup)
		if err != nil {
			return ValidationResult{}, err
		}
		if reason == "" {
			result.Valid = append(result.Valid, path)
			result.Summary.Successful++
			continue
		}
		result.Invalid = append(result.Invalid, FileFailure{
			Filename:   filenameOf(path),
			FilePath:   path,
			Error:      reason,
			ErrorStage: stageValidation,
		})
		result.Summary.Failed++
	}

	return result, nil
}

// validateOne returns a non-empty rejection reason, or "" if path passes
// every validation check.
func validateOne(projectID, path string, maxFileSize int64, dup hashLookup) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Sprintf("file does not exist or is not readable: %v", err), nil
	}
	if info.IsDir() {
		return "path is a directory, not a file", nil
	}
	if info.Size() > maxFileSize {
		return fmt.Sprintf("file size %d bytes exceeds the %d byte limit", info.Size(), maxFileSize), nil
	}
	if !parser.IsSupportedFile(path) {
		return fmt.Sprintf("unsupported file extension: %s", path), nil
	}

	hash, err := hashFile(path)
	if err != nil {
		return fmt.Sprintf("failed to hash file: %v", err), nil
	}
	if dup != nil {
		exists, err := dup(projectID, hash)
		if err != nil {
			return "", seekkberr.Wrap(seekkberr.Internal, "de-duplication lookup failed", err).WithStage(stageValidation)
		}
		if exists {
			return "a document with identical content already exists in this project", nil
		}
	}

	return "", nil
}

// hashFile computes the SHA-256 content hash used for de-duplication.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func filenameOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}
