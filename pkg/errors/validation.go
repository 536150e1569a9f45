package errors

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidatePath validates a graph file path received from an untrusted
// caller (the HTTP API resolves paths against its graph directory).
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateGraphFilename checks that a file name looks like a graph file:
// a plain base name ending in .txt or .json.
func ValidateGraphFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "graph filename cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "graph filename cannot contain path separators")
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".json":
		return nil
	}
	return New(ErrCodeInvalidPath, "graph filename must end in .txt or .json: %q", name)
}

// ValidateReportID validates a report identifier (a UUID string).
func ValidateReportID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "report id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid report id %q", id)
	}
	return nil
}

// ValidateLabels validates a raw label assignment for a graph with n
// vertices: one non-negative label per vertex.
func ValidateLabels(labels []int, n int) error {
	if len(labels) != n {
		return New(ErrCodeInvalidPartition, "partition has %d labels, graph has %d vertices", len(labels), n)
	}
	for v, l := range labels {
		if l < 0 {
			return New(ErrCodeInvalidPartition, "vertex %d has negative label %d", v, l)
		}
	}
	return nil
}
