// Package store reads and writes the JSON array files passed between stages.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ReadJSON decodes the file at path into a T.
func ReadJSON[T any](path string) (T, error) {
	var out T
	data, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return out, nil
}

// ReadJSONArrays concatenates the arrays stored in several files, in order.
func ReadJSONArrays[T any](paths ...string) ([]T, error) {
	var out []T
	for _, path := range paths {
		items, err := ReadJSON[[]T](path)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

// WriteJSON writes v as two-space indented UTF-8 JSON, leaving HTML and
// non-ASCII characters unescaped. Parent directories are created.
func WriteJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
