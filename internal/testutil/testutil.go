// Package testutil provides test helpers shared across platconn packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates a file with the given content in the specified directory.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// Records is a connector sink that keeps everything it is sent.
type Records struct {
	Items []any
}

// Send appends record.
func (r *Records) Send(record any) error {
	r.Items = append(r.Items, record)
	return nil
}
