package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-analyzer/internal/shared/storage/object"
)

func TestSaveOpenDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s := New(dir)
	ctx := context.Background()

	n, err := s.SaveWithKey(ctx, "1700000000000-123456789.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("SaveWithKey: %v", err)
	}
	if n != 8 {
		t.Fatalf("expected 8 bytes written, got %d", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "1700000000000-123456789.pdf")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}

	rc, err := s.Open(ctx, "1700000000000-123456789.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "%PDF-1.4" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := s.Delete(ctx, "1700000000000-123456789.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "1700000000000-123456789.pdf"); err != nil {
		t.Fatalf("second Delete should be a no-op, got %v", err)
	}
	if _, err := s.Open(ctx, "1700000000000-123456789.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRejectsTraversal(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()
	for _, key := range []string{"../escape.pdf", "/etc/passwd", ""} {
		if _, err := s.SaveWithKey(ctx, key, "", strings.NewReader("x")); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
		if err := s.Delete(ctx, key); err == nil {
			t.Fatalf("expected delete error for key %q", key)
		}
	}
}
