package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndRemove(t *testing.T) {
	store, err := NewAvatarStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewAvatarStore error: %v", err)
	}

	content := []byte("fake image bytes")
	url, err := store.Save("me.PNG", int64(len(content)), bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/avatars/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("unexpected url: %q", url)
	}

	path := filepath.Join(store.Dir(), filepath.Base(url))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Fatalf("stored content mismatch")
	}

	if err := store.Remove(url); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("file still present after Remove")
	}

	// Removing twice is fine.
	if err := store.Remove(url); err != nil {
		t.Fatalf("second Remove error: %v", err)
	}
}

func TestSaveRejectsBadUploads(t *testing.T) {
	store, err := NewAvatarStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewAvatarStore error: %v", err)
	}

	if _, err := store.Save("notes.txt", 10, strings.NewReader("x")); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	if _, err := store.Save("big.png", MaxAvatarSize+1, strings.NewReader("x")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestUniqueFilenames(t *testing.T) {
	store, err := NewAvatarStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewAvatarStore error: %v", err)
	}

	first, err := store.Save("a.png", 1, strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	second, err := store.Save("a.png", 1, strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct filenames for identical uploads")
	}
}
