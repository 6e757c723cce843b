package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFSStore_PutGetRoundtrip(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key, err := s.Put("answers/a.png", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	rc, err := s.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Fatalf("read back %q", data)
	}
}

func TestFSStore_RejectsKeysOutsideBase(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "data")
	if err := os.WriteFile(filepath.Join(root, "secret.txt"), []byte("top secret"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewFSStore(base)
	if err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{
		"../secret.txt",
		"answers/../../secret.txt",
		"..",
		"",
	} {
		if _, err := s.Get(key); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("Get(%q): expected ErrInvalidKey, got %v", key, err)
		}
		if _, err := s.Put(key, strings.NewReader("x")); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("Put(%q): expected ErrInvalidKey, got %v", key, err)
		}
	}

	if _, err := os.Stat(filepath.Join(root, "secret.txt")); err != nil {
		t.Fatalf("sibling file clobbered: %v", err)
	}
}

func TestFSStore_AbsoluteKeyStaysUnderBase(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	// A leading slash is treated as relative to the base, not the filesystem root.
	if _, err := s.Put("/etc/nothing", strings.NewReader("x")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Get("/etc/nothing"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := os.Stat("/etc/nothing"); !os.IsNotExist(err) {
		t.Fatal("file escaped the base directory")
	}
}
