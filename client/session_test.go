package client

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	want := Session{Name: "Jane", Email: "jane@x.com", Token: "a.b.c"}

	if err := SaveSession(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 permissions, got %o", perm)
	}

	got, err := LoadSession(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: %#v", got)
	}
}

func TestLoadSessionMissingFile(t *testing.T) {
	_, err := LoadSession(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestLoadSessionEmptyToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := SaveSession(path, Session{Name: "Jane", Email: "jane@x.com"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := LoadSession(path); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for tokenless file, got %v", err)
	}
}

func TestClearSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := SaveSession(path, Session{Token: "a.b.c"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := ClearSession(path); err != nil {
		t.Fatalf("clear: %v", err)
	}
	// Clearing twice must stay quiet.
	if err := ClearSession(path); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}
