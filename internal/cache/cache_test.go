package cache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nullstream-dev/runbook/internal/cache"
)

func TestPutAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := cache.New(path, time.Hour)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("Get() found an entry before any Put")
	}

	if err := c.Put("kubectl get pods", "pod-a\npod-b\n"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := c.Get("kubectl get pods")
	if !ok || got != "pod-a\npod-b\n" {
		t.Fatalf("Get() = %q, %v, want stdout, true", got, ok)
	}
}

// writeStaleEntry seeds path with a "cmd" entry written at the Unix epoch,
// far older than any positive TTL.
func writeStaleEntry(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(`{"cmd": {"value": "out", "writtenAt": 0}}`), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestGetStaleEntryMisses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := cache.New(path, time.Hour)

	writeStaleEntry(t, path)
	if _, ok := c.Get("cmd"); ok {
		t.Error("Get() returned a stale entry")
	}
}

func TestEntriesReportsStaleness(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := cache.New(path, time.Hour)
	writeStaleEntry(t, path)

	entries, err := c.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	v, ok := entries["cmd"]
	if !ok {
		t.Fatal("Entries() missing the cmd key")
	}
	if !v.Stale {
		t.Error("Entries() did not flag the entry as stale")
	}
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := cache.New(path, time.Hour)
	_ = c.Put("cmd", "out")
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := c.Get("cmd"); ok {
		t.Error("Get() found an entry after Clear")
	}
}

func TestDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := cache.New(path, time.Hour)
	_ = c.Put("cmd", "out")
	if err := c.Delete("cmd"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := c.Get("cmd"); ok {
		t.Error("Get() found an entry after Delete")
	}
}

func TestNoopStore(t *testing.T) {
	var s cache.NoopStore
	if err := s.Put("k", "v"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := s.Get("k"); ok {
		t.Error("NoopStore.Get() should never hit")
	}
	entries, err := s.Entries()
	if err != nil || len(entries) != 0 {
		t.Errorf("Entries() = %v, %v, want empty, nil", entries, err)
	}
}
