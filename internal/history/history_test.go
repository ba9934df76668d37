package history_test

import (
	"path/filepath"
	"testing"

	"github.com/nullstream-dev/runbook/internal/choice"
	"github.com/nullstream-dev/runbook/internal/history"
	"github.com/nullstream-dev/runbook/internal/ids"
)

func sampleResolved(cmd string) history.Resolved {
	return history.Resolved{
		ID:       ids.New("deploy", "app"),
		Commands: []string{cmd},
		Choices:  map[ids.Identifier][]choice.Choice{ids.New("env", "app"): {choice.New("prod", "")}},
	}
}

func TestAppendAndGetLast(t *testing.T) {
	h := history.New(filepath.Join(t.TempDir(), "history.json"), 0)

	if _, err := h.Append(sampleResolved("echo a"), "/tmp"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := h.Append(sampleResolved("echo b"), "/tmp"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	last, err := h.GetLast()
	if err != nil {
		t.Fatalf("GetLast: %v", err)
	}
	if last.Resolved.Commands[0] != "echo b" {
		t.Errorf("GetLast() = %+v, want the most recently appended entry", last)
	}
}

func TestGetLastEmptyHistory(t *testing.T) {
	h := history.New(filepath.Join(t.TempDir(), "history.json"), 0)
	if _, err := h.GetLast(); err == nil {
		t.Fatal("GetLast() on empty history should fail")
	}
}

func TestAppendBoundsToMax(t *testing.T) {
	h := history.New(filepath.Join(t.TempDir(), "history.json"), 2)
	for _, cmd := range []string{"a", "b", "c"} {
		if _, err := h.Append(sampleResolved(cmd), "/tmp"); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	entries, err := h.GetLastN(0)
	if err != nil {
		t.Fatalf("GetLastN: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("GetLastN(0) = %d entries, want 2", len(entries))
	}
	if entries[0].Resolved.Commands[0] != "c" || entries[1].Resolved.Commands[0] != "b" {
		t.Errorf("entries = %+v, want [c, b] most-recent-first", entries)
	}
}

func TestGetLastNLimitsCount(t *testing.T) {
	h := history.New(filepath.Join(t.TempDir(), "history.json"), 0)
	for _, cmd := range []string{"a", "b", "c"} {
		if _, err := h.Append(sampleResolved(cmd), "/tmp"); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	entries, err := h.GetLastN(1)
	if err != nil {
		t.Fatalf("GetLastN: %v", err)
	}
	if len(entries) != 1 || entries[0].Resolved.Commands[0] != "c" {
		t.Errorf("GetLastN(1) = %+v, want just the last entry", entries)
	}
}
