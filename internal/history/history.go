// Package history implements History: a bounded, persisted, sequential log
// of resolved executions.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nullstream-dev/runbook/internal/choice"
	"github.com/nullstream-dev/runbook/internal/errs"
	"github.com/nullstream-dev/runbook/internal/ids"
	"github.com/oklog/ulid/v2"
)

// Resolved is the serializable projection of a resolved alias; engine
// builds one from the alias.Alias, its plan and its gathered choices before
// appending.
type Resolved struct {
	ID               ids.Identifier                     `json:"id"`
	Desc             string                              `json:"desc"`
	OriginalTemplate string                              `json:"originalTemplate"`
	Commands         []string                            `json:"commands"`
	Plan             []ids.Identifier                    `json:"plan"`
	Choices          map[ids.Identifier][]choice.Choice `json:"choices"`
}

// Entry is one history record: a resolved alias plus the working directory
// it was run from.
type Entry struct {
	ID       string    `json:"id"`
	Resolved Resolved  `json:"resolved"`
	PWD      string    `json:"pwd"`
	At       time.Time `json:"at"`
}

// History persists entries as a single JSON array, overwritten wholesale on
// every write, bounded to Max entries (0 means unbounded).
type History struct {
	path string
	max  int
	mu   sync.Mutex
}

// New returns a History backed by path, keeping at most max entries (<=0
// for unbounded).
func New(path string, max int) *History {
	return &History{path: path, max: max}
}

// Append adds r to the end of the log, dropping the oldest entry if the
// bound is exceeded, and persists. Failures propagate to the caller so a
// broken history file is never silently swallowed.
func (h *History) Append(r Resolved, pwd string) (Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := h.load()
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", errs.ErrHistory, err)
	}

	entry := Entry{
		ID:       ulid.Make().String(),
		Resolved: r,
		PWD:      pwd,
		At:       time.Now(),
	}
	entries = append(entries, entry)
	if h.max > 0 && len(entries) > h.max {
		entries = entries[len(entries)-h.max:]
	}

	if err := h.save(entries); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// GetLast returns the most recently appended entry.
func (h *History) GetLast() (*Entry, error) {
	entries, err := h.GetLastN(1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: history is empty", errs.ErrHistory)
	}
	return &entries[0], nil
}

// GetLastN returns the n most recent entries, most-recent first. n <= 0
// returns everything.
func (h *History) GetLastN(n int) ([]Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := h.load()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrHistory, err)
	}

	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out, nil
}

func (h *History) load() ([]Entry, error) {
	data, err := os.ReadFile(h.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (h *History) save(entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrHistory, err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrHistory, err)
	}
	if err := os.WriteFile(h.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrHistory, err)
	}
	return nil
}
