// Package store implements VarStore: an identifier-keyed collection of
// Variables plus a mutable defaults overlay.
package store

import (
	"sync"

	"github.com/nullstream-dev/runbook/internal/choice"
	"github.com/nullstream-dev/runbook/internal/ids"
	"github.com/nullstream-dev/runbook/internal/vars"
)

// Store is VarStore. It is safe for concurrent reads; writes (Add, Merge,
// SetDefaults) should happen during load, before the Engine starts
// dispatching resolution in earnest, though the mutex makes concurrent use
// safe regardless.
type Store struct {
	mu       sync.RWMutex
	vars     map[ids.Identifier]*vars.Variable
	defaults map[ids.Identifier][]choice.Choice
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		vars:     make(map[ids.Identifier]*vars.Variable),
		defaults: make(map[ids.Identifier][]choice.Choice),
	}
}

// Add inserts or overwrites v, keyed by v.ID. Two variables with the same
// name but different namespaces are distinct entries; redefinition of the
// same (name, namespace) pair follows last-writer-wins; there is no
// cross-file conflict detection.
func (s *Store) Add(v *vars.Variable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[v.ID] = v
}

// Get looks up a variable by identifier.
func (s *Store) Get(id ids.Identifier) (*vars.Variable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[id]
	return v, ok
}

// Merge overlays other's variables onto s, last writer wins.
func (s *Store) Merge(other *Store) {
	other.mu.RLock()
	defer other.mu.RUnlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, v := range other.vars {
		s.vars[id] = v
	}
}

// Len reports the number of variables in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vars)
}

// SetDefaults replaces the defaults overlay wholesale. Used for seeding from
// the config file's defaults or from ModifyLast.
func (s *Store) SetDefaults(defaults map[ids.Identifier][]choice.Choice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if defaults == nil {
		defaults = make(map[ids.Identifier][]choice.Choice)
	}
	s.defaults = defaults
}

// Default returns the overlaid default choices for id, if any.
func (s *Store) Default(id ids.Identifier) ([]choice.Choice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cs, ok := s.defaults[id]
	return cs, ok
}

// Defaults returns a snapshot copy of the defaults overlay.
func (s *Store) Defaults() map[ids.Identifier][]choice.Choice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[ids.Identifier][]choice.Choice, len(s.defaults))
	for k, v := range s.defaults {
		out[k] = v
	}
	return out
}
