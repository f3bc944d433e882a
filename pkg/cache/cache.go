// Package cache holds the client-side copy of the journal: operations grouped
// by the expiration of their first leg.
package cache

import (
	"errors"
	"fmt"
	"sync"

	"tableflip.dev/tradelog/pkg/operation"
)

// ErrDuplicateID is returned when inserting an operation whose id is already
// cached. Server-assigned ids make this an internal consistency violation.
var ErrDuplicateID = errors.New("cache: duplicate operation id")

// Store maps group keys to the operations in that group. Empty groups are
// never kept and an id appears at most once across all groups.
//
// Lookups by id scan every group. A personal journal stays small enough that
// an id index is not worth keeping in sync.
type Store struct {
	mu     sync.RWMutex
	groups map[operation.GroupKey][]operation.Operation
}

// New creates an empty store.
func New() *Store {
	return &Store{groups: make(map[operation.GroupKey][]operation.Operation)}
}

// Load replaces the whole store. Operations are re-keyed from their first leg
// so the grouping holds whatever grouping the source used, and repeated ids
// after the first are dropped.
func (s *Store) Load(groups map[operation.GroupKey][]operation.Operation) {
	next := make(map[operation.GroupKey][]operation.Operation, len(groups))
	seen := make(map[int64]bool)
	keys := make([]operation.GroupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	operation.SortKeys(keys)
	for _, key := range keys {
		for _, op := range groups[key] {
			if seen[op.ID] {
				continue
			}
			seen[op.ID] = true
			derived := operation.KeyFor(op)
			next[derived] = append(next[derived], op.Clone())
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = next
}

// Insert appends op to the group derived from its first leg, creating the
// group when needed.
func (s *Store) Insert(op operation.Operation) (operation.GroupKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, _, ok := s.findLocked(op.ID); ok {
		return "", fmt.Errorf("%w: %d", ErrDuplicateID, op.ID)
	}
	if s.groups == nil {
		s.groups = make(map[operation.GroupKey][]operation.Operation)
	}
	key := operation.KeyFor(op)
	s.groups[key] = append(s.groups[key], op.Clone())
	return key, nil
}

// Remove deletes the operation with the given id and reports the group it was
// removed from. A group left empty is deleted. Missing ids are a no-op.
func (s *Store) Remove(id int64) (operation.GroupKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, idx, ok := s.findLocked(id)
	if !ok {
		return "", false
	}
	list := s.groups[key]
	list = append(list[:idx:idx], list[idx+1:]...)
	if len(list) == 0 {
		delete(s.groups, key)
	} else {
		s.groups[key] = list
	}
	return key, true
}

// Get returns a copy of the cached operation with the given id.
func (s *Store) Get(id int64) (operation.Operation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, idx, ok := s.findLocked(id)
	if !ok {
		return operation.Operation{}, false
	}
	return s.groups[key][idx].Clone(), true
}

func (s *Store) findLocked(id int64) (operation.GroupKey, int, bool) {
	for key, list := range s.groups {
		for idx, op := range list {
			if op.ID == id {
				return key, idx, true
			}
		}
	}
	return "", -1, false
}

// IsEmpty reports whether no operation is cached.
func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.groups) == 0
}

// Len returns the number of cached operations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, list := range s.groups {
		n += len(list)
	}
	return n
}

// Has reports whether the group exists.
func (s *Store) Has(key operation.GroupKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.groups[key]
	return ok
}

// GroupKeys returns the group keys in ascending date order.
func (s *Store) GroupKeys() []operation.GroupKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]operation.GroupKey, 0, len(s.groups))
	for key := range s.groups {
		keys = append(keys, key)
	}
	operation.SortKeys(keys)
	return keys
}

// Group returns a copy of one group's operations in insertion order.
func (s *Store) Group(key operation.GroupKey) []operation.Operation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOperations(s.groups[key])
}

// All returns every cached operation, groups concatenated in key order.
func (s *Store) All() []operation.Operation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]operation.GroupKey, 0, len(s.groups))
	for key := range s.groups {
		keys = append(keys, key)
	}
	operation.SortKeys(keys)
	var all []operation.Operation
	for _, key := range keys {
		all = append(all, cloneOperations(s.groups[key])...)
	}
	return all
}

func cloneOperations(list []operation.Operation) []operation.Operation {
	if len(list) == 0 {
		return nil
	}
	cloned := make([]operation.Operation, len(list))
	for i, op := range list {
		cloned[i] = op.Clone()
	}
	return cloned
}
