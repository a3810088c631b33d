package param

import "sort"

// Store holds the current effective parameter set per tracked object, keyed
// by the object's stable key (hand-left, hand-right, ball-<id>). Every live
// object has at most one entry at any time.
type Store struct {
	sets map[string]Set
}

// NewStore returns an empty parameter store.
func NewStore() *Store {
	return &Store{sets: make(map[string]Set)}
}

// Init installs the effective parameter set for an object, replacing any
// previous entry.
func (s *Store) Init(key string, set Set) {
	s.sets[key] = set
}

// Get returns the effective parameter set for an object.
func (s *Store) Get(key string) (Set, bool) {
	set, ok := s.sets[key]
	return set, ok
}

// Put overwrites the stored set for an object that already has an entry.
// It is a no-op for unknown keys so live-control updates cannot resurrect
// torn-down objects.
func (s *Store) Put(key string, set Set) bool {
	if _, ok := s.sets[key]; !ok {
		return false
	}
	s.sets[key] = set
	return true
}

// Delete removes the entry for an object.
func (s *Store) Delete(key string) {
	delete(s.sets, key)
}

// Reset drops every entry.
func (s *Store) Reset() {
	s.sets = make(map[string]Set)
}

// Len returns the number of tracked entries.
func (s *Store) Len() int {
	return len(s.sets)
}

// Keys returns the tracked object keys in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.sets))
	for k := range s.sets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
