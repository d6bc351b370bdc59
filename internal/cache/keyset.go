package cache

import (
	"fmt"
	"strings"

	"github.com/mmcdole/tiercache/internal/domain"
)

// separator joins set members when a KeySet is stored in the session registry.
const separator = ","

// ValidateName rejects names that cannot round-trip through a comma-joined set.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", domain.ErrInvalidName)
	}
	if strings.Contains(name, separator) {
		return fmt.Errorf("%w: %q contains %q", domain.ErrInvalidName, name, separator)
	}
	return nil
}

// KeySet is an insertion-ordered set of names.
type KeySet struct {
	items   []string
	members map[string]struct{}
}

// NewKeySet creates a set holding names, in order, without duplicates.
func NewKeySet(names ...string) *KeySet {
	s := &KeySet{members: make(map[string]struct{}, len(names))}
	for _, name := range names {
		s.Add(name)
	}
	return s
}

// ParseKeySet decodes a comma-joined set. Empty members are skipped.
func ParseKeySet(raw string) *KeySet {
	if raw == "" {
		return NewKeySet()
	}
	return NewKeySet(strings.Split(raw, separator)...)
}

// Add inserts name and reports whether the set changed.
func (s *KeySet) Add(name string) bool {
	if name == "" {
		return false
	}
	if _, ok := s.members[name]; ok {
		return false
	}
	s.members[name] = struct{}{}
	s.items = append(s.items, name)
	return true
}

// Remove deletes name and reports whether the set changed.
func (s *KeySet) Remove(name string) bool {
	if _, ok := s.members[name]; !ok {
		return false
	}
	delete(s.members, name)
	for i, item := range s.items {
		if item == name {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return true
}

// Has reports whether name is a member.
func (s *KeySet) Has(name string) bool {
	_, ok := s.members[name]
	return ok
}

// Len returns the number of members.
func (s *KeySet) Len() int {
	return len(s.items)
}

// Items returns a copy of the members in insertion order.
func (s *KeySet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// String encodes the set for the session registry.
func (s *KeySet) String() string {
	return strings.Join(s.items, separator)
}
