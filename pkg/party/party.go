// Package party defines the identifiers of the guardians taking part in an election.
package party

import (
	"errors"
	"fmt"
)

// ID is a guardian's name as it appears in the election roster.
type ID string

// IDSlice is a roster of guardians. Unlike a set, its order is meaningful:
// a guardian's position in the roster determines its sequence order.
type IDSlice []ID

// Contains reports whether every id is part of the roster.
func (ids IDSlice) Contains(id ...ID) bool {
	for _, target := range id {
		if ids.Index(target) < 0 {
			return false
		}
	}
	return true
}

// Index returns the position of id in the roster, or -1.
func (ids IDSlice) Index(id ID) int {
	for i, other := range ids {
		if other == id {
			return i
		}
	}
	return -1
}

// SequenceOrder returns the 1-based order of id in the roster, or 0 when id is absent.
func (ids IDSlice) SequenceOrder(id ID) int {
	return ids.Index(id) + 1
}

// Remove returns a copy of the roster without id, preserving order.
func (ids IDSlice) Remove(id ID) IDSlice {
	out := make(IDSlice, 0, len(ids))
	for _, other := range ids {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}

// Copy returns an independent copy of the roster.
func (ids IDSlice) Copy() IDSlice {
	return append(IDSlice(nil), ids...)
}

// Valid checks that the roster is non-empty and has no empty or repeated names.
func (ids IDSlice) Valid() error {
	if len(ids) == 0 {
		return errors.New("party: empty roster")
	}
	seen := make(map[ID]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			return errors.New("party: empty guardian id")
		}
		if seen[id] {
			return fmt.Errorf("party: duplicate guardian id %q", id)
		}
		seen[id] = true
	}
	return nil
}

// Complete reports whether the keys of received cover exactly the roster.
func (ids IDSlice) Complete(received map[ID]bool) bool {
	if len(received) != len(ids) {
		return false
	}
	for _, id := range ids {
		if !received[id] {
			return false
		}
	}
	return true
}
