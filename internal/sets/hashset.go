// Package sets provides the immutable hashed-set container shared by the
// Set and EntityUIDSet value types.
package sets

import (
	"bytes"
	"encoding/json"

	"golang.org/x/exp/maps"
)

type element[T any] interface {
	Equal(T) bool
	Hash() uint64
}

// HashSet is an immutable collection of hashable, immutable elements.
// The zero value is an empty set.
type HashSet[T element[T]] struct {
	m map[uint64]T
}

// FromSlice builds a HashSet from a Go slice. Duplicates are dropped and
// order is not preserved. The slice is not retained.
func FromSlice[T element[T]](elems []T) HashSet[T] {
	var m map[uint64]T
	if len(elems) > 0 {
		m = make(map[uint64]T, len(elems))
	}
	for _, e := range elems {
		h := e.Hash()

		// Collisions are handled by open addressing on the hash value.
		// This stays correct because nothing is ever removed from m.
		for {
			existing, ok := m[h]
			if !ok {
				m[h] = e
				break
			} else if e.Equal(existing) {
				break
			}
			h++
		}
	}
	return HashSet[T]{m: m}
}

// Len returns the number of unique elements in the set.
func (s HashSet[T]) Len() int { return len(s.m) }

// Contains reports whether e is present in the set.
func (s HashSet[T]) Contains(e T) bool {
	h := e.Hash()
	for {
		existing, ok := s.m[h]
		if !ok {
			return false
		} else if e.Equal(existing) {
			return true
		}
		h++
	}
}

// Iterate calls f for each element until f returns false. Iteration order
// is non-deterministic.
func (s HashSet[T]) Iterate(f func(e T) bool) {
	for _, e := range s.m {
		if !f(e) {
			return
		}
	}
}

// Slice returns the elements as a fresh slice, safe for the caller to
// mutate. Order is non-deterministic.
func (s HashSet[T]) Slice() []T {
	if s.m == nil {
		return nil
	}
	return maps.Values(s.m)
}

// Equal reports whether both sets hold the same elements.
func (s HashSet[T]) Equal(other HashSet[T]) bool {
	if len(s.m) != len(other.m) {
		return false
	}
	for _, e := range s.m {
		if !other.Contains(e) {
			return false
		}
	}
	return true
}

// UnmarshalJSON parses a JSON array into the set.
func (s *HashSet[T]) UnmarshalJSON(b []byte) error {
	var elems []T
	if err := json.Unmarshal(b, &elems); err != nil {
		return err
	}
	*s = FromSlice(elems)
	return nil
}

// MarshalJSON renders the set as a JSON array in non-deterministic order.
func (s HashSet[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	var i int
	for _, e := range s.m {
		if i != 0 {
			buf.WriteByte(',')
		}
		b, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
		i++
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
