package sets

import (
	"bytes"
	"encoding/json"

	"golang.org/x/exp/maps"
)

// MapSet is an immutable set over comparable elements. The zero value is
// an empty set.
type MapSet[T comparable] struct {
	m map[T]struct{}
}

// MapSetFromSlice builds a MapSet from a Go slice, dropping duplicates.
func MapSetFromSlice[T comparable](elems []T) MapSet[T] {
	var m map[T]struct{}
	if len(elems) > 0 {
		m = make(map[T]struct{}, len(elems))
	}
	for _, e := range elems {
		m[e] = struct{}{}
	}
	return MapSet[T]{m: m}
}

// Len returns the number of elements in the set.
func (s MapSet[T]) Len() int { return len(s.m) }

// Contains reports whether e is present in the set.
func (s MapSet[T]) Contains(e T) bool {
	_, ok := s.m[e]
	return ok
}

// Iterate calls f for each element until f returns false. Iteration order
// is non-deterministic.
func (s MapSet[T]) Iterate(f func(e T) bool) {
	for e := range s.m {
		if !f(e) {
			return
		}
	}
}

// Slice returns the elements as a fresh slice, safe for the caller to
// mutate. Order is non-deterministic.
func (s MapSet[T]) Slice() []T {
	if s.m == nil {
		return nil
	}
	return maps.Keys(s.m)
}

// Equal reports whether both sets hold the same elements.
func (s MapSet[T]) Equal(other MapSet[T]) bool {
	if len(s.m) != len(other.m) {
		return false
	}
	for e := range s.m {
		if !other.Contains(e) {
			return false
		}
	}
	return true
}

// UnmarshalJSON parses a JSON array into the set.
func (s *MapSet[T]) UnmarshalJSON(b []byte) error {
	var elems []T
	if err := json.Unmarshal(b, &elems); err != nil {
		return err
	}
	*s = MapSetFromSlice(elems)
	return nil
}

// MarshalJSON renders the set as a JSON array in non-deterministic order.
func (s MapSet[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	var i int
	for e := range s.m {
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
