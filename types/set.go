package types

import (
	"bytes"
	"encoding/json"

	"github.com/charbonnierg/cedar/internal/sets"
)

// A Set is an immutable collection of Cedar values, possibly of mixed
// types.
type Set struct {
	sets.HashSet[Value]
	hashVal uint64
}

// NewSet returns an immutable Set built from a Go slice of Values.
// Duplicates are removed and order is not preserved.
func NewSet(vals []Value) Set {
	set := sets.FromSlice(vals)

	// The hash of a set is the sum of its element hashes, which keeps the
	// zero Set and NewSet(nil) hash-equal.
	var hashVal uint64
	set.Iterate(func(v Value) bool {
		hashVal += v.Hash()
		return true
	})

	return Set{HashSet: set, hashVal: hashVal}
}

// Equal returns true if the input is a Set holding the same elements.
func (s Set) Equal(v Value) bool {
	other, ok := v.(Set)
	if !ok {
		return false
	}
	return s.HashSet.Equal(other.HashSet)
}

// UnmarshalJSON parses a JSON array in the Cedar value format into a Set.
func (s *Set) UnmarshalJSON(b []byte) error {
	var res []explicitValue
	if err := json.Unmarshal(b, &res); err != nil {
		return err
	}
	vals := make([]Value, len(res))
	for i, v := range res {
		vals[i] = v.Value
	}
	*s = NewSet(vals)
	return nil
}

// MarshalJSON marshals the Set as a JSON array in the Cedar value format.
// Elements are rendered in a non-deterministic order.
func (s Set) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	var i int
	var iterErr error
	s.Iterate(func(v Value) bool {
		if i != 0 {
			buf.WriteByte(',')
		}
		b, err := marshalValueJSON(v)
		if err != nil {
			iterErr = err
			return false
		}
		buf.Write(b)
		i++
		return true
	})
	if iterErr != nil {
		return nil, iterErr
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// String produces a string representation of the Set, e.g. `[1, 2, 3]`.
func (s Set) String() string { return string(s.MarshalCedar()) }

// MarshalCedar renders the Set as Cedar source text, e.g. `[1, 2, 3]`.
// Elements are rendered in a non-deterministic order.
func (s Set) MarshalCedar() []byte {
	var sb bytes.Buffer
	sb.WriteRune('[')
	var i int
	s.Iterate(func(v Value) bool {
		if i != 0 {
			sb.WriteString(", ")
		}
		sb.Write(v.MarshalCedar())
		i++
		return true
	})
	sb.WriteRune(']')
	return sb.Bytes()
}

func (s Set) Hash() uint64 { return s.hashVal }
