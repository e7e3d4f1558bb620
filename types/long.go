package types

import (
	"encoding/json"
	"strconv"
)

// A Long is a Cedar 64-bit signed integer.
type Long int64

// Equal returns true if the input represents the same long.
func (l Long) Equal(v Value) bool {
	other, ok := v.(Long)
	return ok && l == other
}

// LessThan compares two Longs.
func (l Long) LessThan(other Long) bool { return l < other }

// String produces a decimal representation, e.g. `42`.
func (l Long) String() string { return string(l.MarshalCedar()) }

// MarshalCedar renders the Long as Cedar source text.
func (l Long) MarshalCedar() []byte {
	return []byte(strconv.FormatInt(int64(l), 10))
}

// MarshalJSON marshals the Long as a JSON number.
func (l Long) MarshalJSON() ([]byte, error) { return json.Marshal(int64(l)) }

func (l Long) Hash() uint64 { return uint64(l) }
