package types

import (
	"bytes"
	"encoding/json"
	"sort"

	"golang.org/x/exp/maps"
)

// A RecordMap is a map of attribute names to values, used to construct
// Records.
type RecordMap map[String]Value

// A Record is an immutable collection of attributes, where each attribute
// name is a string and each value can be of any type.
type Record struct {
	m       RecordMap
	hashVal uint64
}

// NewRecord returns an immutable Record given a RecordMap. The map is
// copied and not retained.
func NewRecord(r RecordMap) Record {
	var m RecordMap
	if len(r) > 0 {
		m = make(RecordMap, len(r))
	}

	// Summing per-entry hashes keeps the result independent of map order.
	var hashVal uint64
	for k, v := range r {
		m[k] = v
		hashVal += k.Hash()*31 + v.Hash()
	}
	return Record{m: m, hashVal: hashVal}
}

// Len returns the number of attributes in the Record.
func (r Record) Len() int { return len(r.m) }

// Get returns the value of the named attribute and whether it exists.
func (r Record) Get(name String) (Value, bool) {
	v, ok := r.m[name]
	return v, ok
}

// Keys returns the attribute names in sorted order.
func (r Record) Keys() []String {
	keys := maps.Keys(r.m)
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })
	return keys
}

// Iterate calls f for each attribute until f returns false. Iteration
// order is non-deterministic.
func (r Record) Iterate(f func(name String, v Value) bool) {
	for k, v := range r.m {
		if !f(k, v) {
			return
		}
	}
}

// Map returns a copy of the underlying RecordMap, safe for the caller to
// mutate.
func (r Record) Map() RecordMap {
	if r.m == nil {
		return nil
	}
	m := make(RecordMap, len(r.m))
	maps.Copy(m, r.m)
	return m
}

// Equal returns true if the input is a Record holding the same attributes.
func (r Record) Equal(v Value) bool {
	other, ok := v.(Record)
	if !ok || len(r.m) != len(other.m) || r.hashVal != other.hashVal {
		return false
	}
	for k, rv := range r.m {
		ov, ok := other.m[k]
		if !ok || !rv.Equal(ov) {
			return false
		}
	}
	return true
}

// String produces a string representation of the Record, e.g.
// `{"age":21, "name":"bob"}`.
func (r Record) String() string { return string(r.MarshalCedar()) }

// MarshalCedar renders the Record as Cedar source text with attributes in
// sorted order.
func (r Record) MarshalCedar() []byte {
	var sb bytes.Buffer
	sb.WriteRune('{')
	for i, k := range r.Keys() {
		if i != 0 {
			sb.WriteString(", ")
		}
		sb.Write(k.MarshalCedar())
		sb.WriteString(": ")
		sb.Write(r.m[k].MarshalCedar())
	}
	sb.WriteRune('}')
	return sb.Bytes()
}

// MarshalJSON marshals the Record as a JSON object in the Cedar value
// format.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys() {
		if i != 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(string(k))
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshalValueJSON(r.m[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses a JSON object in the Cedar value format into a
// Record.
func (r *Record) UnmarshalJSON(b []byte) error {
	var res map[string]explicitValue
	if err := json.Unmarshal(b, &res); err != nil {
		return err
	}
	m := make(RecordMap, len(res))
	for k, v := range res {
		m[String(k)] = v.Value
	}
	*r = NewRecord(m)
	return nil
}

func (r Record) Hash() uint64 { return r.hashVal }
