// Package types defines the Cedar value model: the closed union of values
// that policy conditions evaluate to, together with the entity model
// (EntityUID, Entity, EntityMap) that authorization requests run against.
//
// All values are immutable. Values support structural equality, hashing
// (so they can live in sets), rendering to Cedar source text, and JSON
// round-tripping in the Cedar value format.
package types

// Value is implemented by every Cedar value: Boolean, Long, String, Set,
// Record, EntityUID, Decimal and IPAddr. The union is closed; consumers
// switch over it exhaustively.
type Value interface {
	// Equal reports structural equality with another Value.
	Equal(Value) bool
	// Hash returns a hash consistent with Equal.
	Hash() uint64
	// MarshalCedar renders the value as Cedar source text.
	MarshalCedar() []byte
	// String renders the value for human consumption.
	String() string
}

// ZeroValue is returned alongside errors by evaluation and lookups.
func ZeroValue() Value { return nil }
