package types

import "encoding/json"

// A Boolean is a Cedar boolean value.
type Boolean bool

const (
	True  = Boolean(true)
	False = Boolean(false)
)

// Equal returns true if the input represents the same boolean.
func (b Boolean) Equal(v Value) bool {
	other, ok := v.(Boolean)
	return ok && b == other
}

// String produces "true" or "false".
func (b Boolean) String() string { return string(b.MarshalCedar()) }

// MarshalCedar renders the Boolean as Cedar source text.
func (b Boolean) MarshalCedar() []byte {
	if b {
		return []byte("true")
	}
	return []byte("false")
}

// MarshalJSON marshals the Boolean as a JSON boolean.
func (b Boolean) MarshalJSON() ([]byte, error) { return json.Marshal(bool(b)) }

func (b Boolean) Hash() uint64 {
	if b {
		return 1
	}
	return 0
}
