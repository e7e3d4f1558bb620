package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charbonnierg/cedar/internal/sets"
)

// An EntityType is the type component of an EntityUID, e.g. `User` or
// `PhotoApp::User`.
type EntityType string

func (t EntityType) String() string { return string(t) }

// An EntityUID identifies a principal, action or resource. Equality and
// ordering are structural: type first, then id.
type EntityUID struct {
	Type EntityType
	ID   String
}

// NewEntityUID returns an EntityUID with the given type and id.
func NewEntityUID(typ EntityType, id String) EntityUID {
	return EntityUID{Type: typ, ID: id}
}

// ParseEntityUID parses the canonical string form `Type::"id"`.
func ParseEntityUID(s string) (EntityUID, error) {
	sep := strings.LastIndex(s, "::")
	if sep <= 0 {
		return EntityUID{}, fmt.Errorf("invalid entity uid %q: missing `::` separator", s)
	}
	typ, quoted := s[:sep], s[sep+2:]
	if err := checkEntityType(typ); err != nil {
		return EntityUID{}, fmt.Errorf("invalid entity uid %q: %w", s, err)
	}
	id, err := UnquoteString(quoted)
	if err != nil {
		return EntityUID{}, fmt.Errorf("invalid entity uid %q: %w", s, err)
	}
	return NewEntityUID(EntityType(typ), String(id)), nil
}

func checkEntityType(typ string) error {
	if typ == "" {
		return fmt.Errorf("empty entity type")
	}
	for _, part := range strings.Split(typ, "::") {
		if !isIdent(part) {
			return fmt.Errorf("invalid entity type %q", typ)
		}
	}
	return nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		alpha := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if i == 0 && !alpha {
			return false
		}
		if !alpha && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// IsZero reports whether the uid is the zero EntityUID.
func (u EntityUID) IsZero() bool { return u.Type == "" && u.ID == "" }

// Equal returns true if the input represents the same entity uid.
func (u EntityUID) Equal(v Value) bool {
	other, ok := v.(EntityUID)
	return ok && u == other
}

// String produces the canonical form, e.g. `User::"alice"`.
func (u EntityUID) String() string { return string(u.MarshalCedar()) }

// MarshalCedar renders the uid as Cedar source text.
func (u EntityUID) MarshalCedar() []byte {
	return []byte(string(u.Type) + "::" + QuoteString(string(u.ID)))
}

func (u EntityUID) Hash() uint64 {
	return String(u.Type).Hash()*31 + u.ID.Hash()
}

type entityUIDJSON struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// MarshalJSON marshals the uid as `{"type": ..., "id": ...}`.
func (u EntityUID) MarshalJSON() ([]byte, error) {
	return json.Marshal(entityUIDJSON{Type: string(u.Type), ID: string(u.ID)})
}

// UnmarshalJSON parses either the `{"type", "id"}` object form or the
// canonical string form.
func (u *EntityUID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := ParseEntityUID(s)
		if err != nil {
			return err
		}
		*u = parsed
		return nil
	}
	var res entityUIDJSON
	if err := json.Unmarshal(b, &res); err != nil {
		return err
	}
	if err := checkEntityType(res.Type); err != nil {
		return err
	}
	*u = NewEntityUID(EntityType(res.Type), String(res.ID))
	return nil
}

// An EntityUIDSet is an immutable set of EntityUIDs.
type EntityUIDSet = sets.MapSet[EntityUID]

// NewEntityUIDSet builds an EntityUIDSet from the given uids.
func NewEntityUIDSet(uids ...EntityUID) EntityUIDSet {
	return sets.MapSetFromSlice(uids)
}
