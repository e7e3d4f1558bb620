package types

import (
	"encoding/json"
	"sort"
)

// An Entity defines the parents and attributes for an EntityUID. Parents
// are stored as uids, never as references to other Entity records; they
// are resolved by lookup into an EntityMap at evaluation time.
type Entity struct {
	UID        EntityUID    `json:"uid"`
	Parents    EntityUIDSet `json:"parents,omitempty"`
	Attributes Record       `json:"attrs"`
}

// MarshalJSON marshals the Entity as the canonical
// `{uid, parents, attrs}` record.
func (e Entity) MarshalJSON() ([]byte, error) {
	m := entityJSON{
		UID:     e.UID,
		Parents: e.Parents.Slice(),
		Attrs:   e.Attributes,
	}
	sortUIDs(m.Parents)
	return json.Marshal(m)
}

// UnmarshalJSON parses an Entity from its `{uid, parents, attrs}` JSON
// form.
func (e *Entity) UnmarshalJSON(b []byte) error {
	var m entityJSON
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	e.UID = m.UID
	e.Parents = NewEntityUIDSet(m.Parents...)
	e.Attributes = m.Attrs
	return nil
}

type entityJSON struct {
	UID     EntityUID   `json:"uid"`
	Parents []EntityUID `json:"parents"`
	Attrs   Record      `json:"attrs"`
}

func sortUIDs(uids []EntityUID) {
	sort.Slice(uids, func(a, b int) bool { return lessUID(uids[a], uids[b]) })
}

// lessUID orders uids structurally, type first then id.
func lessUID(a, b EntityUID) bool {
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	return a.ID < b.ID
}
