package types

import (
	"encoding/json"
	"fmt"

	"golang.org/x/exp/maps"
)

// An EntityMap is the authoritative collection of entities for an
// authorization call, keyed by uid. It is built once, treated as
// immutable afterwards, and is safe for concurrent readers.
type EntityMap map[EntityUID]Entity

// NewEntityMap builds an EntityMap from a batch of entities. It rejects
// duplicate uids, self-parenting and cycles in the parent graph.
func NewEntityMap(entities []Entity) (EntityMap, error) {
	em := make(EntityMap, len(entities))
	for _, e := range entities {
		if _, ok := em[e.UID]; ok {
			return nil, fmt.Errorf("duplicate entity %v", e.UID)
		}
		if e.Parents.Contains(e.UID) {
			return nil, fmt.Errorf("entity %v lists itself as a parent", e.UID)
		}
		em[e.UID] = e
	}
	if err := em.checkAcyclic(); err != nil {
		return nil, err
	}
	return em, nil
}

// checkAcyclic walks the parent graph with three-color marking.
func (em EntityMap) checkAcyclic() error {
	const (
		white = iota
		gray
		black
	)
	color := make(map[EntityUID]int, len(em))
	var visit func(uid EntityUID) error
	visit = func(uid EntityUID) error {
		switch color[uid] {
		case gray:
			return fmt.Errorf("cycle in entity parent graph involving %v", uid)
		case black:
			return nil
		}
		color[uid] = gray
		e, ok := em[uid]
		if ok {
			var visitErr error
			e.Parents.Iterate(func(p EntityUID) bool {
				visitErr = visit(p)
				return visitErr == nil
			})
			if visitErr != nil {
				return visitErr
			}
		}
		color[uid] = black
		return nil
	}
	for uid := range em {
		if err := visit(uid); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the entity for uid and whether it exists.
func (em EntityMap) Get(uid EntityUID) (Entity, bool) {
	e, ok := em[uid]
	return e, ok
}

// UIDs returns the uids present in the map in structural order.
func (em EntityMap) UIDs() []EntityUID {
	uids := maps.Keys(em)
	sortUIDs(uids)
	return uids
}

// MarshalJSON marshals the collection as a JSON array of
// `{uid, parents, attrs}` records, ordered by uid.
func (em EntityMap) MarshalJSON() ([]byte, error) {
	entities := make([]Entity, 0, len(em))
	for _, uid := range em.UIDs() {
		entities = append(entities, em[uid])
	}
	return json.Marshal(entities)
}

// UnmarshalJSON parses a JSON array of entity records, applying the same
// construction checks as NewEntityMap.
func (em *EntityMap) UnmarshalJSON(b []byte) error {
	var entities []Entity
	if err := json.Unmarshal(b, &entities); err != nil {
		return err
	}
	res, err := NewEntityMap(entities)
	if err != nil {
		return err
	}
	*em = res
	return nil
}
