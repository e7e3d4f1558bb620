package schema

import (
	"fmt"
	"sort"

	"github.com/charbonnierg/cedar/types"
)

// A ValidationResult collects everything a validation pass found.
// Errors mean the subject does not conform to the schema; warnings
// flag suspicious but conforming declarations.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// Passed reports whether validation found no errors.
func (r ValidationResult) Passed() bool {
	return len(r.Errors) == 0
}

// PassedWithoutWarning reports whether validation found neither errors
// nor warnings.
func (r ValidationResult) PassedWithoutWarning() bool {
	return r.Passed() && len(r.Warnings) == 0
}

// ValidateEntities checks every entity in the map against the schema.
// Problems are collected, not fail-fast: one call reports everything
// found, each message naming the offending entity uid.
func (s *Schema) ValidateEntities(entities types.EntityMap) ValidationResult {
	var res ValidationResult
	r := s.resolve()
	for _, uid := range entities.UIDs() {
		entity, _ := entities.Get(uid)
		for _, msg := range s.validateEntity(r, entity) {
			res.Errors = append(res.Errors, fmt.Sprintf("entity %s: %s", uid, msg))
		}
	}
	return res
}

func (s *Schema) validateEntity(r resolved, entity types.Entity) []string {
	uid := entity.UID
	if ra, ok := r.actions[uid]; ok {
		return validateActionParents(entity, ra)
	}
	re, ok := r.entities[uid.Type]
	if !ok {
		return []string{fmt.Sprintf("entity type %q not declared in schema", uid.Type)}
	}

	var msgs []string
	entity.Parents.Iterate(func(parent types.EntityUID) bool {
		if !containsType(re.parentTypes, parent.Type) {
			msgs = append(msgs, fmt.Sprintf("parent type %q not allowed for entity type %q", parent.Type, uid.Type))
		}
		return true
	})
	sort.Strings(msgs)

	ns := r.namespaces[uid.Type]
	if re.shape == nil {
		if entity.Attributes.Len() > 0 {
			msgs = append(msgs, fmt.Sprintf("entity type %q declares no attributes", uid.Type))
		}
		return msgs
	}
	msgs = append(msgs, s.checkRecord(ns, entity.Attributes, re.shape)...)
	return msgs
}

// validateActionParents checks that an action entity's parents are
// exactly the declared action groups.
func validateActionParents(entity types.Entity, ra resolvedAction) []string {
	var msgs []string
	declared := make(map[types.EntityUID]bool, len(ra.parents))
	for _, parent := range ra.parents {
		declared[parent] = true
	}
	entity.Parents.Iterate(func(parent types.EntityUID) bool {
		if !declared[parent] {
			msgs = append(msgs, fmt.Sprintf("unexpected action parent %s", parent))
		}
		return true
	})
	for _, parent := range ra.parents {
		if !entity.Parents.Contains(parent) {
			msgs = append(msgs, fmt.Sprintf("missing action parent %s", parent))
		}
	}
	sort.Strings(msgs)
	return msgs
}

// checkRecord checks a record value against a declared record type:
// every required attribute is present, no undeclared attribute appears,
// and every present attribute has the declared type.
func (s *Schema) checkRecord(ns string, record types.Record, shape *RecordType) []string {
	var msgs []string
	for _, name := range sortedAttrNames(shape) {
		attr := shape.attributes[name]
		v, ok := record.Get(types.String(name))
		if !ok {
			if attr.required {
				msgs = append(msgs, fmt.Sprintf("missing required attribute %q", name))
			}
			continue
		}
		if msg := s.checkValue(ns, v, attr.attrType); msg != "" {
			msgs = append(msgs, fmt.Sprintf("attribute %q: %s", name, msg))
		}
	}
	for _, key := range record.Keys() {
		if _, ok := shape.attributes[string(key)]; !ok {
			msgs = append(msgs, fmt.Sprintf("undeclared attribute %q", key))
		}
	}
	return msgs
}

// checkValue checks one value against a declared type. It returns an
// empty string when the value conforms.
func (s *Schema) checkValue(ns string, v types.Value, t Type) string {
	switch tt := t.(type) {
	case *PathType:
		switch tt.path {
		case "String":
			if _, ok := v.(types.String); !ok {
				return fmt.Sprintf("expected string, got %s", valueTypeName(v))
			}
		case "Long":
			if _, ok := v.(types.Long); !ok {
				return fmt.Sprintf("expected long, got %s", valueTypeName(v))
			}
		case "Bool", "Boolean":
			if _, ok := v.(types.Boolean); !ok {
				return fmt.Sprintf("expected bool, got %s", valueTypeName(v))
			}
		default:
			uid, ok := v.(types.EntityUID)
			if !ok {
				return fmt.Sprintf("expected entity of type %q, got %s", tt.path, valueTypeName(v))
			}
			want := s.qualify(ns, tt.path)
			if uid.Type != want {
				return fmt.Sprintf("expected entity of type %q, got %q", want, uid.Type)
			}
		}
	case *SetType:
		set, ok := v.(types.Set)
		if !ok {
			return fmt.Sprintf("expected set, got %s", valueTypeName(v))
		}
		var msg string
		set.Iterate(func(elem types.Value) bool {
			msg = s.checkValue(ns, elem, tt.element)
			return msg == ""
		})
		if msg != "" {
			return fmt.Sprintf("set element: %s", msg)
		}
	case *RecordType:
		record, ok := v.(types.Record)
		if !ok {
			return fmt.Sprintf("expected record, got %s", valueTypeName(v))
		}
		if msgs := s.checkRecord(ns, record, tt); len(msgs) > 0 {
			return msgs[0]
		}
	}
	return ""
}

func sortedAttrNames(shape *RecordType) []string {
	names := make([]string, 0, len(shape.attributes))
	for name := range shape.attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func containsType(haystack []types.EntityType, needle types.EntityType) bool {
	for _, et := range haystack {
		if et == needle {
			return true
		}
	}
	return false
}

func valueTypeName(v types.Value) string {
	switch v.(type) {
	case types.Boolean:
		return "bool"
	case types.Long:
		return "long"
	case types.String:
		return "string"
	case types.Set:
		return "set"
	case types.Record:
		return "record"
	case types.EntityUID:
		return "entity"
	case types.Decimal:
		return "decimal"
	case types.IPAddr:
		return "ipaddr"
	default:
		return fmt.Sprintf("%T", v)
	}
}
