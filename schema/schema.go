// Package schema describes the shape of an authorization model: which
// entity types exist, which attributes they carry, how they may nest
// into groups, and which actions apply to which principal and resource
// types. A schema is used only for validation; it never changes the
// decision semantics of an authorization call.
//
// # Creating a Schema
//
// Schemas are built programmatically:
//
//	s := schema.NewSchema().
//		WithNamespace("PhotoApp",
//			schema.NewEntity("User").
//				WithAttribute("name", schema.String()).
//				WithOptionalAttribute("age", schema.Long()).
//				MemberOf("UserGroup"),
//			schema.NewEntity("UserGroup"),
//			schema.NewEntity("Photo"),
//			schema.NewAction("viewPhoto").
//				AppliesTo(
//					schema.Principals("User"),
//					schema.Resources("Photo"),
//					nil,
//				),
//		)
//
// or parsed from the Cedar JSON schema format with UnmarshalJSON.
//
// # Validation
//
// ValidateEntities checks a batch of entities against the schema,
// collecting one message per problem rather than stopping at the first.
// Policy validation lives in the root cedar package, which has access to
// the parsed policy representation.
package schema

import (
	"sort"
)

// Schema is a set of entity type and action declarations, grouped into
// namespaces. The zero Schema declares nothing; use NewSchema and
// WithNamespace, or UnmarshalJSON.
type Schema struct {
	namespaces map[string]*Namespace
}

// NewSchema creates a new empty schema.
func NewSchema() *Schema {
	return &Schema{namespaces: make(map[string]*Namespace)}
}

// WithNamespace adds a namespace with the given declarations. The name
// may be empty for the global namespace, or qualified like
// "MyApp::Accounts". Declaring the same namespace twice replaces it.
func (s *Schema) WithNamespace(name string, decls ...Declaration) *Schema {
	if s.namespaces == nil {
		s.namespaces = make(map[string]*Namespace)
	}
	ns := &Namespace{name: name}
	for _, decl := range decls {
		decl.addToNamespace(ns)
	}
	s.namespaces[name] = ns
	return s
}

// namespaceNames returns the declared namespace names in sorted order.
func (s *Schema) namespaceNames() []string {
	names := make([]string, 0, len(s.namespaces))
	for name := range s.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
