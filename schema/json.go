package schema

import (
	"encoding/json"
	"fmt"
)

// The Cedar JSON schema format: namespaces at the top level, each with
// `entityTypes` and `actions` objects.
// See: https://docs.cedarpolicy.com/schema/json-schema.html

type jsonNamespace struct {
	EntityTypes map[string]*jsonEntity `json:"entityTypes"`
	Actions     map[string]*jsonAction `json:"actions"`
}

type jsonEntity struct {
	MemberOfTypes []string  `json:"memberOfTypes,omitempty"`
	Shape         *jsonType `json:"shape,omitempty"`
}

type jsonAction struct {
	MemberOf  []jsonActionRef `json:"memberOf,omitempty"`
	AppliesTo *jsonAppliesTo  `json:"appliesTo,omitempty"`
}

type jsonActionRef struct {
	ID string `json:"id"`
}

type jsonAppliesTo struct {
	PrincipalTypes []string  `json:"principalTypes"`
	ResourceTypes  []string  `json:"resourceTypes"`
	Context        *jsonType `json:"context,omitempty"`
}

type jsonType struct {
	Type       string                   `json:"type"`
	Element    *jsonType                `json:"element,omitempty"`
	Attributes map[string]*jsonAttrType `json:"attributes,omitempty"`
	Name       string                   `json:"name,omitempty"`
}

type jsonAttrType struct {
	jsonType
	Required *bool `json:"required,omitempty"`
}

// MarshalJSON renders the schema in the Cedar JSON schema format.
func (s *Schema) MarshalJSON() ([]byte, error) {
	out := make(map[string]*jsonNamespace, len(s.namespaces))
	for name, ns := range s.namespaces {
		jns := &jsonNamespace{
			EntityTypes: make(map[string]*jsonEntity, len(ns.entities)),
			Actions:     make(map[string]*jsonAction, len(ns.actions)),
		}
		for entityName, entity := range ns.entities {
			je := &jsonEntity{MemberOfTypes: entity.memberOf}
			if entity.shape != nil {
				je.Shape = typeToJSON(entity.shape)
			}
			jns.EntityTypes[entityName] = je
		}
		for actionName, action := range ns.actions {
			ja := &jsonAction{}
			for _, group := range action.memberOf {
				ja.MemberOf = append(ja.MemberOf, jsonActionRef{ID: group})
			}
			if action.appliesTo != nil {
				ja.AppliesTo = &jsonAppliesTo{
					PrincipalTypes: action.appliesTo.principals,
					ResourceTypes:  action.appliesTo.resources,
				}
				if action.appliesTo.context != nil {
					ja.AppliesTo.Context = typeToJSON(action.appliesTo.context)
				}
			}
			jns.Actions[actionName] = ja
		}
		out[name] = jns
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses a schema from the Cedar JSON schema format.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw map[string]*jsonNamespace
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid schema JSON: %w", err)
	}
	namespaces := make(map[string]*Namespace, len(raw))
	for nsName, jns := range raw {
		ns := &Namespace{
			name:     nsName,
			entities: make(map[string]*Entity, len(jns.EntityTypes)),
			actions:  make(map[string]*Action, len(jns.Actions)),
		}
		for entityName, je := range jns.EntityTypes {
			entity := &Entity{name: entityName, memberOf: je.MemberOfTypes}
			if je.Shape != nil {
				typ, err := typeFromJSON(je.Shape)
				if err != nil {
					return fmt.Errorf("entity type %q: %w", entityName, err)
				}
				record, ok := typ.(*RecordType)
				if !ok {
					return fmt.Errorf("entity type %q: shape must be a record", entityName)
				}
				entity.shape = record
			}
			ns.entities[entityName] = entity
		}
		for actionName, ja := range jns.Actions {
			action := &Action{name: actionName}
			for _, ref := range ja.MemberOf {
				action.memberOf = append(action.memberOf, ref.ID)
			}
			if ja.AppliesTo != nil {
				action.appliesTo = &AppliesTo{
					principals: ja.AppliesTo.PrincipalTypes,
					resources:  ja.AppliesTo.ResourceTypes,
				}
				if ja.AppliesTo.Context != nil {
					typ, err := typeFromJSON(ja.AppliesTo.Context)
					if err != nil {
						return fmt.Errorf("action %q: context: %w", actionName, err)
					}
					record, ok := typ.(*RecordType)
					if !ok {
						return fmt.Errorf("action %q: context must be a record", actionName)
					}
					action.appliesTo.context = record
				}
			}
			ns.actions[actionName] = action
		}
		namespaces[nsName] = ns
	}
	s.namespaces = namespaces
	return nil
}

func typeToJSON(t Type) *jsonType {
	switch tt := t.(type) {
	case *PathType:
		if isPrimitivePath(tt.path) {
			return &jsonType{Type: tt.path}
		}
		return &jsonType{Type: "Entity", Name: tt.path}
	case *SetType:
		return &jsonType{Type: "Set", Element: typeToJSON(tt.element)}
	case *RecordType:
		attrs := make(map[string]*jsonAttrType, len(tt.attributes))
		for name, attr := range tt.attributes {
			ja := &jsonAttrType{jsonType: *typeToJSON(attr.attrType)}
			if !attr.required {
				required := false
				ja.Required = &required
			}
			attrs[name] = ja
		}
		return &jsonType{Type: "Record", Attributes: attrs}
	}
	return nil
}

func typeFromJSON(jt *jsonType) (Type, error) {
	switch jt.Type {
	case "String", "Long", "Bool", "Boolean":
		return &PathType{path: jt.Type}, nil
	case "Entity", "EntityOrCommon":
		if jt.Name == "" {
			return nil, fmt.Errorf("%s type missing name", jt.Type)
		}
		return &PathType{path: jt.Name}, nil
	case "Set":
		if jt.Element == nil {
			return nil, fmt.Errorf("Set type missing element")
		}
		element, err := typeFromJSON(jt.Element)
		if err != nil {
			return nil, err
		}
		return &SetType{element: element}, nil
	case "Record":
		record := &RecordType{attributes: make(map[string]*Attribute, len(jt.Attributes))}
		for name, ja := range jt.Attributes {
			attrType, err := typeFromJSON(&ja.jsonType)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", name, err)
			}
			required := ja.Required == nil || *ja.Required
			record.attributes[name] = &Attribute{name: name, attrType: attrType, required: required}
		}
		return record, nil
	case "":
		return nil, fmt.Errorf("type missing")
	default:
		// A bare type name refers to an entity type.
		return &PathType{path: jt.Type}, nil
	}
}
