package schema

// Entity declares an entity type: its attribute shape and the parent
// types its members may belong to.
type Entity struct {
	name     string
	memberOf []string
	shape    *RecordType
}

// NewEntity declares an entity type with the given name. The name is a
// simple identifier, e.g. "User"; it is qualified by the namespace it
// is declared in.
func NewEntity(name string) *Entity {
	return &Entity{name: name}
}

// WithAttribute adds a required attribute to the entity's shape.
func (e *Entity) WithAttribute(name string, typ Type) *Entity {
	e.ensureShape()
	e.shape.attributes[name] = &Attribute{name: name, attrType: typ, required: true}
	return e
}

// WithOptionalAttribute adds an optional attribute to the entity's
// shape.
func (e *Entity) WithOptionalAttribute(name string, typ Type) *Entity {
	e.ensureShape()
	e.shape.attributes[name] = &Attribute{name: name, attrType: typ, required: false}
	return e
}

// WithShape replaces the entity's whole shape.
func (e *Entity) WithShape(shape *RecordType) *Entity {
	e.shape = shape
	return e
}

// MemberOf declares the entity types this type's members may be
// children of. Names in the same namespace may be unqualified.
func (e *Entity) MemberOf(parentTypes ...string) *Entity {
	e.memberOf = append(e.memberOf, parentTypes...)
	return e
}

func (e *Entity) ensureShape() {
	if e.shape == nil {
		e.shape = &RecordType{attributes: make(map[string]*Attribute)}
	}
}

// addToNamespace implements the Declaration interface.
func (e *Entity) addToNamespace(ns *Namespace) {
	if ns.entities == nil {
		ns.entities = make(map[string]*Entity)
	}
	ns.entities[e.name] = e
}
