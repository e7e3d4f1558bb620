package schema

// Type represents a declared Cedar type: a primitive (String, Long,
// Bool), a Set, a Record, or a reference to an entity type.
type Type interface {
	isType()
}

// Attribute is one field of a record type.
type Attribute struct {
	name     string
	attrType Type
	required bool
}

// Attr creates a required attribute for use with Record.
func Attr(name string, typ Type) *Attribute {
	return &Attribute{name: name, attrType: typ, required: true}
}

// OptionalAttr creates an optional attribute for use with Record.
func OptionalAttr(name string, typ Type) *Attribute {
	return &Attribute{name: name, attrType: typ, required: false}
}

// RecordType is a structured record with named attributes.
type RecordType struct {
	attributes map[string]*Attribute
}

// Record creates a record type with the given attributes.
func Record(attrs ...*Attribute) *RecordType {
	record := &RecordType{attributes: make(map[string]*Attribute)}
	for _, attr := range attrs {
		record.attributes[attr.name] = attr
	}
	return record
}

// WithAttribute adds a required attribute to the record type.
func (r *RecordType) WithAttribute(name string, typ Type) *RecordType {
	r.attributes[name] = &Attribute{name: name, attrType: typ, required: true}
	return r
}

// WithOptionalAttribute adds an optional attribute to the record type.
func (r *RecordType) WithOptionalAttribute(name string, typ Type) *RecordType {
	r.attributes[name] = &Attribute{name: name, attrType: typ, required: false}
	return r
}

func (*RecordType) isType() {}

// SetType is a set whose elements all have one type.
type SetType struct {
	element Type
}

// Set creates a set type with the given element type.
func Set(element Type) *SetType {
	return &SetType{element: element}
}

func (*SetType) isType() {}

// PathType is a reference to a primitive or an entity type by name.
type PathType struct {
	path string
}

func (*PathType) isType() {}

// EntityRef creates a reference to an entity type. Names in the same
// namespace may be unqualified; otherwise use the full path, e.g.
// "PhotoApp::User".
func EntityRef(path string) *PathType {
	return &PathType{path: path}
}

// String returns the Cedar String primitive type.
func String() *PathType {
	return &PathType{path: "String"}
}

// Long returns the Cedar Long primitive type.
func Long() *PathType {
	return &PathType{path: "Long"}
}

// Bool returns the Cedar Bool primitive type.
func Bool() *PathType {
	return &PathType{path: "Bool"}
}

func isPrimitivePath(path string) bool {
	switch path {
	case "String", "Long", "Bool", "Boolean":
		return true
	}
	return false
}
