package schema

// Action declares an operation together with the principal and resource
// types it applies to.
type Action struct {
	name      string
	memberOf  []string
	appliesTo *AppliesTo
}

// AppliesTo constrains an action to principal and resource types, with
// an optional context shape.
type AppliesTo struct {
	principals []string
	resources  []string
	context    *RecordType
}

// NewAction declares an action with the given name, e.g. "viewPhoto".
func NewAction(name string) *Action {
	return &Action{name: name}
}

// MemberOf declares the action groups this action belongs to, by action
// id.
func (a *Action) MemberOf(groups ...string) *Action {
	a.memberOf = append(a.memberOf, groups...)
	return a
}

// AppliesTo sets the principal types, resource types and optional
// context shape for this action. A nil context means the action takes
// no declared context.
func (a *Action) AppliesTo(principals, resources []string, context *RecordType) *Action {
	a.appliesTo = &AppliesTo{
		principals: principals,
		resources:  resources,
		context:    context,
	}
	return a
}

// addToNamespace implements the Declaration interface.
func (a *Action) addToNamespace(ns *Namespace) {
	if ns.actions == nil {
		ns.actions = make(map[string]*Action)
	}
	ns.actions[a.name] = a
}

// Principals names the principal entity types for AppliesTo.
func Principals(types ...string) []string {
	return types
}

// Resources names the resource entity types for AppliesTo.
func Resources(types ...string) []string {
	return types
}
