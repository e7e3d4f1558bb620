package schema

// Namespace groups entity type and action declarations under a common
// prefix. Type names declared in a namespace are qualified with it, so
// entity `User` in namespace `PhotoApp` is the type `PhotoApp::User`.
type Namespace struct {
	name     string
	entities map[string]*Entity
	actions  map[string]*Action
}

// Declaration is implemented by Entity and Action so they can be added
// to a namespace with Schema.WithNamespace.
type Declaration interface {
	addToNamespace(ns *Namespace)
}
