// Package consts holds names shared between the parser, the JSON policy
// codec and the evaluator.
package consts

const (
	Principal = "principal"
	Action    = "action"
	Resource  = "resource"
	Context   = "context"
)
