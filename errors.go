package cedar

import "errors"

// Construction errors, classified with errors.Is. Parse errors carry
// their own line and column information in the message.
var (
	// ErrDuplicatePolicyID is returned when a policy is added to a
	// PolicySet under an id that is already taken.
	ErrDuplicatePolicyID = errors.New("duplicate policy id")

	// ErrInvalidRequest is recorded in diagnostics when a request's
	// principal, action or resource uid has an empty type.
	ErrInvalidRequest = errors.New("invalid request")
)
