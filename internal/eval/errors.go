package eval

import "errors"

// Evaluation error kinds. Callers classify failures with errors.Is; the
// authorizer records the formatted message in the response diagnostics.
var (
	ErrAttributeNotFound      = errors.New("attribute not found")
	ErrEntityNotFound         = errors.New("entity not found")
	ErrTypeMismatch           = errors.New("type mismatch")
	ErrUnknownExtension       = errors.New("unknown extension function")
	ErrRecursionLimitExceeded = errors.New("recursion limit exceeded")
	ErrIntegerOverflow        = errors.New("integer overflow")
)
