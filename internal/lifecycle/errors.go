package lifecycle

import "errors"

// Error taxonomy for lifecycle operations. The HTTP layer maps these onto
// status codes; collaborator failures that must not fail the primary
// operation are logged instead of returned.
var (
	// ErrValidation marks bad or missing caller input.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks an unknown entity id.
	ErrNotFound = errors.New("not found")

	// ErrState marks an illegal status transition attempt.
	ErrState = errors.New("illegal status transition")

	// ErrDependency marks an unreachable backing service. Persisted state
	// is never left partially written when it is returned.
	ErrDependency = errors.New("dependency unavailable")
)
