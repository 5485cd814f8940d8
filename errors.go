package rrtplanner

import "github.com/pkg/errors"

// Sentinel errors for planner operations.
var (
	// ErrPreconditionViolated indicates a call that is not valid in the
	// planner's current state, such as Iteration before Initialize or an
	// attempt to delete the root vertex.
	ErrPreconditionViolated = errors.New("rrtplanner: precondition violated")

	// ErrExtensionFailed indicates the extender could not produce a
	// trajectory. Local to an iteration; never escapes Iteration.
	ErrExtensionFailed = errors.New("rrtplanner: extension failed")

	// ErrCollision indicates a trajectory intersects the forbidden set.
	// Local to an iteration; never escapes Iteration.
	ErrCollision = errors.New("rrtplanner: trajectory in collision")

	// ErrNoSolution indicates no goal-reaching vertex exists yet.
	ErrNoSolution = errors.New("rrtplanner: no solution")

	// ErrInconsistent indicates an internal invariant was violated, such as
	// an edge whose endpoints disagree with the incidence lists. Fatal.
	ErrInconsistent = errors.New("rrtplanner: graph inconsistent")
)
