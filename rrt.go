package rrtplanner

import "github.com/pkg/errors"

// RRT is the basic rapidly-exploring random tree planner. Each iteration
// samples a state, extends the nearest vertex toward it, and inserts the
// collision-free extension as a fresh leaf. The graph stays a tree: only
// InsertTrajectory adds edges, always to a freshly created destination.
type RRT struct {
	Planner
}

// NewRRT builds an RRT planner from the five components.
func NewRRT(
	sampler Sampler,
	distance DistanceEvaluator,
	extender Extender,
	collision CollisionChecker,
	model ModelChecker,
) *RRT {
	return &RRT{Planner: *NewPlanner(sampler, distance, extender, collision, model)}
}

// Iteration runs one RRT iteration. It returns true when the graph grew and
// false for a no-op (failed extension or collision, which are expected and
// not surfaced as errors).
func (p *RRT) Iteration() (bool, error) {
	if !p.initialized {
		return false, errors.Wrap(ErrPreconditionViolated, "iteration before initialize")
	}

	sample, err := p.sampler.Sample()
	if err != nil {
		return false, err
	}

	near := p.distance.Nearest(sample)
	if near == nil {
		return false, errors.Wrap(ErrInconsistent, "distance evaluator returned no vertex")
	}

	traj, _, err := p.extender.Extend(near.State, sample)
	if err != nil {
		return false, nil
	}
	if !p.checkExtension(near.State, traj) {
		return false, nil
	}

	if _, _, err := p.InsertTrajectory(near, traj, nil); err != nil {
		return false, err
	}
	return true, nil
}
