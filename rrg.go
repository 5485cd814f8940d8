package rrtplanner

import "github.com/pkg/errors"

// RRG is the rapidly-exploring random graph planner. Each iteration performs
// an RRT extension and then connects the new vertex bidirectionally to every
// near vertex other than its parent (the nearest vertex) that it can reach
// exactly and without collision. The result is a graph: vertices may carry
// several incoming edges.
type RRG struct {
	Planner
	opts Options
}

// NewRRG builds an RRG planner. The options' Phase field is ignored; RRG
// always runs its near-set connections.
func NewRRG(
	sampler Sampler,
	distance DistanceEvaluator,
	extender Extender,
	collision CollisionChecker,
	model ModelChecker,
	opts Options,
) (*RRG, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &RRG{
		Planner: *NewPlanner(sampler, distance, extender, collision, model),
		opts:    opts,
	}, nil
}

// Iteration runs one RRG iteration: steps 1-5 of RRT, then bidirectional
// exact connections between the new vertex and its near set.
func (p *RRG) Iteration() (bool, error) {
	if !p.initialized {
		return false, errors.Wrap(ErrPreconditionViolated, "iteration before initialize")
	}

	sample, err := p.sampler.Sample()
	if err != nil {
		return false, err
	}

	nearest := p.distance.Nearest(sample)
	if nearest == nil {
		return false, errors.Wrap(ErrInconsistent, "distance evaluator returned no vertex")
	}

	traj, _, err := p.extender.Extend(nearest.State, sample)
	if err != nil {
		return false, nil
	}
	if !p.checkExtension(nearest.State, traj) {
		return false, nil
	}

	// The near set is computed around the extension endpoint before the new
	// vertex exists, so it never contains the vertex itself.
	endpoint := traj.LastState()
	radius := p.opts.nearRadius(p.NumVertices())
	nearSet := p.distance.Near(endpoint, radius)

	vNew, _, err := p.InsertTrajectory(nearest, traj, nil)
	if err != nil {
		return false, err
	}

	for _, u := range nearSet {
		if u == nearest {
			continue
		}
		p.connect(u, vNew)
		p.connect(vNew, u)
	}

	return true, nil
}
