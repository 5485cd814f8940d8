package rrtplanner

import "github.com/pkg/errors"

// RRTStar is the asymptotically optimal variant. On top of the RRG near
// set it chooses the lowest-cost parent for every new vertex and rewires
// near vertices through the new vertex whenever that lowers their cost,
// propagating the improvement to their descendants.
//
// The Phase option selects how much of that runs each iteration: PhaseRRT
// is pure extension, PhaseConnect runs RRG-style bidirectional near-set
// connections instead of rewiring, and PhaseRewire is the full algorithm.
// Under PhaseRRT and PhaseRewire the graph stays a tree and every vertex
// carries the total cost of its parent chain; PhaseConnect builds a graph
// with multiple incoming edges, extracted with ShortestPathToGoal rather
// than through the cost bookkeeping.
//
// The cost evaluator is authoritative: every candidate edge in choose-parent
// and rewire is priced with EvaluateCost.
type RRTStar struct {
	Planner
	opts Options
}

// NewRRTStar builds an RRT* planner. The cost evaluator is required;
// MinimumTimeReachability fills both the model checker and cost evaluator
// roles.
func NewRRTStar(
	sampler Sampler,
	distance DistanceEvaluator,
	extender Extender,
	collision CollisionChecker,
	model ModelChecker,
	cost CostEvaluator,
	opts Options,
) (*RRTStar, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if cost == nil {
		return nil, errors.Wrap(ErrPreconditionViolated, "rrtstar requires a cost evaluator")
	}
	p := &RRTStar{
		Planner: *NewPlanner(sampler, distance, extender, collision, model),
		opts:    opts,
	}
	p.SetCostEvaluator(cost)
	return p, nil
}

// Iteration runs one RRT* iteration. It returns true when the graph grew
// and false for a no-op; failed extensions and collisions are expected and
// never surface as errors.
func (p *RRTStar) Iteration() (bool, error) {
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

	endpoint := traj.LastState()

	if p.opts.Phase == PhaseRRT {
		_, err := p.insertWithParent(nearest, traj)
		return err == nil, err
	}

	// The near set is computed around the candidate endpoint before the new
	// vertex exists, so it never contains the vertex itself.
	radius := p.opts.nearRadius(p.NumVertices())
	nearSet := p.distance.Near(endpoint, radius)

	if p.opts.Phase == PhaseConnect {
		vNew, err := p.insertWithParent(nearest, traj)
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

	parent, parentTraj := p.chooseParent(nearSet, endpoint, nearest, traj)

	vNew, err := p.insertWithParent(parent, parentTraj)
	if err != nil {
		return false, err
	}
	p.rewire(nearSet, parent, vNew)

	return true, nil
}

// chooseParent picks the near vertex minimising total cost to the endpoint.
// Candidates must extend to the endpoint exactly and without collision. Ties
// on total cost prefer the candidate with the lower accumulated cost, then
// the earlier candidate. When no candidate qualifies the nearest vertex and
// its original extension are kept.
func (p *RRTStar) chooseParent(
	nearSet []*Vertex,
	endpoint State,
	nearest *Vertex,
	nearestTraj *Trajectory,
) (*Vertex, *Trajectory) {
	var (
		best     *Vertex
		bestTraj *Trajectory
		bestCost float64
	)

	for _, u := range nearSet {
		traj, exact, err := p.extender.Extend(u.State, endpoint)
		if err != nil || !exact {
			continue
		}
		if !p.checkExtension(u.State, traj) {
			continue
		}
		total := u.TotalCost + p.cost.EvaluateCost(u.State, traj, endpoint)

		switch {
		case best == nil,
			total < bestCost,
			total == bestCost && u.TotalCost < best.TotalCost:
			best, bestTraj, bestCost = u, traj, total
		}
	}

	if best == nil {
		return nearest, nearestTraj
	}
	return best, bestTraj
}

// insertWithParent inserts the trajectory under parent, sets the new
// vertex's accumulated cost, and fires the vertex cost update.
func (p *RRTStar) insertWithParent(parent *Vertex, traj *Trajectory) (*Vertex, error) {
	vNew, e, err := p.InsertTrajectory(parent, traj, nil)
	if err != nil {
		return nil, err
	}
	vNew.TotalCost = parent.TotalCost + e.Cost
	p.cost.UpdateVertexCost(vNew)
	return vNew, nil
}

// rewire redirects each near vertex through vNew when that strictly lowers
// its cost, then propagates the new costs to its descendants depth-first.
// The tree invariant holds because exactly one incoming edge is deleted
// before one is inserted.
func (p *RRTStar) rewire(nearSet []*Vertex, parent, vNew *Vertex) {
	for _, u := range nearSet {
		if u == parent || u == vNew || u.IsRoot() {
			continue
		}

		traj, exact, err := p.extender.Extend(vNew.State, u.State)
		if err != nil || !exact {
			continue
		}
		if !p.checkExtension(vNew.State, traj) {
			continue
		}
		edgeCost := p.cost.EvaluateCost(vNew.State, traj, u.State)
		if vNew.TotalCost+edgeCost >= u.TotalCost {
			continue
		}

		old := u.ParentEdge()
		if old == nil || len(u.Incoming) != 1 {
			p.logger().Errorw("rewire on vertex without unique parent", "vertex", u.ID)
			continue
		}
		p.DeleteEdge(old)
		_, e, err := p.InsertTrajectory(vNew, traj, u)
		if err != nil {
			continue
		}

		u.TotalCost = vNew.TotalCost + e.Cost
		p.cost.UpdateVertexCost(u)
		p.propagateCost(u, vNew)
	}
}

// propagateCost pushes v's updated cost to its descendants depth-first. The
// newly added vertex is skipped so it is never treated as its own
// descendant.
func (p *RRTStar) propagateCost(v, skip *Vertex) {
	for _, e := range v.Outgoing {
		child := e.Dst
		if child == skip {
			continue
		}
		child.TotalCost = v.TotalCost + e.Cost
		p.cost.UpdateVertexCost(child)
		p.propagateCost(child, skip)
	}
}
