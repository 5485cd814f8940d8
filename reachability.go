package rrtplanner

import (
	"github.com/edaniels/golog"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// DistanceFunc maps a state and the goal center to a per-component
// displacement; the goal test compares each component against the goal's
// half-extents. The default is component-wise subtraction.
type DistanceFunc func(state, goalCenter []float64) []float64

// TrajectoryCostFunc prices a trajectory between two states. The default
// sums the first component of every input, the segment durations, so the
// default cost is total time.
type TrajectoryCostFunc func(initial State, traj *Trajectory, final State) float64

// SolutionCallback is invoked with a deep copy of the best trajectory every
// time the tracked solution is replaced.
type SolutionCallback func(t *Trajectory)

// MinimumTimeReachability is the combined model checker and cost evaluator:
// it marks vertices that reach the goal region, tracks the goal-reaching
// vertex of minimum accumulated cost across insertions and rewires, and
// materialises the best root-to-goal trajectory on demand.
//
// An equal-cost newer vertex replaces the tracked one on purpose: after a
// rewire, the vertex on the shorter equivalent path supersedes the stale
// reference.
type MinimumTimeReachability struct {
	goal      Region
	distFn    DistanceFunc
	costFn    TrajectoryCostFunc
	callbacks []SolutionCallback

	minCostVertex *Vertex

	log golog.Logger
}

// NewMinimumTimeReachability builds the component for the given goal region.
func NewMinimumTimeReachability(goal Region) *MinimumTimeReachability {
	return &MinimumTimeReachability{goal: goal}
}

// SetGoalRegion replaces the goal region. Existing goal marks are not
// recomputed; callers should set the goal before initializing the planner.
func (m *MinimumTimeReachability) SetGoalRegion(goal Region) {
	m.goal = goal
}

// SetDistanceFunc overrides the component-wise goal distance.
func (m *MinimumTimeReachability) SetDistanceFunc(fn DistanceFunc) {
	m.distFn = fn
}

// SetCostFunc overrides the trajectory cost. The function must be
// side-effect free.
func (m *MinimumTimeReachability) SetCostFunc(fn TrajectoryCostFunc) {
	m.costFn = fn
}

// SetLogger sets the component's logger. The default discards everything.
func (m *MinimumTimeReachability) SetLogger(log golog.Logger) {
	m.log = log
}

func (m *MinimumTimeReachability) logger() golog.Logger {
	if m.log == nil {
		m.log = zap.NewNop().Sugar()
	}
	return m.log
}

// RegisterSolutionCallback adds a callback fired on every solution
// replacement.
func (m *MinimumTimeReachability) RegisterSolutionCallback(cb SolutionCallback) {
	if cb == nil {
		return
	}
	m.callbacks = append(m.callbacks, cb)
}

// ClearSolutionCallbacks removes all solution callbacks.
func (m *MinimumTimeReachability) ClearSolutionCallbacks() {
	m.callbacks = nil
}

// OnInsertVertex marks whether the vertex reaches the goal region.
func (m *MinimumTimeReachability) OnInsertVertex(v *Vertex) {
	v.ReachesGoal = m.reachesGoal(v.State)
}

// OnDeleteVertex drops the tracked solution when its vertex leaves the
// graph. The next cost update on a goal-reaching vertex re-establishes it.
func (m *MinimumTimeReachability) OnDeleteVertex(v *Vertex) {
	if v == m.minCostVertex {
		m.minCostVertex = nil
	}
}

// OnInsertEdge is a no-op; reachability is a property of vertices.
func (m *MinimumTimeReachability) OnInsertEdge(e *Edge) {}

// OnDeleteEdge is a no-op.
func (m *MinimumTimeReachability) OnDeleteEdge(e *Edge) {}

func (m *MinimumTimeReachability) reachesGoal(s State) bool {
	dim := m.goal.Dimension()
	if dim == 0 || len(s) < dim {
		return false
	}
	var dist []float64
	if m.distFn != nil {
		dist = m.distFn(s[:dim], m.goal.Center)
	} else {
		dist = make([]float64, dim)
		floats.SubTo(dist, s[:dim], m.goal.Center)
	}
	if len(dist) != dim {
		// A distance function returning the wrong dimensionality is a
		// defect in the caller's wiring, not a planning failure.
		m.logger().Errorw("distance function dimension mismatch",
			"want", dim, "got", len(dist))
		return false
	}
	for i, d := range dist {
		if d < 0 {
			d = -d
		}
		if d > m.goal.Size[i] {
			return false
		}
	}
	return true
}

// UpdateVertexCost tracks the goal-reaching vertex of minimum accumulated
// cost. Equal cost replaces (see the type comment). On every replacement the
// solution callbacks fire with a fresh deep copy of the best trajectory.
func (m *MinimumTimeReachability) UpdateVertexCost(v *Vertex) {
	if !v.ReachesGoal {
		return
	}
	if m.minCostVertex != nil && v.TotalCost > m.minCostVertex.TotalCost {
		return
	}

	m.minCostVertex = v
	m.logger().Debugw("solution cost", "cost", v.TotalCost)

	if len(m.callbacks) == 0 {
		return
	}
	best := m.materialize()
	for _, cb := range m.callbacks {
		cb(best.Clone())
	}
}

// UpdateEdgeCost is a no-op, retained for cost models that depend on edges
// beyond their endpoints.
func (m *MinimumTimeReachability) UpdateEdgeCost(e *Edge) {}

// EvaluateCost prices the trajectory with the configured cost function;
// the default is the sum of input durations.
func (m *MinimumTimeReachability) EvaluateCost(initial State, traj *Trajectory, final State) float64 {
	if m.costFn != nil {
		return m.costFn(initial, traj, final)
	}
	total := 0.0
	for _, in := range traj.Inputs {
		if len(in) > 0 {
			total += in[0]
		}
	}
	return total
}

// Solution returns a deep copy of the current best root-to-goal trajectory,
// or ErrNoSolution when no goal-reaching vertex exists yet. The trajectory
// is rebuilt on demand by walking incoming edges from the tracked vertex to
// the root.
func (m *MinimumTimeReachability) Solution() (*Trajectory, error) {
	if m.minCostVertex == nil {
		return nil, ErrNoSolution
	}
	return m.materialize(), nil
}

// BestCost returns the accumulated cost of the tracked solution vertex. The
// second return is false while no solution exists.
func (m *MinimumTimeReachability) BestCost() (float64, bool) {
	if m.minCostVertex == nil {
		return 0, false
	}
	return m.minCostVertex.TotalCost, true
}

// materialize rebuilds the forward trajectory from the root to the tracked
// vertex. Edge trajectories hold intermediate states only, so each hop
// contributes its intermediates followed by the destination vertex state.
func (m *MinimumTimeReachability) materialize() *Trajectory {
	var chain []*Edge
	for v := m.minCostVertex; ; {
		e := v.ParentEdge()
		if e == nil {
			break
		}
		chain = append(chain, e)
		v = e.Src
	}

	out := &Trajectory{}
	root := m.minCostVertex
	if len(chain) > 0 {
		root = chain[len(chain)-1].Src
	}
	out.States = append(out.States, root.State.Clone())

	for i := len(chain) - 1; i >= 0; i-- {
		e := chain[i]
		for _, s := range e.Trajectory.States {
			out.States = append(out.States, s.Clone())
		}
		out.States = append(out.States, e.Dst.State.Clone())
		for _, in := range e.Trajectory.Inputs {
			out.Inputs = append(out.Inputs, in.Clone())
		}
	}
	return out
}
