package rrtplanner

// GraphObserver receives a notification for every graph mutation. The
// distance evaluator and the model checker observe through this same
// interface; user extensions register additional observers on the planner.
//
// Observers must not mutate the graph from inside a notification. For each
// mutation the distance evaluator is notified first, the model checker
// second, and user observers third, in registration order.
type GraphObserver interface {
	OnInsertVertex(v *Vertex)
	OnDeleteVertex(v *Vertex)
	OnInsertEdge(e *Edge)
	OnDeleteEdge(e *Edge)
}

// ObserverFuncs adapts free functions to GraphObserver so callers can react
// to only the events they care about. Nil fields are skipped.
type ObserverFuncs struct {
	InsertVertex func(v *Vertex)
	DeleteVertex func(v *Vertex)
	InsertEdge   func(e *Edge)
	DeleteEdge   func(e *Edge)
}

func (o ObserverFuncs) OnInsertVertex(v *Vertex) {
	if o.InsertVertex != nil {
		o.InsertVertex(v)
	}
}

func (o ObserverFuncs) OnDeleteVertex(v *Vertex) {
	if o.DeleteVertex != nil {
		o.DeleteVertex(v)
	}
}

func (o ObserverFuncs) OnInsertEdge(e *Edge) {
	if o.InsertEdge != nil {
		o.InsertEdge(e)
	}
}

func (o ObserverFuncs) OnDeleteEdge(e *Edge) {
	if o.DeleteEdge != nil {
		o.DeleteEdge(e)
	}
}

// Sampler draws states from a configured support region. Implementations may
// bias toward a goal region.
type Sampler interface {
	Sample() (State, error)
}

// DistanceEvaluator answers nearest and near-set queries over the current
// vertex set. It keeps its index consistent by observing graph mutations.
type DistanceEvaluator interface {
	GraphObserver

	// Nearest returns a vertex minimising the evaluator's distance to the
	// query state, or nil when the graph is empty.
	Nearest(s State) *Vertex

	// Near returns every vertex within radius r of the query state.
	Near(s State, r float64) []*Vertex
}

// Extender produces a dynamically feasible trajectory from one state toward
// another. The returned flag reports whether the trajectory's endpoint
// equals the target exactly, which RRG and RRT* require before connecting
// two existing vertices. A nil trajectory with ErrExtensionFailed means no
// extension exists.
type Extender interface {
	Extend(from, to State) (traj *Trajectory, exact bool, err error)
}

// CollisionChecker decides admissibility. Both checks return true when
// collision-free. Trajectory checks must inspect every state including the
// endpoint; the planner prepends the source state before checking an
// extension so the whole motion is covered.
type CollisionChecker interface {
	CheckState(s State) bool
	CheckTrajectory(t *Trajectory) bool
}

// ModelChecker decides whether the current graph satisfies the termination
// predicate and produces the satisfying trajectory. It observes graph
// mutations to track candidate vertices incrementally.
type ModelChecker interface {
	GraphObserver

	// Solution returns the current satisfying trajectory as a deep copy,
	// or ErrNoSolution when the predicate does not hold yet.
	Solution() (*Trajectory, error)
}

// CostEvaluator prices trajectories and is informed of vertex and edge cost
// changes. EvaluateCost is side-effect free; the update hooks let stateful
// evaluators react to RRT* cost propagation.
type CostEvaluator interface {
	// EvaluateCost returns the cost of traversing traj from initial to
	// final.
	EvaluateCost(initial State, traj *Trajectory, final State) float64

	// UpdateVertexCost is fired whenever v.TotalCost is set or changes.
	UpdateVertexCost(v *Vertex)

	// UpdateEdgeCost is fired when an edge's cost is set. Retained for cost
	// models that depend on edges beyond their endpoints; implementations
	// may ignore it.
	UpdateEdgeCost(e *Edge)
}
