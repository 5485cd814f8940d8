// Package rrtplanner implements an incremental sampling-based motion
// planning core: a planner graph with insert/delete event fan-out, the RRT,
// RRG, and RRT* iteration algorithms behind pluggable sampler, distance
// evaluator, extender, collision checker, and model checker components, and
// a minimum-time reachability component that tracks the best known solution
// as the graph evolves.
package rrtplanner

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Planner owns the graph and composes the plug-in components. It is the base
// of the RRT family: the concrete planners embed it and drive growth through
// InsertTrajectory, DeleteEdge, and friends.
//
// The planner is single-threaded and cooperative. One logical goroutine
// drives Iteration calls; the planner never starts goroutines of its own.
type Planner struct {
	sampler   Sampler
	distance  DistanceEvaluator
	extender  Extender
	collision CollisionChecker
	model     ModelChecker
	cost      CostEvaluator

	root     *Vertex
	vertices []*Vertex
	nextID   int

	observers []GraphObserver

	log         golog.Logger
	initialized bool
}

// NewPlanner builds a planner from the five required components. A cost
// evaluator may be added with SetCostEvaluator; RRT* requires one. The zero
// value of Planner is also usable with the Set* methods for staged wiring.
func NewPlanner(
	sampler Sampler,
	distance DistanceEvaluator,
	extender Extender,
	collision CollisionChecker,
	model ModelChecker,
) *Planner {
	return &Planner{
		sampler:   sampler,
		distance:  distance,
		extender:  extender,
		collision: collision,
		model:     model,
	}
}

// SetSampler replaces the sampler component.
func (p *Planner) SetSampler(s Sampler) { p.sampler = s }

// SetDistanceEvaluator replaces the distance evaluator component.
func (p *Planner) SetDistanceEvaluator(de DistanceEvaluator) { p.distance = de }

// SetExtender replaces the extender component.
func (p *Planner) SetExtender(e Extender) { p.extender = e }

// SetCollisionChecker replaces the collision checker component.
func (p *Planner) SetCollisionChecker(cc CollisionChecker) { p.collision = cc }

// SetModelChecker replaces the model checker component.
func (p *Planner) SetModelChecker(mc ModelChecker) { p.model = mc }

// SetCostEvaluator sets the cost evaluator consulted for every inserted
// edge. Optional for RRT and RRG, required for RRT*.
func (p *Planner) SetCostEvaluator(ce CostEvaluator) { p.cost = ce }

// SetLogger sets the planner's logger. The default discards everything.
func (p *Planner) SetLogger(log golog.Logger) { p.log = log }

func (p *Planner) logger() golog.Logger {
	if p.log == nil {
		p.log = zap.NewNop().Sugar()
	}
	return p.log
}

// RegisterObserver adds a user observer notified after the distance
// evaluator and model checker for every graph mutation.
func (p *Planner) RegisterObserver(o GraphObserver) {
	p.observers = append(p.observers, o)
}

// ClearObservers removes all user observers.
func (p *Planner) ClearObservers() {
	p.observers = nil
}

// RootVertex returns the root, or nil before Initialize.
func (p *Planner) RootVertex() *Vertex { return p.root }

// Vertices returns the planner's vertex list in insertion order. The slice
// is the planner's own; callers must not mutate it.
func (p *Planner) Vertices() []*Vertex { return p.vertices }

// NumVertices returns the current vertex count.
func (p *Planner) NumVertices() int { return len(p.vertices) }

func (p *Planner) componentsReady() error {
	switch {
	case p.sampler == nil:
		return errors.Wrap(ErrPreconditionViolated, "no sampler")
	case p.distance == nil:
		return errors.Wrap(ErrPreconditionViolated, "no distance evaluator")
	case p.extender == nil:
		return errors.Wrap(ErrPreconditionViolated, "no extender")
	case p.collision == nil:
		return errors.Wrap(ErrPreconditionViolated, "no collision checker")
	case p.model == nil:
		return errors.Wrap(ErrPreconditionViolated, "no model checker")
	}
	return nil
}

// Initialize discards any existing graph and seeds a new root vertex with
// the given state, zero cost, and an empty trajectory. Calling it twice in a
// row is equivalent to calling it once. Plug-in indices are purged through
// the usual delete notifications before the new root is inserted.
func (p *Planner) Initialize(rootState State) error {
	if err := p.componentsReady(); err != nil {
		return err
	}

	p.clear()

	root := &Vertex{State: rootState}
	p.InsertVertex(root)
	p.root = root
	p.initialized = true

	if p.cost != nil {
		p.cost.UpdateVertexCost(root)
	}

	p.logger().Debugw("planner initialized", "root", rootState)
	return nil
}

// clear deletes every vertex through the normal delete path so observers and
// plug-in indices see the teardown, then resets the graph.
func (p *Planner) clear() {
	for len(p.vertices) > 0 {
		p.removeVertex(p.vertices[len(p.vertices)-1])
	}
	p.root = nil
	p.initialized = false
}

// InsertVertex appends v to the graph, assigns its stable ID, and fires the
// insert notifications: distance evaluator, model checker, then user
// observers.
func (p *Planner) InsertVertex(v *Vertex) {
	p.nextID++
	v.ID = p.nextID
	p.vertices = append(p.vertices, v)

	if p.distance != nil {
		p.distance.OnInsertVertex(v)
	}
	if p.model != nil {
		p.model.OnInsertVertex(v)
	}
	for _, o := range p.observers {
		o.OnInsertVertex(v)
	}
}

// DeleteVertex removes v and all its incident edges from the graph. The
// delete notifications fire first so indices can purge, then incoming and
// outgoing edges are deleted through DeleteEdge, then the vertex itself is
// removed. Deleting the root is not permitted.
func (p *Planner) DeleteVertex(v *Vertex) error {
	if v == p.root {
		return errors.Wrap(ErrPreconditionViolated, "cannot delete the root vertex")
	}
	p.removeVertex(v)
	return nil
}

func (p *Planner) removeVertex(v *Vertex) {
	if p.distance != nil {
		p.distance.OnDeleteVertex(v)
	}
	if p.model != nil {
		p.model.OnDeleteVertex(v)
	}
	for _, o := range p.observers {
		o.OnDeleteVertex(v)
	}

	for len(v.Incoming) > 0 {
		p.DeleteEdge(v.Incoming[len(v.Incoming)-1])
	}
	for len(v.Outgoing) > 0 {
		p.DeleteEdge(v.Outgoing[len(v.Outgoing)-1])
	}

	for i, cur := range p.vertices {
		if cur == v {
			p.vertices = append(p.vertices[:i], p.vertices[i+1:]...)
			break
		}
	}
}

// InsertEdge links src to dst through e, appends e to the incidence lists,
// and fires the insert notifications.
func (p *Planner) InsertEdge(src *Vertex, e *Edge, dst *Vertex) {
	e.Src = src
	e.Dst = dst
	src.Outgoing = append(src.Outgoing, e)
	dst.Incoming = append(dst.Incoming, e)

	if p.distance != nil {
		p.distance.OnInsertEdge(e)
	}
	if p.model != nil {
		p.model.OnInsertEdge(e)
	}
	for _, o := range p.observers {
		o.OnInsertEdge(e)
	}
}

// DeleteEdge fires the delete notifications, unlinks e from its endpoints,
// and drops it together with its trajectory.
func (p *Planner) DeleteEdge(e *Edge) {
	if p.distance != nil {
		p.distance.OnDeleteEdge(e)
	}
	if p.model != nil {
		p.model.OnDeleteEdge(e)
	}
	for _, o := range p.observers {
		o.OnDeleteEdge(e)
	}

	e.Src.Outgoing = removeEdge(e.Src.Outgoing, e)
	e.Dst.Incoming = removeEdge(e.Dst.Incoming, e)
	e.Src = nil
	e.Dst = nil
	e.Trajectory = nil
}

// InsertTrajectory adds traj to the graph as an edge out of src. When dst is
// nil a new vertex is created at the trajectory's final state. The final
// state is removed from the trajectory in either case, since the vertex
// represents it from now on. The edge cost is priced by the cost evaluator
// when one is set.
//
// Vertex and edge are inserted under the usual event fan-out: vertex insert
// notifications first, then edge insert notifications.
func (p *Planner) InsertTrajectory(src *Vertex, traj *Trajectory, dst *Vertex) (*Vertex, *Edge, error) {
	final := traj.LastState()
	if final == nil {
		return nil, nil, errors.Wrap(ErrPreconditionViolated, "empty trajectory")
	}
	traj.States = traj.States[:len(traj.States)-1]

	if dst == nil {
		dst = &Vertex{State: final}
		p.InsertVertex(dst)
	}

	e := &Edge{Trajectory: traj}
	if p.cost != nil {
		e.Cost = p.cost.EvaluateCost(src.State, traj, dst.State)
	}
	p.InsertEdge(src, e, dst)
	if p.cost != nil {
		p.cost.UpdateEdgeCost(e)
	}

	return dst, e, nil
}

// checkExtension prepends the source state to the extended trajectory and
// runs the collision check over the combined motion.
func (p *Planner) checkExtension(from State, traj *Trajectory) bool {
	combined := &Trajectory{
		States: append([]State{from}, traj.States...),
		Inputs: traj.Inputs,
	}
	return p.collision.CheckTrajectory(combined)
}

// connect adds an edge from src to dst when the extender reaches dst's state
// exactly and the motion is collision-free. This is the RRG-style near-set
// connection; the destination exists already, so InsertTrajectory only adds
// the edge.
func (p *Planner) connect(src, dst *Vertex) {
	traj, exact, err := p.extender.Extend(src.State, dst.State)
	if err != nil || !exact {
		return
	}
	if !p.checkExtension(src.State, traj) {
		return
	}
	_, _, _ = p.InsertTrajectory(src, traj, dst)
}
