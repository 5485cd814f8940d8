package rrtplanner

// Vertex is a node of the planner graph. It carries one state, its incident
// edges, and the per-algorithm annotations maintained by RRT* and the model
// checker. Vertices are owned by the planner; components may hold a vertex
// only between its insert and delete notifications.
type Vertex struct {
	// ID is a stable integer identifier, unique for the lifetime of the
	// planner. Plug-in indices should key on it rather than on the pointer.
	ID int

	State State

	// Incoming and Outgoing list the edges incident to this vertex. For RRT
	// and RRT* every non-root vertex has exactly one incoming edge; RRG
	// permits several.
	Incoming []*Edge
	Outgoing []*Edge

	// TotalCost is the accumulated cost along the parent chain from the
	// root. Maintained by RRT*; zero for the root.
	TotalCost float64

	// ReachesGoal marks states inside the goal region. Maintained by the
	// model checker on insert.
	ReachesGoal bool
}

// IsRoot reports whether the vertex has no incoming edges.
func (v *Vertex) IsRoot() bool {
	return len(v.Incoming) == 0
}

// ParentEdge returns the single incoming edge of a tree vertex, or nil for
// the root. When several incoming edges exist (RRG) the most recent one is
// returned.
func (v *Vertex) ParentEdge() *Edge {
	if len(v.Incoming) == 0 {
		return nil
	}
	return v.Incoming[len(v.Incoming)-1]
}

// Edge connects a source vertex to a destination vertex and owns the
// trajectory between their states. The trajectory holds the intermediate
// states only; the endpoint states live on the vertices.
type Edge struct {
	Src *Vertex
	Dst *Vertex

	Trajectory *Trajectory

	// Cost of traversing the edge, as priced by the cost evaluator at
	// insertion time. Zero when the planner has no cost evaluator.
	Cost float64
}

func removeEdge(edges []*Edge, e *Edge) []*Edge {
	for i, cur := range edges {
		if cur == e {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}
