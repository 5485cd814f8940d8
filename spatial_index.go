package rrtplanner

import (
	"github.com/dhconnelly/rtreego"
	"gonum.org/v1/gonum/floats"
)

// vertexEntry wraps a vertex for R-tree storage.
type vertexEntry struct {
	vertex *Vertex
	rect   rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *vertexEntry) Bounds() rtreego.Rect {
	return e.rect
}

// RTreeDistanceEvaluator is a DistanceEvaluator backed by an R-tree over
// vertex positions. Distance is Euclidean over the first dim state
// components. The index maintains itself through the planner's insert and
// delete notifications; vertex references are lookup keys only and are
// dropped on delete.
type RTreeDistanceEvaluator struct {
	dim     int
	tree    *rtreego.Rtree
	entries map[*Vertex]*vertexEntry
}

// NewRTreeDistanceEvaluator builds an evaluator indexing the first dim
// components of every vertex state.
func NewRTreeDistanceEvaluator(dim int) *RTreeDistanceEvaluator {
	return &RTreeDistanceEvaluator{
		dim:     dim,
		tree:    rtreego.NewTree(dim, 25, 50),
		entries: make(map[*Vertex]*vertexEntry),
	}
}

func (d *RTreeDistanceEvaluator) point(s State) rtreego.Point {
	pt := make(rtreego.Point, d.dim)
	for i := 0; i < d.dim && i < len(s); i++ {
		pt[i] = s[i]
	}
	return pt
}

// OnInsertVertex adds the vertex to the index.
func (d *RTreeDistanceEvaluator) OnInsertVertex(v *Vertex) {
	lengths := make([]float64, d.dim)
	for i := range lengths {
		lengths[i] = rectExtent
	}
	rect, err := rtreego.NewRect(d.point(v.State), lengths)
	if err != nil {
		return
	}
	entry := &vertexEntry{vertex: v, rect: rect}
	d.entries[v] = entry
	d.tree.Insert(entry)
}

// OnDeleteVertex purges the vertex from the index.
func (d *RTreeDistanceEvaluator) OnDeleteVertex(v *Vertex) {
	entry, ok := d.entries[v]
	if !ok {
		return
	}
	d.tree.Delete(entry)
	delete(d.entries, v)
}

// OnInsertEdge is a no-op; the index covers vertices only.
func (d *RTreeDistanceEvaluator) OnInsertEdge(e *Edge) {}

// OnDeleteEdge is a no-op.
func (d *RTreeDistanceEvaluator) OnDeleteEdge(e *Edge) {}

// Nearest returns the indexed vertex closest to the query state, or nil
// when the index is empty.
func (d *RTreeDistanceEvaluator) Nearest(s State) *Vertex {
	if len(d.entries) == 0 {
		return nil
	}
	obj := d.tree.NearestNeighbor(d.point(s))
	if obj == nil {
		return nil
	}
	return obj.(*vertexEntry).vertex
}

// Near returns every indexed vertex within Euclidean radius r of the query
// state.
func (d *RTreeDistanceEvaluator) Near(s State, r float64) []*Vertex {
	if r <= 0 || len(d.entries) == 0 {
		return nil
	}

	corner := make(rtreego.Point, d.dim)
	lengths := make([]float64, d.dim)
	center := d.point(s)
	for i := 0; i < d.dim; i++ {
		corner[i] = center[i] - r
		lengths[i] = 2 * r
	}
	rect, err := rtreego.NewRect(corner, lengths)
	if err != nil {
		return nil
	}

	results := d.tree.SearchIntersect(rect)
	out := make([]*Vertex, 0, len(results))
	for _, item := range results {
		v := item.(*vertexEntry).vertex
		if floats.Distance(d.point(v.State), center, 2) <= r {
			out = append(out, v)
		}
	}
	return out
}
