package rrtplanner

import (
	"container/heap"
	"math"

	"github.com/pkg/errors"
)

// searchNode tracks one vertex in an A* search over the planner graph.
type searchNode struct {
	vertex *Vertex
	g      float64 // cost from the start vertex
	h      float64 // heuristic cost to the target
	f      float64 // g + h
	parent *searchNode
	index  int // index in the heap
}

// priorityQueue implements heap.Interface ordered by f.
type priorityQueue []*searchNode

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].f < pq[j].f
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x interface{}) {
	n := len(*pq)
	node := x.(*searchNode)
	node.index = n
	*pq = append(*pq, node)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*pq = old[0 : n-1]
	return node
}

// ShortestPath runs A* over the planner graph from one vertex to another
// following outgoing edges and their costs. A nil heuristic degrades to
// Dijkstra. Useful with RRG, whose graph admits many routes and maintains
// no per-vertex cost.
func ShortestPath(from, to *Vertex, heuristic func(State) float64) ([]*Vertex, bool) {
	if from == nil || to == nil {
		return nil, false
	}
	goal := func(v *Vertex) bool { return v == to }
	node := search(from, goal, heuristic)
	if node == nil {
		return nil, false
	}
	return reconstruct(node), true
}

// ShortestPathToGoal runs Dijkstra from the planner's root and returns the
// cheapest path to any goal-reaching vertex together with its cost.
func ShortestPathToGoal(p *Planner) ([]*Vertex, float64, error) {
	if p.RootVertex() == nil {
		return nil, 0, errors.Wrap(ErrPreconditionViolated, "planner not initialized")
	}
	node := search(p.RootVertex(), func(v *Vertex) bool { return v.ReachesGoal }, nil)
	if node == nil {
		return nil, 0, ErrNoSolution
	}
	return reconstruct(node), node.g, nil
}

func search(from *Vertex, goal func(*Vertex) bool, heuristic func(State) float64) *searchNode {
	h := heuristic
	if h == nil {
		h = func(State) float64 { return 0 }
	}

	openSet := &priorityQueue{}
	heap.Init(openSet)

	start := &searchNode{vertex: from, h: h(from.State)}
	start.f = start.h
	heap.Push(openSet, start)

	closed := make(map[*Vertex]bool)
	open := make(map[*Vertex]*searchNode)
	open[from] = start

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*searchNode)
		delete(open, current.vertex)

		if goal(current.vertex) {
			return current
		}
		closed[current.vertex] = true

		for _, e := range current.vertex.Outgoing {
			next := e.Dst
			if closed[next] {
				continue
			}
			tentative := current.g + e.Cost

			node, exists := open[next]
			if !exists {
				node = &searchNode{
					vertex: next,
					g:      tentative,
					h:      h(next.State),
					parent: current,
				}
				node.f = node.g + node.h
				heap.Push(openSet, node)
				open[next] = node
			} else if tentative < node.g {
				node.g = tentative
				node.f = node.g + node.h
				node.parent = current
				heap.Fix(openSet, node.index)
			}
		}
	}
	return nil
}

func reconstruct(node *searchNode) []*Vertex {
	var path []*Vertex
	for n := node; n != nil; n = n.parent {
		path = append(path, n.vertex)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// PathTrajectory assembles the forward trajectory along a vertex path,
// taking the cheapest edge between each consecutive pair. The result starts
// at the first vertex's state and ends at the last's.
func PathTrajectory(path []*Vertex) (*Trajectory, error) {
	if len(path) == 0 {
		return nil, errors.Wrap(ErrPreconditionViolated, "empty vertex path")
	}

	out := &Trajectory{States: []State{path[0].State.Clone()}}
	for i := 0; i+1 < len(path); i++ {
		e := cheapestEdge(path[i], path[i+1])
		if e == nil {
			return nil, errors.Wrapf(ErrInconsistent,
				"no edge between path vertices %d and %d", path[i].ID, path[i+1].ID)
		}
		for _, s := range e.Trajectory.States {
			out.States = append(out.States, s.Clone())
		}
		out.States = append(out.States, e.Dst.State.Clone())
		for _, in := range e.Trajectory.Inputs {
			out.Inputs = append(out.Inputs, in.Clone())
		}
	}
	return out, nil
}

func cheapestEdge(src, dst *Vertex) *Edge {
	var best *Edge
	bestCost := math.Inf(1)
	for _, e := range src.Outgoing {
		if e.Dst == dst && e.Cost < bestCost {
			best = e
			bestCost = e.Cost
		}
	}
	return best
}
