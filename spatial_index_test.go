package rrtplanner

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestRTreeEvaluatorNearestMatchesBruteForce(t *testing.T) {
	de := NewRTreeDistanceEvaluator(2)
	rng := rand.New(rand.NewSource(23))

	var vertices []*Vertex
	for i := 0; i < 200; i++ {
		v := &Vertex{ID: i + 1, State: State{rng.Float64() * 10, rng.Float64() * 10}}
		vertices = append(vertices, v)
		de.OnInsertVertex(v)
	}

	for i := 0; i < 50; i++ {
		q := State{rng.Float64() * 10, rng.Float64() * 10}

		var want *Vertex
		best := 0.0
		for _, v := range vertices {
			d := floats.Distance(v.State, q, 2)
			if want == nil || d < best {
				want, best = v, d
			}
		}

		got := de.Nearest(q)
		require.NotNil(t, got)
		assert.InDelta(t, best, floats.Distance(got.State, q, 2), 1e-12)
	}
}

func TestRTreeEvaluatorNear(t *testing.T) {
	de := NewRTreeDistanceEvaluator(2)

	inside := &Vertex{ID: 1, State: State{1, 0}}
	corner := &Vertex{ID: 2, State: State{1.8, 1.8}} // inside the bbox, outside the ball
	outside := &Vertex{ID: 3, State: State{5, 5}}
	de.OnInsertVertex(inside)
	de.OnInsertVertex(corner)
	de.OnInsertVertex(outside)

	near := de.Near(State{0, 0}, 2)
	assert.Contains(t, near, inside)
	assert.NotContains(t, near, corner, "bbox hits outside the radius must be filtered")
	assert.NotContains(t, near, outside)
}

func TestRTreeEvaluatorNearZeroRadius(t *testing.T) {
	de := NewRTreeDistanceEvaluator(2)
	de.OnInsertVertex(&Vertex{ID: 1, State: State{0, 0}})
	assert.Empty(t, de.Near(State{0, 0}, 0))
}

func TestRTreeEvaluatorDeletePurges(t *testing.T) {
	de := NewRTreeDistanceEvaluator(2)
	a := &Vertex{ID: 1, State: State{0, 0}}
	b := &Vertex{ID: 2, State: State{5, 5}}
	de.OnInsertVertex(a)
	de.OnInsertVertex(b)

	require.Same(t, a, de.Nearest(State{1, 1}))

	de.OnDeleteVertex(a)
	assert.Same(t, b, de.Nearest(State{1, 1}))

	de.OnDeleteVertex(b)
	assert.Nil(t, de.Nearest(State{1, 1}))

	// Deleting twice is harmless.
	de.OnDeleteVertex(b)
	assert.Nil(t, de.Nearest(State{1, 1}))
}

func TestRTreeEvaluatorHigherDimension(t *testing.T) {
	de := NewRTreeDistanceEvaluator(3)
	a := &Vertex{ID: 1, State: State{0, 0, 0}}
	b := &Vertex{ID: 2, State: State{0, 0, 3}}
	de.OnInsertVertex(a)
	de.OnInsertVertex(b)

	// Same planar position; the third component decides.
	assert.Same(t, b, de.Nearest(State{0, 0, 2.9}))
	near := de.Near(State{0, 0, 0}, 1)
	assert.Equal(t, []*Vertex{a}, near)
}
