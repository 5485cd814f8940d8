package rrtplanner

import (
	"math"

	"github.com/pkg/errors"
)

// Phase selects which parts of the RRT* iteration run.
type Phase int

const (
	// PhaseRRT runs plain tree extension only.
	PhaseRRT Phase = iota
	// PhaseConnect adds the RRG-style bidirectional near-set connections.
	// Vertices may gain several incoming edges and no rewiring runs; the
	// graph is no longer a tree.
	PhaseConnect
	// PhaseRewire runs the full RRT* iteration: choose-best-parent plus
	// rewiring, preserving the tree invariant.
	PhaseRewire
)

// Options are the RRG/RRT* parameters. Build with DefaultOptions and adjust,
// then pass through Validate; the planners reject invalid options at
// construction rather than at iteration time.
type Options struct {
	// Phase controls which rewire phases run each iteration.
	Phase Phase

	// Gamma scales the near-radius schedule. Must be positive.
	Gamma float64

	// Dimension of the state space, used by the near-radius schedule.
	Dimension int

	// MaxRadius bounds the near radius from above. Must be positive.
	MaxRadius float64
}

// DefaultOptions returns full-RRT* options for a state space of the given
// dimension with a unit-less gamma of 1 and an unbounded-ish radius cap.
func DefaultOptions(dimension int) Options {
	return Options{
		Phase:     PhaseRewire,
		Gamma:     1,
		Dimension: dimension,
		MaxRadius: math.MaxFloat64,
	}
}

// Validate reports the first invalid parameter.
func (o Options) Validate() error {
	switch {
	case o.Phase < PhaseRRT || o.Phase > PhaseRewire:
		return errors.Wrapf(ErrPreconditionViolated, "phase %d out of range", o.Phase)
	case o.Gamma <= 0:
		return errors.Wrapf(ErrPreconditionViolated, "gamma %v must be positive", o.Gamma)
	case o.Dimension < 1:
		return errors.Wrapf(ErrPreconditionViolated, "dimension %d must be at least 1", o.Dimension)
	case o.MaxRadius <= 0:
		return errors.Wrapf(ErrPreconditionViolated, "max radius %v must be positive", o.MaxRadius)
	}
	return nil
}

// nearRadius is the shrinking RRG/RRT* ball radius for a graph of n
// vertices: min(gamma * (log(n)/n)^(1/d), maxRadius).
func (o Options) nearRadius(n int) float64 {
	if n < 2 {
		return 0
	}
	nf := float64(n)
	r := o.Gamma * math.Pow(math.Log(nf)/nf, 1/float64(o.Dimension))
	return math.Min(r, o.MaxRadius)
}
