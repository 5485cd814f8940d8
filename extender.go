package rrtplanner

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// StraightLineExtender produces straight-line trajectories at unit speed.
// Extensions longer than MaxStep are truncated (and reported as inexact);
// the trajectory is discretised so no two consecutive states are farther
// apart than Resolution. Inputs carry [duration, dx_0, ..., dx_{d-1}] per
// segment, so the default time cost equals path length.
type StraightLineExtender struct {
	// MaxStep caps the length of a single extension. Zero or negative
	// means unbounded.
	MaxStep float64

	// Resolution is the maximum spacing between consecutive trajectory
	// states. Must be positive.
	Resolution float64
}

// NewStraightLineExtender builds an extender with the given step cap and
// discretisation resolution.
func NewStraightLineExtender(maxStep, resolution float64) (*StraightLineExtender, error) {
	if resolution <= 0 {
		return nil, errors.Wrapf(ErrPreconditionViolated, "resolution %v must be positive", resolution)
	}
	return &StraightLineExtender{MaxStep: maxStep, Resolution: resolution}, nil
}

// Extend returns the straight-line trajectory from `from` toward `to`. The
// exact flag is true when the endpoint equals `to`. The source state is not
// part of the returned trajectory.
func (e *StraightLineExtender) Extend(from, to State) (*Trajectory, bool, error) {
	if len(from) != len(to) {
		return nil, false, errors.Wrapf(ErrExtensionFailed,
			"state dimensions differ: %d vs %d", len(from), len(to))
	}
	dist := floats.Distance(from, to, 2)
	if dist == 0 {
		return nil, false, errors.Wrap(ErrExtensionFailed, "zero-length extension")
	}

	target := to
	exact := true
	if e.MaxStep > 0 && dist > e.MaxStep {
		target = make(State, len(from))
		for i := range target {
			target[i] = from[i] + (to[i]-from[i])*e.MaxStep/dist
		}
		dist = e.MaxStep
		exact = false
	}

	steps := int(math.Ceil(dist / e.Resolution))
	if steps < 1 {
		steps = 1
	}

	traj := &Trajectory{
		States: make([]State, 0, steps),
		Inputs: make([]Input, 0, steps),
	}
	prev := from
	for i := 1; i <= steps; i++ {
		s := make(State, len(from))
		for j := range s {
			s[j] = from[j] + (target[j]-from[j])*float64(i)/float64(steps)
		}
		in := make(Input, 1+len(s))
		in[0] = floats.Distance(prev, s, 2)
		for j := range s {
			in[1+j] = s[j] - prev[j]
		}
		traj.States = append(traj.States, s)
		traj.Inputs = append(traj.Inputs, in)
		prev = s
	}

	// Pin the endpoint so exact connections are exact in the == sense the
	// rewiring logic relies on, not merely within floating-point error.
	if exact {
		copy(traj.States[len(traj.States)-1], to)
	}

	return traj, exact, nil
}
