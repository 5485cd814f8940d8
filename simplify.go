package rrtplanner

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// SimplifyTrajectory reduces a trajectory with the Douglas-Peucker
// algorithm: states farther than epsilon from the simplified polyline are
// kept, the rest dropped. Inputs are rebuilt per surviving segment in the
// straight-line convention ([duration at unit speed, deltas...]). The input
// trajectory is not modified; never run this on trajectories owned by graph
// edges in place.
func SimplifyTrajectory(t *Trajectory, epsilon float64) *Trajectory {
	if len(t.States) <= 2 || epsilon <= 0 {
		return t.Clone()
	}

	kept := douglasPeucker(t.States, epsilon)

	out := &Trajectory{States: make([]State, 0, len(kept))}
	for _, s := range kept {
		out.States = append(out.States, s.Clone())
	}
	for i := 0; i+1 < len(out.States); i++ {
		a, b := out.States[i], out.States[i+1]
		in := make(Input, 1+len(b))
		in[0] = floats.Distance(a, b, 2)
		for j := range b {
			in[1+j] = b[j] - a[j]
		}
		out.Inputs = append(out.Inputs, in)
	}
	return out
}

// douglasPeucker recursively keeps the point of maximum perpendicular
// distance from the chord while it exceeds epsilon.
func douglasPeucker(points []State, epsilon float64) []State {
	if len(points) <= 2 {
		return points
	}

	dmax := 0.0
	index := 0
	end := len(points) - 1
	for i := 1; i < end; i++ {
		d := perpendicularDistance(points[i], points[0], points[end])
		if d > dmax {
			dmax = d
			index = i
		}
	}

	if dmax <= epsilon {
		return []State{points[0], points[end]}
	}

	left := douglasPeucker(points[:index+1], epsilon)
	right := douglasPeucker(points[index:], epsilon)

	// left and right may alias the caller's slice; join into a fresh one.
	joined := make([]State, 0, len(left)+len(right)-1)
	joined = append(joined, left[:len(left)-1]...)
	joined = append(joined, right...)
	return joined
}

// perpendicularDistance is the distance from p to the segment a-b in the
// full state dimension.
func perpendicularDistance(p, a, b State) float64 {
	n := len(a)
	ab := make([]float64, n)
	ap := make([]float64, n)
	floats.SubTo(ab, b, a)
	floats.SubTo(ap, p, a)

	abLen2 := floats.Dot(ab, ab)
	if abLen2 == 0 {
		return floats.Distance(p, a, 2)
	}

	u := floats.Dot(ap, ab) / abLen2
	u = math.Max(0, math.Min(1, u))

	closest := make([]float64, n)
	for i := range closest {
		closest[i] = a[i] + u*ab[i]
	}
	return floats.Distance(p, closest, 2)
}
