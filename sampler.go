package rrtplanner

import (
	"math/rand"

	"github.com/pkg/errors"
)

// UniformSampler draws states uniformly from a support region, with an
// optional bias that returns a state from the goal region instead on a
// configured fraction of draws.
type UniformSampler struct {
	support  Region
	goal     Region
	goalBias float64
	rng      *rand.Rand
}

// NewUniformSampler builds a sampler over the given support region. The
// seed makes runs reproducible.
func NewUniformSampler(support Region, seed int64) *UniformSampler {
	return &UniformSampler{
		support: support,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// SetGoalBias makes the sampler return a uniform state from the goal region
// with probability bias. A bias of zero disables it.
func (s *UniformSampler) SetGoalBias(bias float64, goal Region) error {
	if bias < 0 || bias > 1 {
		return errors.Wrapf(ErrPreconditionViolated, "goal bias %v out of [0,1]", bias)
	}
	s.goalBias = bias
	s.goal = goal
	return nil
}

// Sample returns a state from the support region, or from the goal region
// on a biased draw.
func (s *UniformSampler) Sample() (State, error) {
	if s.support.Dimension() == 0 {
		return nil, errors.Wrap(ErrPreconditionViolated, "sampler has no support region")
	}
	region := s.support
	if s.goalBias > 0 && s.rng.Float64() < s.goalBias {
		region = s.goal
	}

	out := make(State, region.Dimension())
	for i := range out {
		out[i] = region.Center[i] + region.Size[i]*(2*s.rng.Float64()-1)
	}
	return out, nil
}
