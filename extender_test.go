package rrtplanner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestStraightLineExtenderExact(t *testing.T) {
	ext, err := NewStraightLineExtender(5, 0.5)
	require.NoError(t, err)

	traj, exact, err := ext.Extend(State{0, 0}, State{3, 0})
	require.NoError(t, err)
	assert.True(t, exact)
	// Exact arrival pins the endpoint bit-for-bit.
	assert.Equal(t, State{3, 0}, traj.LastState())
}

func TestStraightLineExtenderTruncates(t *testing.T) {
	ext, err := NewStraightLineExtender(2, 0.5)
	require.NoError(t, err)

	traj, exact, err := ext.Extend(State{0, 0}, State{10, 0})
	require.NoError(t, err)
	assert.False(t, exact)
	assert.InDelta(t, 2.0, floats.Distance(State{0, 0}, traj.LastState(), 2), 1e-9)
}

func TestStraightLineExtenderResolution(t *testing.T) {
	ext, err := NewStraightLineExtender(10, 0.5)
	require.NoError(t, err)

	traj, _, err := ext.Extend(State{0, 0}, State{3, 4})
	require.NoError(t, err)

	prev := State{0, 0}
	total := 0.0
	for i, s := range traj.States {
		step := floats.Distance(prev, s, 2)
		assert.LessOrEqual(t, step, 0.5+1e-9, "step %d too long", i)
		assert.InDelta(t, step, traj.Inputs[i][0], 1e-9, "input duration mismatch at %d", i)
		total += traj.Inputs[i][0]
		prev = s
	}
	// Unit speed: durations sum to path length.
	assert.InDelta(t, 5.0, total, 1e-9)
	require.Len(t, traj.Inputs, len(traj.States))
}

func TestStraightLineExtenderInputDeltas(t *testing.T) {
	ext, err := NewStraightLineExtender(10, 10)
	require.NoError(t, err)

	traj, _, err := ext.Extend(State{1, 1}, State{2, 3})
	require.NoError(t, err)
	require.Len(t, traj.Inputs, 1)
	in := traj.Inputs[0]
	assert.InDelta(t, math.Sqrt(5), in[0], 1e-9)
	assert.InDelta(t, 1, in[1], 1e-9)
	assert.InDelta(t, 2, in[2], 1e-9)
}

func TestStraightLineExtenderErrors(t *testing.T) {
	_, err := NewStraightLineExtender(1, 0)
	require.ErrorIs(t, err, ErrPreconditionViolated)

	ext, err := NewStraightLineExtender(1, 0.5)
	require.NoError(t, err)

	_, _, err = ext.Extend(State{0, 0}, State{0, 0, 0})
	require.ErrorIs(t, err, ErrExtensionFailed)

	_, _, err = ext.Extend(State{1, 1}, State{1, 1})
	require.ErrorIs(t, err, ErrExtensionFailed)
}
