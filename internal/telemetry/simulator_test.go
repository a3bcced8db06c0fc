package telemetry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// silentNoise turns the stochastic terms off so formula values are exact.
type silentNoise struct{}

func (silentNoise) NormFloat64() float64 { return 0 }

// constNoise always draws the same value, handy for forcing the clamps.
type constNoise struct{ v float64 }

func (n constNoise) NormFloat64() float64 { return n.v }

func TestAdvanceClockMonotonic(t *testing.T) {
	sim := NewSimulator(silentNoise{})

	for i := 1; i <= 50; i++ {
		sample, err := sim.Advance(0.25)
		require.NoError(t, err)
		assert.InDelta(t, float64(i)*0.25, sample.Elapsed, 1e-12)
	}
	assert.InDelta(t, 12.5, sim.Elapsed(), 1e-12)
}

func TestAdvanceRejectsNonPositiveStep(t *testing.T) {
	sim := NewSimulator(silentNoise{})

	_, err := sim.Advance(0)
	require.ErrorIs(t, err, ErrInvalidStep)

	_, err = sim.Advance(-1)
	require.ErrorIs(t, err, ErrInvalidStep)

	// A rejected step must not move the clock or the buffers.
	assert.Equal(t, 0.0, sim.Elapsed())
	sample, err := sim.Advance(0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.5, sample.Elapsed)
}

func TestZeroNoiseFirstSample(t *testing.T) {
	sim := NewSimulator(silentNoise{})
	sim.Reset()

	sample, err := sim.Advance(0.5)
	require.NoError(t, err)

	assert.Equal(t, 0.5, sample.Elapsed)
	assert.InDelta(t, 101.3+2*math.Sin(0.05), sample.Pressure, 1e-9)
	assert.InDelta(t, 24.8+3*math.Sin(0.5/15+1), sample.Temperature, 1e-9)
	assert.InDelta(t, 1245.8+1.25+50*math.Sin(0.0625), sample.Altitude, 1e-9)
	assert.InDelta(t, 12.4+8*math.Sin(0.5/7), sample.AltitudeRate, 1e-9)
	assert.Equal(t, 24.0, sample.Latency)
	assert.InDelta(t, 15+10*math.Sin(0.025), sample.Velocity, 1e-9)
	assert.InDelta(t, 2+3*math.Exp(-(14.5*14.5)/50), sample.GForce, 1e-9)
}

func TestResetReproducesClockTrajectory(t *testing.T) {
	fresh := NewSimulator(rand.New(rand.NewSource(7)))
	reused := NewSimulator(rand.New(rand.NewSource(99)))

	// Burn some state into the reused instance, then start over.
	for i := 0; i < 17; i++ {
		_, err := reused.Advance(1.3)
		require.NoError(t, err)
	}
	reused.Reset()

	steps := []float64{0.5, 0.5, 2, 0.25, 10}
	for _, step := range steps {
		a, err := fresh.Advance(step)
		require.NoError(t, err)
		b, err := reused.Advance(step)
		require.NoError(t, err)
		assert.Equal(t, a.Elapsed, b.Elapsed)
	}
}

func TestResetReproducesSamplesWithoutNoise(t *testing.T) {
	sim := NewSimulator(silentNoise{})

	var first []Sample
	for i := 0; i < 10; i++ {
		s, err := sim.Next()
		require.NoError(t, err)
		first = append(first, s)
	}

	sim.Reset()
	for i := 0; i < 10; i++ {
		s, err := sim.Next()
		require.NoError(t, err)
		assert.Equal(t, first[i], s)
	}
}

func TestClampedOutputs(t *testing.T) {
	low := NewSimulator(constNoise{-100})
	for i := 0; i < 20; i++ {
		sample, err := low.Next()
		require.NoError(t, err)
		assert.Equal(t, 10.0, sample.Latency)
		assert.GreaterOrEqual(t, sample.Velocity, 0.0)
		assert.GreaterOrEqual(t, sample.GForce, 0.0)
	}

	high := NewSimulator(constNoise{100})
	for i := 0; i < 20; i++ {
		sample, err := high.Next()
		require.NoError(t, err)
		assert.Equal(t, 100.0, sample.Latency)
	}
}

func TestBufferLengthsConstant(t *testing.T) {
	sim := NewSimulator(silentNoise{})
	sim.Reset()

	for i := 0; i < 150; i++ {
		sample, err := sim.Next()
		require.NoError(t, err)
		assert.Len(t, sample.VelocityTime, HistoryLen)
		assert.Len(t, sample.VelocityData, HistoryLen)
		assert.Len(t, sample.GForceTime, HistoryLen)
		assert.Len(t, sample.GForceData, HistoryLen)
	}
}

func TestVelocityTimeAxisFixed(t *testing.T) {
	sim := NewSimulator(silentNoise{})

	first, err := sim.Next()
	require.NoError(t, err)
	assert.Equal(t, linspace(-120, 0, HistoryLen), first.VelocityTime)

	var last Sample
	for i := 0; i < 50; i++ {
		last, err = sim.Next()
		require.NoError(t, err)
	}
	assert.Equal(t, first.VelocityTime, last.VelocityTime)
}

func TestGForceTimeAxisAdvancesByFixedIncrement(t *testing.T) {
	sim := NewSimulator(silentNoise{})

	prev, err := sim.Advance(0.5)
	require.NoError(t, err)

	// The increment does not depend on the step argument.
	for _, step := range []float64{0.5, 2, 0.01, 7} {
		sample, err := sim.Advance(step)
		require.NoError(t, err)

		prevNewest := prev.GForceTime[HistoryLen-1]
		newest := sample.GForceTime[HistoryLen-1]
		assert.InDelta(t, GForceTimeStep, newest-prevNewest, 1e-9)
		prev = sample
	}
}

func TestVelocityBufferFullyReplaced(t *testing.T) {
	sim := NewSimulator(silentNoise{})

	var sample Sample
	var err error
	for i := 0; i < HistoryLen; i++ {
		sample, err = sim.Next()
		require.NoError(t, err)
	}

	// Noise-free velocity is 15+10·sin(t/20) > 0, so any remaining zero
	// would be a leftover from the initial buffer.
	for i, v := range sample.VelocityData {
		assert.Greater(t, v, 0.0, "index %d still holds an initial zero", i)
	}
}

func TestSampleBuffersAreCopies(t *testing.T) {
	sim := NewSimulator(silentNoise{})

	sample, err := sim.Next()
	require.NoError(t, err)
	sample.VelocityData[0] = -999
	sample.GForceTime[0] = -999

	next, err := sim.Next()
	require.NoError(t, err)
	assert.NotEqual(t, -999.0, next.VelocityData[0])
	assert.NotEqual(t, -999.0, next.GForceTime[0])
}

func TestVelocityAxisScrollOption(t *testing.T) {
	sim := NewSimulator(silentNoise{})
	sim.SetVelocityAxisStep(0.5)

	first, err := sim.Next()
	require.NoError(t, err)
	second, err := sim.Next()
	require.NoError(t, err)

	firstNewest := first.VelocityTime[HistoryLen-1]
	secondNewest := second.VelocityTime[HistoryLen-1]
	assert.InDelta(t, 0.5, secondNewest-firstNewest, 1e-9)
}
