package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHistoryAxes(t *testing.T) {
	h := NewHistory(-120, 0, 100)

	times := h.Times()
	assert.Len(t, times, 100)
	assert.Equal(t, -120.0, times[0])
	assert.Equal(t, 0.0, times[99])
	assert.InDelta(t, 120.0/99, times[1]-times[0], 1e-12)

	for _, v := range h.Values() {
		assert.Equal(t, 0.0, v)
	}
}

func TestPushValueKeepsTimeAxis(t *testing.T) {
	h := NewHistory(-1.5, 4, 5)
	before := h.Times()

	h.PushValue(3.7)
	h.PushValue(4.2)

	assert.Equal(t, before, h.Times())
	assert.Equal(t, []float64{0, 0, 0, 3.7, 4.2}, h.Values())
	assert.Equal(t, 5, h.Len())
}

func TestPushScrolledAdvancesBothAxes(t *testing.T) {
	h := NewHistory(0, 4, 5)

	h.PushScrolled(0.055, 1.0)

	times := h.Times()
	assert.Equal(t, []float64{1, 2, 3, 4}, times[:4])
	assert.InDelta(t, 4.055, times[4], 1e-12)
	assert.Equal(t, []float64{0, 0, 0, 0, 1}, h.Values())
}

func TestHistoryAccessorsReturnCopies(t *testing.T) {
	h := NewHistory(0, 4, 5)

	times := h.Times()
	values := h.Values()
	times[0] = -999
	values[0] = -999

	assert.Equal(t, 0.0, h.Times()[0])
	assert.Equal(t, 0.0, h.Values()[0])
}
