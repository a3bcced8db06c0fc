package telemetry

// History is a fixed-length sliding window of (time, value) pairs backing one
// dashboard chart. Each push drops the oldest entry and appends the new one at
// the newest-time end.
type History struct {
	times  []float64
	values []float64
}

// NewHistory builds a window of n points with the time axis spread evenly
// from start to end and all values at zero.
func NewHistory(start, end float64, n int) *History {
	return &History{
		times:  linspace(start, end, n),
		values: make([]float64, n),
	}
}

// PushValue drops the oldest value and appends v. The time axis stays put, so
// repeated zeros don't wipe the chart while the window fills up.
func (h *History) PushValue(v float64) {
	roll(h.values, v)
}

// PushScrolled advances the time axis by dt at the newest end and appends v,
// so both axes scroll forward together.
func (h *History) PushScrolled(dt, v float64) {
	roll(h.times, h.times[len(h.times)-1]+dt)
	roll(h.values, v)
}

// Len returns the window length.
func (h *History) Len() int {
	return len(h.values)
}

// Times returns a copy of the time axis.
func (h *History) Times() []float64 {
	return append([]float64(nil), h.times...)
}

// Values returns a copy of the value axis.
func (h *History) Values() []float64 {
	return append([]float64(nil), h.values...)
}

// roll shifts xs one slot towards the front and stores v in the freed last slot.
func roll(xs []float64, v float64) {
	copy(xs, xs[1:])
	xs[len(xs)-1] = v
}

func linspace(start, end float64, n int) []float64 {
	xs := make([]float64, n)
	if n == 1 {
		xs[0] = start
		return xs
	}
	step := (end - start) / float64(n-1)
	for i := range xs {
		xs[i] = start + float64(i)*step
	}
	return xs
}
