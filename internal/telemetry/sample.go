package telemetry

// Dial ranges of the dashboard gauges (kPa and °C).
const (
	pressureGaugeMin  = 95.0
	pressureGaugeSpan = 15.0
	tempGaugeMin      = 15.0
	tempGaugeSpan     = 25.0
)

// Sample is one telemetry packet: the scalar sensor readings for a single
// tick plus snapshots of both chart windows after the new point was appended.
// The slices are copies; mutating them does not touch the simulator.
type Sample struct {
	Elapsed      float64 `json:"elapsed_s"`
	Pressure     float64 `json:"pressure_kpa"`
	Temperature  float64 `json:"temp_c"`
	Altitude     float64 `json:"altitude_m"`
	AltitudeRate float64 `json:"altitude_rate_ms"`
	Latency      float64 `json:"latency_ms"`
	Velocity     float64 `json:"velocity_ms"`
	GForce       float64 `json:"gforce"`

	VelocityTime []float64 `json:"velocity_time"`
	VelocityData []float64 `json:"velocity_data"`
	GForceTime   []float64 `json:"gforce_time"`
	GForceData   []float64 `json:"gforce_data"`
}

// PressureFill returns how full the pressure dial should be, in [0,1].
func (s Sample) PressureFill() float64 {
	return clamp((s.Pressure-pressureGaugeMin)/pressureGaugeSpan, 0, 1)
}

// TemperatureFill returns how full the temperature dial should be, in [0,1].
func (s Sample) TemperatureFill() float64 {
	return clamp((s.Temperature-tempGaugeMin)/tempGaugeSpan, 0, 1)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
