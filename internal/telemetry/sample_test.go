package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGaugeFills(t *testing.T) {
	cases := []struct {
		name   string
		sample Sample
		press  float64
		temp   float64
	}{
		{"bottom of range", Sample{Pressure: 95, Temperature: 15}, 0, 0},
		{"top of range", Sample{Pressure: 110, Temperature: 40}, 1, 1},
		{"mid range", Sample{Pressure: 102.5, Temperature: 27.5}, 0.5, 0.5},
		{"below range clamps", Sample{Pressure: 80, Temperature: -10}, 0, 0},
		{"above range clamps", Sample{Pressure: 200, Temperature: 90}, 1, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.press, tc.sample.PressureFill(), 1e-12)
			assert.InDelta(t, tc.temp, tc.sample.TemperatureFill(), 1e-12)
		})
	}
}
