// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Canonical chart windows: the velocity chart looks back 120 s on a fixed
// axis, the g-force chart scrolls forward from a short launch window.
const (
	// HistoryLen is the number of points kept per chart.
	HistoryLen = 100

	velocityTimeStart = -120.0
	velocityTimeEnd   = 0.0
	gforceTimeStart   = -1.5
	gforceTimeEnd     = 4.0

	// GForceTimeStep is the fixed per-tick advance of the g-force chart's
	// time axis. It is not tied to the simulation step; the ground software
	// has always scrolled this chart at its own rate.
	GForceTimeStep = 0.055

	// DefaultStep is the simulated seconds added per tick.
	DefaultStep = 0.5
)

// ErrInvalidStep is returned by Advance for a zero or negative step.
var ErrInvalidStep = errors.New("telemetry: step must be positive")

// Noise draws normally distributed values with mean 0 and stddev 1.
// *rand.Rand satisfies it; tests plug in a silent source.
type Noise interface {
	NormFloat64() float64
}

// Source is anything that can produce telemetry samples over time. Today
// that's the simulator; a real payload downlink would implement it too.
type Source interface {
	Reset()
	Advance(step float64) (Sample, error)
}

// Simulator stands in for the payload downlink: each Advance moves a
// simulated clock forward and produces one packet of periodic-plus-noise
// sensor values shaped like a short sounding-rocket flight. It exclusively
// owns its clock and both chart windows; samples only ever carry copies.
type Simulator struct {
	noise   Noise
	elapsed float64

	velocity *History
	gforce   *History

	// velocityAxisStep, when positive, makes the velocity chart's time axis
	// scroll like the g-force one instead of staying fixed.
	velocityAxisStep float64
}

// NewSimulator creates a simulator at T=0. Pass a seeded *rand.Rand for
// reproducible runs; nil gets a time-seeded source.
func NewSimulator(noise Noise) *Simulator {
	if noise == nil {
		noise = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Simulator{noise: noise}
	s.Reset()
	return s
}

// SetVelocityAxisStep makes the velocity chart's time axis advance by dt per
// tick. The stock dashboards keep it at zero (fixed axis).
func (s *Simulator) SetVelocityAxisStep(dt float64) {
	s.velocityAxisStep = dt
}

// Reset returns the simulation to its startup state: clock at zero and both
// chart windows back on their canonical axes with all-zero values.
func (s *Simulator) Reset() {
	s.elapsed = 0
	s.velocity = NewHistory(velocityTimeStart, velocityTimeEnd, HistoryLen)
	s.gforce = NewHistory(gforceTimeStart, gforceTimeEnd, HistoryLen)
}

// Elapsed returns the simulated seconds since the last reset.
func (s *Simulator) Elapsed() float64 {
	return s.elapsed
}

// Next advances the simulation by the default step.
func (s *Simulator) Next() (Sample, error) {
	return s.Advance(DefaultStep)
}

// Advance moves the simulation step seconds forward and returns the next
// telemetry packet. The step must be positive.
func (s *Simulator) Advance(step float64) (Sample, error) {
	if step <= 0 {
		return Sample{}, fmt.Errorf("%w, got %g", ErrInvalidStep, step)
	}
	s.elapsed += step

	pressure := 101.3 + 2*math.Sin(s.elapsed/10) + 0.1*s.noise.NormFloat64()
	temperature := 24.8 + 3*math.Sin(s.elapsed/15+1) + 0.2*s.noise.NormFloat64()
	altitude := 1245.8 + 2.5*s.elapsed + 50*math.Sin(s.elapsed/8)
	altitudeRate := 12.4 + 8*math.Sin(s.elapsed/7)
	latency := clamp(24+3*s.noise.NormFloat64(), 10, 100)

	velocity := math.Max(0, 15+10*math.Sin(s.elapsed/20)+s.noise.NormFloat64())
	if s.velocityAxisStep > 0 {
		s.velocity.PushScrolled(s.velocityAxisStep, velocity)
	} else {
		s.velocity.PushValue(velocity)
	}

	// g-force peaks once per 30 s cycle, centered on the burn at T+15.
	burn := math.Mod(s.elapsed, 30) - 15
	gforce := math.Max(0, 2+3*math.Exp(-burn*burn/50)+0.3*s.noise.NormFloat64())
	s.gforce.PushScrolled(GForceTimeStep, gforce)

	return Sample{
		Elapsed:      s.elapsed,
		Pressure:     pressure,
		Temperature:  temperature,
		Altitude:     altitude,
		AltitudeRate: altitudeRate,
		Latency:      latency,
		Velocity:     velocity,
		GForce:       gforce,
		VelocityTime: s.velocity.Times(),
		VelocityData: s.velocity.Values(),
		GForceTime:   s.gforce.Times(),
		GForceData:   s.gforce.Values(),
	}, nil
}
