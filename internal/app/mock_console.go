// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"fmt"
	"time"

	"github.com/relabs-tech/cansat_ground/internal/telemetry"
)

// RunMockConsole drives the simulator directly and prints each sample, no
// broker needed. Handy for checking the signal shapes on a dev machine.
func RunMockConsole() error {
	sim := telemetry.NewSimulator(nil)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		sample, err := sim.Next()
		if err != nil {
			return err
		}

		fmt.Printf(
			"T+%6.1fs  P=%6.2fkPa  T=%5.2fC  ALT=%8.1fm  VEL=%5.1fm/s  G=%4.2f  LAT=%3.0fms\n",
			sample.Elapsed,
			sample.Pressure,
			sample.Temperature,
			sample.Altitude,
			sample.Velocity,
			sample.GForce,
			sample.Latency,
		)
	}
	return nil
}
