// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mission

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/relabs-tech/cansat_ground/internal/telemetry"
)

// Cadence of the periodic telemetry log lines, in simulated seconds.
const (
	dataLogPeriod = 3
	statLogPeriod = 5
)

// Mission drives one telemetry source through start/stop cycles. All
// scheduling lives outside: the owner calls Tick on its own timer, and a
// stopped mission simply ignores ticks. Commands may arrive from another
// goroutine (the MQTT callback), hence the mutex.
type Mission struct {
	mu      sync.Mutex
	source  telemetry.Source
	clock   Clock
	step    float64
	running bool
	started time.Time
	pending []Event
}

// New creates a stopped mission around src. step is the simulated seconds
// added per tick and must be positive (validated at config load). A nil
// clock means wall-clock time.
func New(src telemetry.Source, step float64, clock Clock) *Mission {
	if clock == nil {
		clock = NewClock()
	}
	return &Mission{source: src, clock: clock, step: step}
}

// Status is the mission header state shown by the dashboards.
type Status struct {
	Running        bool    `json:"running"`
	Elapsed        string  `json:"elapsed"`
	ElapsedSeconds float64 `json:"elapsed_s"`
}

// Start resets the source and begins a new mission run. Starting a running
// mission is a no-op.
func (m *Mission) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.start()
}

func (m *Mission) start() {
	if m.running {
		return
	}
	m.running = true
	m.started = m.clock.Now()
	m.source.Reset()
	m.logEvent(EventInfo, "Mission START - All systems nominal")
}

// Stop pauses the mission. The source keeps its state, so a later Start
// begins a fresh run.
func (m *Mission) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop()
}

func (m *Mission) stop() {
	if !m.running {
		return
	}
	m.running = false
	m.logEvent(EventInfo, "Mission PAUSED by operator")
}

// Toggle flips between running and stopped.
func (m *Mission) Toggle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		m.stop()
	} else {
		m.start()
	}
}

// Running reports whether the mission is accepting ticks.
func (m *Mission) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Tick advances the simulation one step and returns the new sample. It
// returns ok=false while the mission is stopped. Periodic DATA/STAT log
// lines are queued for DrainEvents.
func (m *Mission) Tick() (telemetry.Sample, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return telemetry.Sample{}, false
	}

	sample, err := m.source.Advance(m.step)
	if err != nil {
		// The step is validated up front; hitting this means a programming
		// error somewhere, so stop instead of ticking forever.
		m.running = false
		m.logEvent(EventInfo, fmt.Sprintf("Mission ABORT: %v", err))
		return telemetry.Sample{}, false
	}

	if math.Mod(sample.Elapsed, dataLogPeriod) == 0 {
		m.logEvent(EventData, fmt.Sprintf("VEL:%.1fm/s G:%.2f", sample.Velocity, sample.GForce))
	}
	if math.Mod(sample.Elapsed, statLogPeriod) == 0 {
		m.logEvent(EventStat, fmt.Sprintf("P:%.2f T:%.2f A:%.2f", sample.Pressure, sample.Temperature, sample.Altitude))
	}
	return sample, true
}

// SendCommand handles a free-text operator command. The reserved words
// start/stop/toggle control the mission; anything else is only echoed into
// the mission log, never interpreted.
func (m *Mission) SendCommand(cmd string) {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return
	}
	switch strings.ToLower(cmd) {
	case "start":
		m.Start()
	case "stop":
		m.Stop()
	case "toggle":
		m.Toggle()
	default:
		m.mu.Lock()
		m.logEvent(EventInfo, "Command sent: "+cmd)
		m.mu.Unlock()
	}
}

// DrainEvents returns the log lines generated since the previous drain.
func (m *Mission) DrainEvents() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	evs := m.pending
	m.pending = nil
	return evs
}

// Elapsed returns the wall-clock time since the current run started, or
// zero before the first start.
func (m *Mission) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started.IsZero() {
		return 0
	}
	return m.clock.Now().Sub(m.started)
}

// Status snapshots the running flag and mission timer.
func (m *Mission) Status() Status {
	d := m.Elapsed()
	return Status{
		Running:        m.Running(),
		Elapsed:        formatElapsed(d),
		ElapsedSeconds: d.Seconds(),
	}
}

// formatElapsed renders the mission timer as T+ HH:MM:SS.
func formatElapsed(d time.Duration) string {
	s := int(d.Seconds())
	return fmt.Sprintf("T+ %02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// logEvent queues a log line; the caller must hold m.mu.
func (m *Mission) logEvent(kind, msg string) {
	m.pending = append(m.pending, Event{Time: m.clock.Now(), Type: kind, Message: msg})
}
