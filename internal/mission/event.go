package mission

import (
	"fmt"
	"sync"
	"time"
)

// Event kinds mirror the tags of the mission log panel.
const (
	EventInfo = "INFO"
	EventData = "DATA"
	EventStat = "STAT"
)

// Event is one mission log line.
type Event struct {
	Time    time.Time `json:"time"`
	Type    string    `json:"type"`
	Message string    `json:"message"`
}

// String formats the event the way the consoles print it.
func (e Event) String() string {
	return fmt.Sprintf("[%s] %s %s", e.Time.Format("15:04:05"), e.Type, e.Message)
}

// Log is a fixed-capacity ring of recent events, oldest dropped first.
// Safe for concurrent use.
type Log struct {
	mu     sync.Mutex
	events []Event
	cap    int
}

// NewLog creates a ring holding at most capacity events.
func NewLog(capacity int) *Log {
	return &Log{cap: capacity}
}

// Add appends an event, evicting the oldest when the ring is full.
func (l *Log) Add(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) >= l.cap {
		copy(l.events, l.events[1:])
		l.events[len(l.events)-1] = e
		return
	}
	l.events = append(l.events, e)
}

// Recent returns a copy of the buffered events, oldest first.
func (l *Log) Recent() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}
