// Package trace records the call activity of an evaluation and reads
// and writes recorded traces as JSONL or CSV.
package trace

import "sync"

// Kind classifies a trace event.
type Kind string

const (
	KindCall   Kind = "call"   // a call began evaluating
	KindReturn Kind = "return" // a call produced a value
	KindError  Kind = "error"  // an error crossed the call on its way out
)

// Event is one step of call activity. Line and Col locate the call
// expression in the source, Depth is the live call stack depth at the
// time the event fired, and Value holds the produced value for return
// events and the error text for error events.
type Event struct {
	Seq      int    `json:"seq"`
	Kind     Kind   `json:"kind"`
	Function string `json:"function"`
	Call     string `json:"call"`
	Line     int    `json:"line"`
	Col      int    `json:"col"`
	Value    string `json:"value,omitempty"`
	Depth    int    `json:"depth"`
}

// Trace is the recorded call activity of a single run.
type Trace struct {
	RunID  string  `json:"run_id"`
	Events []Event `json:"events"`
}

// Collector accumulates events in memory and hands out sequence
// numbers. It satisfies the evaluator's tracer contract and is safe
// for concurrent use.
type Collector struct {
	mu     sync.Mutex
	events []Event
	seq    int
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record assigns the next sequence number to ev and appends it.
func (c *Collector) Record(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	ev.Seq = c.seq
	c.events = append(c.events, ev)
}

// Events returns a copy of the recorded events in order.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Len returns the number of recorded events.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// Reset discards all recorded events and restarts the sequence.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
	c.seq = 0
}

// Trace snapshots the recorded events as a trace for runID.
func (c *Collector) Trace(runID string) *Trace {
	return &Trace{RunID: runID, Events: c.Events()}
}
