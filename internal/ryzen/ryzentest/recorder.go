// Package ryzentest provides a recording ryzen.Controller for tests.
package ryzentest

import (
	"context"
	"sync"

	"codeberg.org/mutker/ryzenctl/internal/ryzen"
)

// Operation names recorded by Recorder.
const (
	OpGetFastLimit    = "get_fast_limit"
	OpSetFastLimit    = "set_fast_limit"
	OpSetStapmLimit   = "set_stapm_limit"
	OpSetSlowLimit    = "set_slow_limit"
	OpSetAPUSlowLimit = "set_apu_slow_limit"
	OpSetTctlTemp     = "set_tctl_temp"
	OpRefresh         = "refresh"
)

// Call is one recorded hardware interaction.
type Call struct {
	Op    string
	Value uint32
}

// Recorder records calls in order. A written fast limit becomes the reported
// reading only after Refresh, like the real read cache.
type Recorder struct {
	mu       sync.Mutex
	calls    []Call
	reading  ryzen.Watts
	pending  *ryzen.Watts
	failures map[string]error
}

var _ ryzen.Controller = (*Recorder)(nil)

// New returns a Recorder reporting fast as the current fast limit.
func New(fast ryzen.Watts) *Recorder {
	return &Recorder{
		reading:  fast,
		failures: make(map[string]error),
	}
}

// FailOn makes every later call to op return err.
func (r *Recorder) FailOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op] = err
}

// SetReading changes the reported fast limit, as an external writer would.
func (r *Recorder) SetReading(fast ryzen.Watts) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reading = fast
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	calls := make([]Call, len(r.calls))
	copy(calls, r.calls)

	return calls
}

// Writes returns the recorded calls that write to hardware.
func (r *Recorder) Writes() []Call {
	var writes []Call
	for _, c := range r.Calls() {
		if c.Op != OpGetFastLimit && c.Op != OpRefresh {
			writes = append(writes, c)
		}
	}

	return writes
}

// Reset clears the recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *Recorder) FastLimit() (ryzen.Watts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.record(OpGetFastLimit, 0); err != nil {
		return 0, err
	}

	return r.reading, nil
}

func (r *Recorder) SetFastLimit(_ context.Context, limit ryzen.MilliWatts) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.record(OpSetFastLimit, uint32(limit)); err != nil {
		return err
	}
	w := ryzen.ToWatts(limit)
	r.pending = &w

	return nil
}

func (r *Recorder) SetStapmLimit(_ context.Context, limit ryzen.MilliWatts) error {
	return r.write(OpSetStapmLimit, uint32(limit))
}

func (r *Recorder) SetSlowLimit(_ context.Context, limit ryzen.MilliWatts) error {
	return r.write(OpSetSlowLimit, uint32(limit))
}

func (r *Recorder) SetAPUSlowLimit(_ context.Context, limit ryzen.MilliWatts) error {
	return r.write(OpSetAPUSlowLimit, uint32(limit))
}

func (r *Recorder) SetTctlTemp(_ context.Context, temp ryzen.Celsius) error {
	return r.write(OpSetTctlTemp, uint32(temp))
}

func (r *Recorder) Refresh(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.record(OpRefresh, 0); err != nil {
		return err
	}
	if r.pending != nil {
		r.reading = *r.pending
		r.pending = nil
	}

	return nil
}

func (r *Recorder) write(op string, value uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.record(op, value)
}

func (r *Recorder) record(op string, value uint32) error {
	r.calls = append(r.calls, Call{Op: op, Value: value})

	return r.failures[op]
}
