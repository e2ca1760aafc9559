package metrics

import (
	"context"
	"time"
)

// Collector defines the core domain interface
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Latest() (Snapshot, bool)
	Totals() Totals
	Close() error
}

// Snapshot describes one control cycle.
type Snapshot struct {
	Timestamp   time.Time     `json:"timestamp"`
	Cycle       uint64        `json:"cycle"`
	State       StateMetrics  `json:"state"`
	FastLimit   PowerMetrics  `json:"fast_limit"`
	Temperature *TempMetrics  `json:"temperature,omitempty"`
	Writes      []WriteMetric `json:"writes"`
	Skipped     bool          `json:"skipped"`
	Error       string        `json:"error,omitempty"`
}

// Domain value objects
type StateMetrics struct {
	Mode    string `json:"mode"`
	OnAC    bool   `json:"on_ac"`
	Profile string `json:"profile"`
	Enabled bool   `json:"enabled"`
	Monitor bool   `json:"monitor"`
}

type PowerMetrics struct {
	Current uint32 `json:"current_mw"`
	Target  uint32 `json:"target_mw"`
}

type TempMetrics struct {
	Tctl float64 `json:"tctl_c"`
}

type WriteMetric struct {
	Limit string `json:"limit"`
	Value uint32 `json:"value"`
}

// Totals accumulates over the process lifetime.
type Totals struct {
	Cycles  uint64 `json:"cycles"`
	Skipped uint64 `json:"skipped"`
	Writes  uint64 `json:"writes"`
}
