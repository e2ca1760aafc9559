package ryzen

import "context"

// Controller is the processor power-control interface.
type Controller interface {
	// FastLimit returns the cached fast (PPT) limit in the hardware's native unit.
	FastLimit() (Watts, error)

	SetFastLimit(ctx context.Context, limit MilliWatts) error
	SetStapmLimit(ctx context.Context, limit MilliWatts) error
	SetSlowLimit(ctx context.Context, limit MilliWatts) error
	SetAPUSlowLimit(ctx context.Context, limit MilliWatts) error
	SetTctlTemp(ctx context.Context, temp Celsius) error

	// Refresh re-reads the hardware so later reads reflect earlier writes.
	Refresh(ctx context.Context) error
}

// Domain types for unit safety
type (
	Watts      float64
	MilliWatts uint32
	Celsius    uint32
)
