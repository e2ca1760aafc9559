package control

import (
	"context"
	"time"
)

// Clock schedules the pause between cycles.
type Clock interface {
	Now() time.Time
	// Wait blocks for d or until ctx is done, returning ctx.Err() in the latter case.
	Wait(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
