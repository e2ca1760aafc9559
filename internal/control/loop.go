package control

import (
	"context"
	"time"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/limits"
	"codeberg.org/mutker/ryzenctl/internal/logger"
	"codeberg.org/mutker/ryzenctl/internal/metrics"
	"codeberg.org/mutker/ryzenctl/internal/policy"
	"codeberg.org/mutker/ryzenctl/internal/ryzen"
	"codeberg.org/mutker/ryzenctl/internal/system"
)

const DefaultInterval = 10 * time.Second

// StateReader yields the system state for one cycle.
type StateReader interface {
	Read(ctx context.Context) (policy.State, error)
}

// TempReader yields the processor control temperature.
type TempReader interface {
	Tctl(ctx context.Context) (float64, error)
}

type Config struct {
	Interval time.Duration
	// ReadRetries is how many consecutive cycles may be skipped because a
	// status source was unreadable before the loop gives up.
	ReadRetries int
	Monitor     bool
}

// Loop enforces the policy bundle on a fixed cadence through one hardware handle.
type Loop struct {
	cfg     Config
	reader  StateReader
	bundle  policy.Bundle
	applier *limits.Applier
	clock   Clock
	metrics metrics.Collector
	thermal TempReader

	cycle        uint64
	readFailures int
}

type Option func(*Loop)

func WithClock(c Clock) Option {
	return func(l *Loop) {
		l.clock = c
	}
}

func WithMetrics(m metrics.Collector) Option {
	return func(l *Loop) {
		l.metrics = m
	}
}

func WithThermal(t TempReader) Option {
	return func(l *Loop) {
		l.thermal = t
	}
}

func New(cfg Config, reader StateReader, bundle policy.Bundle, hw ryzen.Controller, opts ...Option) *Loop {
	l := &Loop{
		cfg:     cfg,
		reader:  reader,
		bundle:  bundle,
		applier: limits.NewApplier(hw, cfg.Monitor),
		clock:   realClock{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.metrics == nil {
		l.metrics = metrics.Noop()
	}

	return l
}

// Run cycles until ctx is cancelled or a cycle fails. Cancellation is not an
// error.
func (l *Loop) Run(ctx context.Context) error {
	errFactory := errors.New()

	if l.cfg.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, l.cfg.Interval)
	}

	if l.cfg.Monitor {
		logger.Info().Msg("Monitor mode activated. Logging decisions without writing...")
	}

	for {
		if err := l.Cycle(ctx); err != nil {
			if ctx.Err() != nil {
				// interrupted by termination
				return nil
			}
			return errFactory.Wrap(errors.ErrMainLoop, err)
		}

		if err := l.clock.Wait(ctx, l.cfg.Interval); err != nil {
			return nil
		}
	}
}

// Cycle reads the state, selects the profile and applies it once.
func (l *Loop) Cycle(ctx context.Context) error {
	l.cycle++
	snapshot := &metrics.Snapshot{
		Timestamp: l.clock.Now(),
		Cycle:     l.cycle,
	}
	snapshot.State.Monitor = l.cfg.Monitor

	state, err := l.reader.Read(ctx)
	if err != nil {
		snapshot.Error = err.Error()
		if !errors.HasCode(err, system.ErrSourceUnavailable) || l.readFailures >= l.cfg.ReadRetries {
			l.record(ctx, snapshot)
			return err
		}

		l.readFailures++
		snapshot.Skipped = true
		l.record(ctx, snapshot)
		logger.Warn().Err(err).
			Int("attempt", l.readFailures).
			Int("retries", l.cfg.ReadRetries).
			Msg("Status source unavailable, skipping cycle")

		return nil
	}
	l.readFailures = 0

	profile := l.bundle.Select(state)
	snapshot.State.Mode = state.Mode.String()
	snapshot.State.OnAC = state.OnAC
	snapshot.State.Profile = state.Key()
	snapshot.State.Enabled = profile.Enabled
	if profile.FastLimit != nil {
		snapshot.FastLimit.Target = *profile.FastLimit
	}

	res, err := l.applier.Apply(ctx, profile, l.bundle)
	snapshot.FastLimit.Current = uint32(res.Current)
	for _, w := range res.Written {
		snapshot.Writes = append(snapshot.Writes, metrics.WriteMetric{Limit: w.Limit.String(), Value: w.Value})
	}
	if err != nil {
		snapshot.Error = err.Error()
		l.record(ctx, snapshot)
		return err
	}

	l.readTemperature(ctx, snapshot)
	l.record(ctx, snapshot)
	l.logCycle(state, res, snapshot)

	return nil
}

func (l *Loop) readTemperature(ctx context.Context, snapshot *metrics.Snapshot) {
	if l.thermal == nil {
		return
	}

	temp, err := l.thermal.Tctl(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("Tctl reading unavailable")
		return
	}
	snapshot.Temperature = &metrics.TempMetrics{Tctl: temp}
}

func (l *Loop) record(ctx context.Context, snapshot *metrics.Snapshot) {
	if err := l.metrics.Record(ctx, snapshot); err != nil {
		logger.Debug().Err(err).Msg("Failed to record cycle metrics")
	}
}

func (l *Loop) logCycle(state policy.State, res limits.Result, snapshot *metrics.Snapshot) {
	event := logger.Debug()
	if l.cfg.Monitor {
		event = logger.Info()
	}

	event.
		Uint64("cycle", snapshot.Cycle).
		Str("mode", state.Mode.String()).
		Bool("on_ac", state.OnAC).
		Bool("enabled", snapshot.State.Enabled).
		Uint32("current_fast_limit", snapshot.FastLimit.Current).
		Uint32("target_fast_limit", snapshot.FastLimit.Target).
		Bool("converged", res.Converged()).
		Int("planned_writes", len(res.Planned)).
		Int("writes", len(res.Written)).
		Msg("")
}
