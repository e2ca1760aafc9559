package metrics

import (
	"context"
	"sync"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/logger"
)

type service struct {
	cfg Config

	mu      sync.RWMutex
	history []Snapshot
	totals  Totals
}

// No-op implementation
type noopCollector struct{}

// Noop returns a collector that records nothing.
func Noop() Collector {
	return &noopCollector{}
}

func NewService(cfg Config) (Collector, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	// If metrics is disabled, return a no-op collector
	if !cfg.Enabled {
		logger.Debug().Msg("Metrics collection disabled, using no-op collector")
		return Noop(), nil
	}

	logger.Debug().
		Int("history", cfg.History).
		Msg("Metrics service initialized successfully")

	return &service{
		cfg:     cfg,
		history: make([]Snapshot, 0, cfg.History),
	}, nil
}

func (s *service) Record(ctx context.Context, snapshot *Snapshot) error {
	errFactory := errors.New()

	if snapshot == nil {
		return errFactory.New(ErrInvalidMetrics)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, *snapshot)
	if len(s.history) > s.cfg.History {
		s.history = s.history[len(s.history)-s.cfg.History:]
	}

	s.totals.Cycles++
	if snapshot.Skipped {
		s.totals.Skipped++
	}
	s.totals.Writes += uint64(len(snapshot.Writes))

	return nil
}

func (s *service) Latest() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.history) == 0 {
		return Snapshot{}, false
	}

	return s.history[len(s.history)-1], true
}

func (s *service) Totals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals
}

func (s *service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Debug().Uint64("cycles", s.totals.Cycles).Msg("Metrics service closed")
	s.history = nil

	return nil
}

// No-op implementation
func (*noopCollector) Record(_ context.Context, _ *Snapshot) error {
	return nil
}

func (*noopCollector) Latest() (Snapshot, bool) {
	return Snapshot{}, false
}

func (*noopCollector) Totals() Totals {
	return Totals{}
}

func (*noopCollector) Close() error {
	return nil
}
