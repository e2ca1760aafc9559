package ryzen

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/logger"
)

const (
	DefaultBinary = "ryzenadj"

	fastLimitRow = "PPT LIMIT FAST"
)

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Adj controls the processor through the ryzenadj command line tool.
// Readings come from the table printed by `ryzenadj --info` and are cached
// until the next Refresh.
type Adj struct {
	binary  string
	timeout time.Duration
	run     Runner

	mu   sync.RWMutex
	info map[string]float64
}

type Option func(*Adj)

// WithBinary sets the ryzenadj executable.
func WithBinary(path string) Option {
	return func(a *Adj) {
		if path != "" {
			a.binary = path
		}
	}
}

// WithTimeout bounds every ryzenadj invocation. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *Adj) {
		a.timeout = d
	}
}

// WithRunner replaces command execution.
func WithRunner(r Runner) Option {
	return func(a *Adj) {
		a.run = r
	}
}

// Open creates the handle and performs the initial refresh.
func Open(ctx context.Context, opts ...Option) (*Adj, error) {
	a := &Adj{
		binary: DefaultBinary,
		run:    execRunner,
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.Refresh(ctx); err != nil {
		return nil, errors.New().Wrap(ErrInitFailed, err)
	}

	if fast, err := a.FastLimit(); err == nil {
		logger.Info().
			Str("binary", a.binary).
			Float64("fast_limit_w", float64(fast)).
			Msg("Opened ryzenadj handle")
	}

	return a, nil
}

func (a *Adj) FastLimit() (Watts, error) {
	errFactory := errors.New()
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.info == nil {
		return 0, errFactory.New(ErrNotInitialized)
	}

	v, ok := a.info[fastLimitRow]
	if !ok {
		return 0, errFactory.WithData(ErrReadFailed, fastLimitRow)
	}

	return Watts(v), nil
}

func (a *Adj) SetFastLimit(ctx context.Context, limit MilliWatts) error {
	return a.set(ctx, "fast-limit", uint32(limit))
}

func (a *Adj) SetStapmLimit(ctx context.Context, limit MilliWatts) error {
	return a.set(ctx, "stapm-limit", uint32(limit))
}

func (a *Adj) SetSlowLimit(ctx context.Context, limit MilliWatts) error {
	return a.set(ctx, "slow-limit", uint32(limit))
}

func (a *Adj) SetAPUSlowLimit(ctx context.Context, limit MilliWatts) error {
	return a.set(ctx, "apu-slow-limit", uint32(limit))
}

func (a *Adj) SetTctlTemp(ctx context.Context, temp Celsius) error {
	return a.set(ctx, "tctl-temp", uint32(temp))
}

func (a *Adj) Refresh(ctx context.Context) error {
	errFactory := errors.New()

	out, err := a.exec(ctx, "--info")
	if err != nil {
		return errFactory.Wrap(ErrRefreshFailed, err)
	}

	info, err := parseInfo(out)
	if err != nil {
		return errFactory.Wrap(ErrRefreshFailed, err)
	}

	a.mu.Lock()
	a.info = info
	a.mu.Unlock()

	return nil
}

func (a *Adj) set(ctx context.Context, param string, value uint32) error {
	arg := fmt.Sprintf("--%s=%d", param, value)
	if _, err := a.exec(ctx, arg); err != nil {
		return errors.New().Wrap(ErrWriteFailed, err).WithData(param)
	}

	logger.Debug().Str("param", param).Uint32("value", value).Msg("ryzenadj write")

	return nil
}

func (a *Adj) exec(ctx context.Context, args ...string) ([]byte, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	return a.run(ctx, a.binary, args...)
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return out, fmt.Errorf("%w: %s", err, msg)
		}
		return out, err
	}

	return out, nil
}

// parseInfo reads the `| Name | Value | Parameter |` table of ryzenadj --info.
func parseInfo(out []byte) (map[string]float64, error) {
	info := make(map[string]float64)

	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") {
			continue
		}

		cols := strings.Split(line, "|")
		if len(cols) < 3 {
			continue
		}

		name := strings.TrimSpace(cols[1])
		value, err := strconv.ParseFloat(strings.TrimSpace(cols[2]), 64)
		if name == "" || err != nil {
			// header, separator or a row without a numeric value
			continue
		}
		info[name] = value
	}

	if len(info) == 0 {
		return nil, errors.New().New(ErrParseFailed)
	}

	return info, nil
}
