package limits

import (
	"context"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/logger"
	"codeberg.org/mutker/ryzenctl/internal/policy"
	"codeberg.org/mutker/ryzenctl/internal/ryzen"
)

// Result describes what one Apply did.
type Result struct {
	// Current is the normalized fast limit read before writing; zero when the
	// profile is disabled and no read happened.
	Current ryzen.MilliWatts
	Read    bool
	Planned []Write
	Written []Write
}

// Converged reports whether the profile needed no writes.
func (r Result) Converged() bool {
	for _, w := range r.Planned {
		if w.Limit != Tctl {
			return false
		}
	}

	return true
}

// Applier converges hardware toward a selected profile.
type Applier struct {
	hw      ryzen.Controller
	monitor bool
}

// NewApplier returns an Applier writing through hw. In monitor mode it
// reads and plans but never writes.
func NewApplier(hw ryzen.Controller, monitor bool) *Applier {
	return &Applier{hw: hw, monitor: monitor}
}

// Apply runs one cycle against the hardware: profile writes when the fast
// limit diverges, the thermal limit when configured, then a refresh. A failed
// write aborts the remaining writes; earlier writes stay in place.
func (a *Applier) Apply(ctx context.Context, profile policy.LimitProfile, bundle policy.Bundle) (Result, error) {
	var res Result

	if profile.Enabled {
		fast, err := a.hw.FastLimit()
		if err != nil {
			return res, err
		}
		res.Current = ryzen.ToMilliWatts(fast)
		res.Read = true
		res.Planned = Plan(profile, res.Current)
	}
	res.Planned = append(res.Planned, PlanThermal(bundle)...)

	if !a.monitor {
		for _, w := range res.Planned {
			if err := a.write(ctx, w); err != nil {
				return res, err
			}
			res.Written = append(res.Written, w)
		}
	}

	if err := a.hw.Refresh(ctx); err != nil {
		return res, err
	}

	return res, nil
}

func (a *Applier) write(ctx context.Context, w Write) error {
	var err error
	switch w.Limit {
	case Fast:
		err = a.hw.SetFastLimit(ctx, ryzen.MilliWatts(w.Value))
	case Sustained:
		err = a.hw.SetStapmLimit(ctx, ryzen.MilliWatts(w.Value))
	case Slow:
		err = a.hw.SetSlowLimit(ctx, ryzen.MilliWatts(w.Value))
	case APUSlow:
		err = a.hw.SetAPUSlowLimit(ctx, ryzen.MilliWatts(w.Value))
	case Tctl:
		err = a.hw.SetTctlTemp(ctx, ryzen.Celsius(w.Value))
	default:
		return errors.New().WithData(errors.ErrInvalidArgument, w.Limit)
	}
	if err != nil {
		return err
	}

	if w.Limit != Tctl {
		logger.Info().Str("limit", w.Limit.String()).Uint32("mw", w.Value).Msg("Applied power limit")
	} else {
		logger.Debug().Uint32("celsius", w.Value).Msg("Applied thermal limit")
	}

	return nil
}
