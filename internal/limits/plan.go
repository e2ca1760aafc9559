package limits

import (
	"codeberg.org/mutker/ryzenctl/internal/policy"
	"codeberg.org/mutker/ryzenctl/internal/ryzen"
)

// Limit names one writable hardware limit.
type Limit int

const (
	Fast Limit = iota
	Sustained
	Slow
	APUSlow
	Tctl
)

func (l Limit) String() string {
	switch l {
	case Fast:
		return "fast_limit"
	case Sustained:
		return "stapm_limit"
	case Slow:
		return "slow_limit"
	case APUSlow:
		return "apu_slow_limit"
	case Tctl:
		return "tctl_limit"
	default:
		return "unknown_limit"
	}
}

// Write is one planned hardware write. Value is in mW, or °C for Tctl.
type Write struct {
	Limit Limit
	Value uint32
}

// Plan decides the profile writes for one cycle given the normalized
// current fast limit. It returns nothing for a disabled profile or when the
// fast limit has already converged; otherwise fast comes first, followed by
// whichever of sustained, slow and APU slow are configured.
func Plan(profile policy.LimitProfile, current ryzen.MilliWatts) []Write {
	if !profile.Enabled || profile.FastLimit == nil {
		return nil
	}
	if uint32(current) == *profile.FastLimit {
		return nil
	}

	writes := []Write{{Limit: Fast, Value: *profile.FastLimit}}
	for _, opt := range []struct {
		limit Limit
		value *uint32
	}{
		{Sustained, profile.SustainedLimit},
		{Slow, profile.SlowLimit},
		{APUSlow, profile.APUSlowLimit},
	} {
		if opt.value != nil {
			writes = append(writes, Write{Limit: opt.limit, Value: *opt.value})
		}
	}

	return writes
}

// PlanThermal returns the Tctl write, if a thermal limit is configured.
func PlanThermal(bundle policy.Bundle) []Write {
	limit, ok := bundle.ThermalLimit()
	if !ok {
		return nil
	}

	return []Write{{Limit: Tctl, Value: limit}}
}
