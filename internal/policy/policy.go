package policy

import (
	"fmt"

	"codeberg.org/mutker/ryzenctl/internal/errors"
)

// PowerMode is the OS platform profile.
type PowerMode int

const (
	Quiet PowerMode = iota
	Balanced
	Performance

	numModes = 3
)

// Modes lists every PowerMode in configuration order.
var Modes = [numModes]PowerMode{Quiet, Balanced, Performance}

func (m PowerMode) String() string {
	switch m {
	case Quiet:
		return "quiet"
	case Balanced:
		return "balanced"
	case Performance:
		return "performance"
	default:
		return fmt.Sprintf("PowerMode(%d)", int(m))
	}
}

// Valid reports whether m is one of the three known modes.
func (m PowerMode) Valid() bool {
	return m >= Quiet && m <= Performance
}

// State is the observed system state for one cycle.
type State struct {
	Mode PowerMode
	OnAC bool
}

// Connectivity returns "plugged" or "unplugged".
func (s State) Connectivity() string {
	if s.OnAC {
		return "plugged"
	}

	return "unplugged"
}

// LimitProfile is the desired hardware state for one mode and connectivity.
// Limits are in mW; a nil limit is left untouched on hardware.
type LimitProfile struct {
	Enabled        bool
	SustainedLimit *uint32
	FastLimit      *uint32
	SlowLimit      *uint32
	APUSlowLimit   *uint32
}

// Validate enforces that an enabled profile carries a fast limit.
func (p LimitProfile) Validate() error {
	if p.Enabled && p.FastLimit == nil {
		return errors.New().New(errors.ErrMissingFastLimit)
	}

	return nil
}

// ConnectivityPair groups the AC and battery variants of one policy.
type ConnectivityPair struct {
	Plugged   LimitProfile
	Unplugged LimitProfile
}

// Bundle is the full, immutable policy configuration.
type Bundle struct {
	modes        [numModes]ConnectivityPair
	thermalLimit *uint32
}

// NewBundle validates every profile and builds a Bundle. thermalLimit is the
// Tctl target in °C, or nil to leave it alone.
func NewBundle(quiet, balanced, performance ConnectivityPair, thermalLimit *uint32) (Bundle, error) {
	b := Bundle{
		modes: [numModes]ConnectivityPair{quiet, balanced, performance},
	}
	if thermalLimit != nil {
		b.thermalLimit = Uint32(*thermalLimit)
	}

	for _, mode := range Modes {
		pair := b.modes[mode]
		for _, s := range []State{{Mode: mode, OnAC: true}, {Mode: mode, OnAC: false}} {
			if err := pair.profile(s.OnAC).Validate(); err != nil {
				return Bundle{}, errors.New().WithData(errors.ErrMissingFastLimit, s.Key())
			}
		}
		b.modes[mode] = ConnectivityPair{
			Plugged:   pair.Plugged.clone(),
			Unplugged: pair.Unplugged.clone(),
		}
	}

	return b, nil
}

// Pair returns the policy configured for mode.
func (b Bundle) Pair(mode PowerMode) ConnectivityPair {
	if !mode.Valid() {
		return ConnectivityPair{}
	}

	pair := b.modes[mode]

	return ConnectivityPair{
		Plugged:   pair.Plugged.clone(),
		Unplugged: pair.Unplugged.clone(),
	}
}

// ThermalLimit returns the global Tctl target, if configured.
func (b Bundle) ThermalLimit() (uint32, bool) {
	if b.thermalLimit == nil {
		return 0, false
	}

	return *b.thermalLimit, true
}

// Select maps the observed state to the one applicable profile. An invalid
// mode yields a disabled profile.
func (b Bundle) Select(s State) LimitProfile {
	return b.Pair(s.Mode).profile(s.OnAC)
}

// Key names the bundle entry selected by s, e.g. "balanced.unplugged".
func (s State) Key() string {
	return s.Mode.String() + "." + s.Connectivity()
}

func (p ConnectivityPair) profile(onAC bool) LimitProfile {
	if onAC {
		return p.Plugged
	}

	return p.Unplugged
}

func (p LimitProfile) clone() LimitProfile {
	return LimitProfile{
		Enabled:        p.Enabled,
		SustainedLimit: copyLimit(p.SustainedLimit),
		FastLimit:      copyLimit(p.FastLimit),
		SlowLimit:      copyLimit(p.SlowLimit),
		APUSlowLimit:   copyLimit(p.APUSlowLimit),
	}
}

func copyLimit(v *uint32) *uint32 {
	if v == nil {
		return nil
	}

	return Uint32(*v)
}

// Uint32 returns a pointer to v.
func Uint32(v uint32) *uint32 {
	return &v
}
