package system

import (
	"context"
	"strings"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/policy"
)

// Reader derives the system state from the platform profile and AC sources.
type Reader struct {
	profile Source
	ac      Source
}

func NewReader(profile, ac Source) *Reader {
	return &Reader{profile: profile, ac: ac}
}

// Read queries both sources. The profile must be one of the three known
// modes; any AC value other than "1" means battery.
func (r *Reader) Read(ctx context.Context) (policy.State, error) {
	mode, err := r.PowerMode(ctx)
	if err != nil {
		return policy.State{}, err
	}

	onAC, err := r.OnAC(ctx)
	if err != nil {
		return policy.State{}, err
	}

	return policy.State{Mode: mode, OnAC: onAC}, nil
}

func (r *Reader) PowerMode(ctx context.Context) (policy.PowerMode, error) {
	raw, err := r.profile.Query(ctx)
	if err != nil {
		return 0, err
	}

	return ParsePowerMode(raw)
}

func (r *Reader) OnAC(ctx context.Context) (bool, error) {
	raw, err := r.ac.Query(ctx)
	if err != nil {
		return false, err
	}

	return ParseOnline(raw), nil
}

// ParsePowerMode maps a platform_profile value to a PowerMode.
func ParsePowerMode(raw string) (policy.PowerMode, error) {
	switch strings.TrimSpace(raw) {
	case "quiet":
		return policy.Quiet, nil
	case "balanced":
		return policy.Balanced, nil
	case "performance":
		return policy.Performance, nil
	}

	return 0, errors.New().WithData(ErrUnknownPowerMode, raw)
}

// ParseOnline reports whether a power_supply online value means connected.
func ParseOnline(raw string) bool {
	return strings.TrimSpace(raw) == "1"
}
