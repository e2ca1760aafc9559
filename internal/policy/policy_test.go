package policy_test

import (
	"testing"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enabled(fast uint32) policy.LimitProfile {
	return policy.LimitProfile{Enabled: true, FastLimit: policy.Uint32(fast)}
}

func testBundle(t *testing.T) policy.Bundle {
	t.Helper()

	bundle, err := policy.NewBundle(
		policy.ConnectivityPair{Plugged: enabled(11000), Unplugged: enabled(12000)},
		policy.ConnectivityPair{Plugged: enabled(21000), Unplugged: enabled(22000)},
		policy.ConnectivityPair{Plugged: enabled(31000), Unplugged: enabled(32000)},
		nil,
	)
	require.NoError(t, err)

	return bundle
}

func TestSelect(t *testing.T) {
	bundle := testBundle(t)

	tests := []struct {
		state policy.State
		key   string
		fast  uint32
	}{
		{policy.State{Mode: policy.Quiet, OnAC: true}, "quiet.plugged", 11000},
		{policy.State{Mode: policy.Quiet, OnAC: false}, "quiet.unplugged", 12000},
		{policy.State{Mode: policy.Balanced, OnAC: true}, "balanced.plugged", 21000},
		{policy.State{Mode: policy.Balanced, OnAC: false}, "balanced.unplugged", 22000},
		{policy.State{Mode: policy.Performance, OnAC: true}, "performance.plugged", 31000},
		{policy.State{Mode: policy.Performance, OnAC: false}, "performance.unplugged", 32000},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			profile := bundle.Select(tt.state)
			require.NotNil(t, profile.FastLimit)
			assert.Equal(t, tt.fast, *profile.FastLimit)
			assert.Equal(t, tt.key, tt.state.Key())
		})
	}
}

func TestSelectInvalidModeIsDisabled(t *testing.T) {
	bundle := testBundle(t)

	profile := bundle.Select(policy.State{Mode: policy.PowerMode(7), OnAC: true})
	assert.False(t, profile.Enabled)
	assert.Nil(t, profile.FastLimit)
}

func TestNewBundleMissingFastLimit(t *testing.T) {
	_, err := policy.NewBundle(
		policy.ConnectivityPair{Plugged: enabled(1), Unplugged: enabled(1)},
		policy.ConnectivityPair{Plugged: enabled(1), Unplugged: policy.LimitProfile{Enabled: true}},
		policy.ConnectivityPair{Plugged: enabled(1), Unplugged: enabled(1)},
		nil,
	)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrMissingFastLimit))
	assert.Contains(t, err.Error(), "balanced.unplugged")
}

func TestNewBundleDisabledWithoutFastLimit(t *testing.T) {
	disabled := policy.LimitProfile{SustainedLimit: policy.Uint32(5000)}
	bundle, err := policy.NewBundle(
		policy.ConnectivityPair{Plugged: disabled, Unplugged: disabled},
		policy.ConnectivityPair{Plugged: disabled, Unplugged: disabled},
		policy.ConnectivityPair{Plugged: disabled, Unplugged: disabled},
		policy.Uint32(90),
	)
	require.NoError(t, err)

	limit, ok := bundle.ThermalLimit()
	assert.True(t, ok)
	assert.Equal(t, uint32(90), limit)
}

func TestBundleIsImmutable(t *testing.T) {
	fast := uint32(15000)
	pair := policy.ConnectivityPair{
		Plugged:   policy.LimitProfile{Enabled: true, FastLimit: &fast},
		Unplugged: enabled(1),
	}
	bundle, err := policy.NewBundle(pair, pair, pair, nil)
	require.NoError(t, err)

	// Mutating the caller's value must not leak into the bundle
	fast = 1
	selected := bundle.Select(policy.State{Mode: policy.Quiet, OnAC: true})
	assert.Equal(t, uint32(15000), *selected.FastLimit)

	// Nor must mutating a selected profile
	*selected.FastLimit = 2
	again := bundle.Select(policy.State{Mode: policy.Quiet, OnAC: true})
	assert.Equal(t, uint32(15000), *again.FastLimit)

	_, ok := bundle.ThermalLimit()
	assert.False(t, ok)
}

func TestPowerModeString(t *testing.T) {
	assert.Equal(t, "quiet", policy.Quiet.String())
	assert.Equal(t, "balanced", policy.Balanced.String())
	assert.Equal(t, "performance", policy.Performance.String())
	assert.Equal(t, "PowerMode(9)", policy.PowerMode(9).String())
	assert.False(t, policy.PowerMode(-1).Valid())
}
