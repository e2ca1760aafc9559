package config_test

import (
	"testing"
	"time"

	"codeberg.org/mutker/ryzenctl/internal/config"
	"codeberg.org/mutker/ryzenctl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "/etc/ryzenctl.json", cfg.ConfigFile)
	assert.Equal(t, config.DefaultInterval, cfg.Interval)
	assert.Equal(t, 10*time.Second, cfg.IntervalDuration())
	assert.Equal(t, "/sys/firmware/acpi/platform_profile", cfg.ProfilePath)
	assert.Empty(t, cfg.ACPath)
	assert.Equal(t, "ryzenadj", cfg.Ryzenadj)
	assert.Zero(t, cfg.HardwareTimeoutDuration())
	assert.Equal(t, config.DefaultReadRetries, cfg.ReadRetries)
	assert.Empty(t, cfg.StatusAddr)
	assert.False(t, cfg.Monitor)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.Verbose)
}

func TestLoadFlags(t *testing.T) {
	cfg, err := config.Load([]string{
		"--config", "/tmp/policy.json",
		"--interval", "3",
		"--ac-path", "/sys/class/power_supply/ACAD/online",
		"--hardware-timeout", "5",
		"--read-retries", "0",
		"--status-addr", "127.0.0.1:9810",
		"--monitor",
		"--debug",
	})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/policy.json", cfg.ConfigFile)
	assert.Equal(t, 3*time.Second, cfg.IntervalDuration())
	assert.Equal(t, "/sys/class/power_supply/ACAD/online", cfg.ACPath)
	assert.Equal(t, 5*time.Second, cfg.HardwareTimeoutDuration())
	assert.Equal(t, 0, cfg.ReadRetries)
	assert.Equal(t, "127.0.0.1:9810", cfg.StatusAddr)
	assert.True(t, cfg.Monitor)
	assert.True(t, cfg.Debug)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("RYZENCTL_INTERVAL", "30")
	t.Setenv("RYZENCTL_PROFILE_PATH", "/tmp/profile")
	t.Setenv("RYZENCTL_MONITOR", "true")

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Interval)
	assert.Equal(t, "/tmp/profile", cfg.ProfilePath)
	assert.True(t, cfg.Monitor)
}

func TestFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("RYZENCTL_INTERVAL", "30")

	cfg, err := config.Load([]string{"--interval", "2"})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Interval)
}

func TestInvalidInterval(t *testing.T) {
	for _, arg := range []string{"0", "-5"} {
		_, err := config.Load([]string{"--interval", arg})
		require.Error(t, err, arg)
		assert.True(t, errors.HasCode(err, errors.ErrInvalidInterval), arg)
	}
}

func TestInvalidNegativeValues(t *testing.T) {
	_, err := config.Load([]string{"--read-retries", "-1"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidArgument))

	_, err = config.Load([]string{"--hardware-timeout", "-1"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidArgument))
}

func TestUnknownFlag(t *testing.T) {
	_, err := config.Load([]string{"--temperature", "80"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidArgument))
}

func TestEmptyConfigFile(t *testing.T) {
	_, err := config.Load([]string{"--config", ""})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrMissingConfig))
}
