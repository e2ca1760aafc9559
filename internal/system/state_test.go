package system_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/policy"
	"codeberg.org/mutker/ryzenctl/internal/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestParsePowerMode(t *testing.T) {
	tests := []struct {
		raw  string
		want policy.PowerMode
	}{
		{"quiet\n", policy.Quiet},
		{"balanced", policy.Balanced},
		{"  performance \n", policy.Performance},
	}
	for _, tt := range tests {
		got, err := system.ParsePowerMode(tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	for _, raw := range []string{"", "   \n", "low-power", "Quiet", "balanced-performance"} {
		_, err := system.ParsePowerMode(raw)
		require.Error(t, err, "raw=%q", raw)
		assert.True(t, errors.HasCode(err, system.ErrUnknownPowerMode))

		var appErr errors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, raw, appErr.GetData())
	}
}

func TestParseOnline(t *testing.T) {
	assert.True(t, system.ParseOnline("1\n"))
	assert.True(t, system.ParseOnline(" 1 "))
	assert.False(t, system.ParseOnline("0\n"))
	assert.False(t, system.ParseOnline(""))
	assert.False(t, system.ParseOnline("yes"))
}

func TestReaderRead(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "platform_profile", "balanced\n")
	ac := writeFile(t, dir, "online", "0\n")

	reader := system.NewReader(system.FileSource(profile), system.FileSource(ac))
	state, err := reader.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, policy.State{Mode: policy.Balanced, OnAC: false}, state)

	writeFile(t, dir, "online", "1\n")
	writeFile(t, dir, "platform_profile", "performance\n")
	state, err = reader.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, policy.State{Mode: policy.Performance, OnAC: true}, state)
}

func TestReaderUnavailable(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "platform_profile", "quiet\n")
	missing := filepath.Join(dir, "missing")

	_, err := system.NewReader(system.FileSource(missing), system.FileSource(profile)).Read(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, system.ErrSourceUnavailable))
	assert.Contains(t, err.Error(), missing)

	_, err = system.NewReader(system.FileSource(profile), system.FileSource(missing)).Read(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, system.ErrSourceUnavailable))
}

func TestDiscoverACPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "BAT0/type", "Battery\n")
	writeFile(t, root, "BAT0/online", "1\n")
	writeFile(t, root, "ACAD/type", "Mains\n")
	online := writeFile(t, root, "ACAD/online", "1\n")

	assert.Equal(t, online, system.DiscoverACPath(root))
}

func TestDiscoverACPathFallback(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "BAT1/type", "Battery\n")

	assert.Equal(t, filepath.Join(root, "AC0", "online"), system.DiscoverACPath(root))
}
