package metrics

import "codeberg.org/mutker/ryzenctl/internal/errors"

const defaultHistory = 1

type Config struct {
	Enabled bool
	// History is how many recent snapshots to keep in memory.
	History int
}

func DefaultConfig() Config {
	return Config{
		History: defaultHistory,
		Enabled: false, // Disabled by default
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Enabled && c.History < 1 {
		return errFactory.WithData(ErrInvalidConfig, "history must be at least 1")
	}
	return nil
}
