package config

import (
	"strings"
	"time"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/policy"
	"codeberg.org/mutker/ryzenctl/internal/ryzen"
	"codeberg.org/mutker/ryzenctl/internal/system"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix = "RYZENCTL"

	DefaultInterval    = 10
	DefaultReadRetries = 3
)

type Config struct {
	ConfigFile      string `mapstructure:"config"`
	Interval        int    `mapstructure:"interval"`
	ProfilePath     string `mapstructure:"profile-path"`
	ACPath          string `mapstructure:"ac-path"`
	Ryzenadj        string `mapstructure:"ryzenadj"`
	HardwareTimeout int    `mapstructure:"hardware-timeout"`
	ReadRetries     int    `mapstructure:"read-retries"`
	StatusAddr      string `mapstructure:"status-addr"`
	Monitor         bool   `mapstructure:"monitor"`
	Debug           bool   `mapstructure:"debug"`
	Verbose         bool   `mapstructure:"verbose"`
}

// Load parses args, then applies RYZENCTL_* environment overrides for any
// flag not given on the command line.
func Load(args []string) (*Config, error) {
	errFactory := errors.New()

	flags := pflag.NewFlagSet("ryzenctl", pflag.ContinueOnError)
	flags.String("config", policy.DefaultPath, "Policy file")
	flags.Int("interval", DefaultInterval, "Seconds between control cycles")
	flags.String("profile-path", system.DefaultProfilePath, "Platform profile attribute")
	flags.String("ac-path", "", "AC online attribute (empty to discover)")
	flags.String("ryzenadj", ryzen.DefaultBinary, "ryzenadj binary")
	flags.Int("hardware-timeout", 0, "Seconds before a ryzenadj call is aborted (0 for none)")
	flags.Int("read-retries", DefaultReadRetries, "Consecutive unreadable cycles tolerated")
	flags.String("status-addr", "", "Status endpoint listen address (empty to disable)")
	flags.Bool("monitor", false, "Read and decide, never write limits")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")

	if err := flags.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidArgument, err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.ReadRetries < 0 {
		return errFactory.WithData(errors.ErrInvalidArgument, "read-retries")
	}
	if c.HardwareTimeout < 0 {
		return errFactory.WithData(errors.ErrInvalidArgument, "hardware-timeout")
	}
	if c.ConfigFile == "" {
		return errFactory.WithData(errors.ErrMissingConfig, "config")
	}

	return nil
}

func (c *Config) IntervalDuration() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

func (c *Config) HardwareTimeoutDuration() time.Duration {
	return time.Duration(c.HardwareTimeout) * time.Second
}
