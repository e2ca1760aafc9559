package policy

import (
	"math"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/logger"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// DefaultPath is where the daemon looks for its policy file.
const DefaultPath = "/etc/ryzenctl.json"

type fileProfile struct {
	Enable       bool     `mapstructure:"enable"`
	StapmLimit   *float64 `mapstructure:"stapm_limit"`
	FastLimit    *float64 `mapstructure:"fast_limit"`
	SlowLimit    *float64 `mapstructure:"slow_limit"`
	APUSlowLimit *float64 `mapstructure:"apu_slow_limit"`
}

type filePair struct {
	Plugged   fileProfile `mapstructure:"plugged"`
	Unplugged fileProfile `mapstructure:"unplugged"`
}

type file struct {
	Quiet       filePair `mapstructure:"quiet"`
	Balanced    filePair `mapstructure:"balanced"`
	Performance filePair `mapstructure:"performance"`
	TctlLimit   *float64 `mapstructure:"tctl_limit"`
}

// Load reads and validates the JSON policy file at path.
func Load(path string) (Bundle, error) {
	errFactory := errors.New()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return Bundle{}, errFactory.Wrap(errors.ErrReadConfig, err).WithData(path)
	}

	for _, mode := range Modes {
		for _, conn := range []string{"plugged", "unplugged"} {
			key := mode.String() + "." + conn + ".enable"
			if !v.IsSet(key) {
				return Bundle{}, errFactory.WithData(errors.ErrMissingConfig, key)
			}
		}
	}

	var raw file
	if err := v.Unmarshal(&raw, strictDecoding); err != nil {
		return Bundle{}, errFactory.Wrap(errors.ErrInvalidConfig, err).WithData(path)
	}

	pairs := make([]ConnectivityPair, 0, numModes)
	for _, mode := range Modes {
		rawPair := raw.pair(mode)
		plugged, err := rawPair.Plugged.decode(mode.String() + ".plugged")
		if err != nil {
			return Bundle{}, err
		}
		unplugged, err := rawPair.Unplugged.decode(mode.String() + ".unplugged")
		if err != nil {
			return Bundle{}, err
		}
		pairs = append(pairs, ConnectivityPair{Plugged: plugged, Unplugged: unplugged})
	}

	tctl, err := toLimit(raw.TctlLimit, "tctl_limit")
	if err != nil {
		return Bundle{}, err
	}

	bundle, err := NewBundle(pairs[Quiet], pairs[Balanced], pairs[Performance], tctl)
	if err != nil {
		return Bundle{}, err
	}

	logger.Debug().Str("path", path).Msg("Power policy loaded")

	return bundle, nil
}

// strictDecoding rejects values of the wrong JSON type instead of converting them.
func strictDecoding(c *mapstructure.DecoderConfig) {
	c.WeaklyTypedInput = false
}

func (f file) pair(mode PowerMode) filePair {
	switch mode {
	case Balanced:
		return f.Balanced
	case Performance:
		return f.Performance
	default:
		return f.Quiet
	}
}

func (p fileProfile) decode(prefix string) (LimitProfile, error) {
	profile := LimitProfile{Enabled: p.Enable}

	var err error
	if profile.SustainedLimit, err = toLimit(p.StapmLimit, prefix+".stapm_limit"); err != nil {
		return LimitProfile{}, err
	}
	if profile.FastLimit, err = toLimit(p.FastLimit, prefix+".fast_limit"); err != nil {
		return LimitProfile{}, err
	}
	if profile.SlowLimit, err = toLimit(p.SlowLimit, prefix+".slow_limit"); err != nil {
		return LimitProfile{}, err
	}
	if profile.APUSlowLimit, err = toLimit(p.APUSlowLimit, prefix+".apu_slow_limit"); err != nil {
		return LimitProfile{}, err
	}

	return profile, nil
}

// toLimit accepts whole numbers in the unsigned 32-bit range.
func toLimit(v *float64, key string) (*uint32, error) {
	if v == nil {
		return nil, nil
	}
	if *v != math.Trunc(*v) || *v < 0 || *v > math.MaxUint32 {
		return nil, errors.New().WithData(errors.ErrInvalidConfig, struct {
			Key   string
			Value float64
		}{
			Key:   key,
			Value: *v,
		})
	}

	return Uint32(uint32(*v)), nil
}
