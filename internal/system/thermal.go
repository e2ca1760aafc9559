package system

import (
	"context"
	"strings"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"github.com/shirou/gopsutil/v3/host"
)

const tctlSensorPrefix = "k10temp"

// SensorFunc lists temperature sensors.
type SensorFunc func(ctx context.Context) ([]host.TemperatureStat, error)

// Thermal reads the processor control temperature from the k10temp driver.
type Thermal struct {
	sensors SensorFunc
}

func NewThermal() *Thermal {
	return &Thermal{sensors: host.SensorsTemperaturesWithContext}
}

// NewThermalWith uses sensors instead of the host's hwmon tree.
func NewThermalWith(sensors SensorFunc) *Thermal {
	return &Thermal{sensors: sensors}
}

// Tctl returns the Tctl reading in °C, preferring the tctl label over other
// k10temp channels.
func (t *Thermal) Tctl(ctx context.Context) (float64, error) {
	errFactory := errors.New()

	temps, err := t.sensors(ctx)
	if err != nil && len(temps) == 0 {
		// gopsutil returns partial results alongside warnings
		return 0, errFactory.Wrap(ErrSensorUnavailable, err)
	}

	var (
		found   bool
		reading float64
	)
	for _, temp := range temps {
		key := strings.ToLower(temp.SensorKey)
		if !strings.HasPrefix(key, tctlSensorPrefix) {
			continue
		}
		if strings.HasSuffix(key, "tctl") {
			return temp.Temperature, nil
		}
		if !found {
			found = true
			reading = temp.Temperature
		}
	}

	if !found {
		return 0, errFactory.WithData(ErrSensorUnavailable, tctlSensorPrefix)
	}

	return reading, nil
}
