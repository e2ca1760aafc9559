package system

import "codeberg.org/mutker/ryzenctl/internal/errors"

const (
	ErrUnknownPowerMode  = errors.ErrorCode("system_unknown_power_mode")
	ErrSourceUnavailable = errors.ErrorCode("system_source_unavailable")
	ErrSensorUnavailable = errors.ErrorCode("system_sensor_unavailable")
)
