package ryzen

import "codeberg.org/mutker/ryzenctl/internal/errors"

const (
	// Lifecycle Errors
	ErrNotInitialized = errors.ErrorCode("ryzen_not_initialized")
	ErrInitFailed     = errors.ErrorCode("ryzen_init_failed")

	// Hardware access Errors
	ErrReadFailed    = errors.ErrorCode("ryzen_read_failed")
	ErrWriteFailed   = errors.ErrorCode("ryzen_write_failed")
	ErrRefreshFailed = errors.ErrorCode("ryzen_refresh_failed")
	ErrParseFailed   = errors.ErrorCode("ryzen_parse_failed")
)

// IsHardwareError reports whether err came from the power-control interface.
func IsHardwareError(err error) bool {
	for _, code := range []errors.ErrorCode{
		ErrNotInitialized, ErrInitFailed, ErrReadFailed, ErrWriteFailed, ErrRefreshFailed, ErrParseFailed,
	} {
		if errors.HasCode(err, code) {
			return true
		}
	}

	return false
}
