package ryzen

import "math"

const milliWattsPerWatt = 1000

// ToMilliWatts normalizes a native reading to mW, rounding to the nearest mW.
func ToMilliWatts(w Watts) MilliWatts {
	if w <= 0 || math.IsNaN(float64(w)) {
		return 0
	}

	mw := math.Round(float64(w) * milliWattsPerWatt)
	if mw > math.MaxUint32 {
		return math.MaxUint32
	}

	return MilliWatts(mw)
}

// ToWatts converts mW to the native unit.
func ToWatts(mw MilliWatts) Watts {
	return Watts(float64(mw) / milliWattsPerWatt)
}
