package model

import "math"

// ToMinorUnits converts a major-unit decimal amount (e.g. dollars) to integer
// minor units (e.g. cents), rounding half away from zero. Payment provider
// APIs operate in minor units, and all cart arithmetic stays integer to avoid
// cent-level floating-point drift.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts integer minor units back to a major-unit decimal
// for display purposes only. Never feed the result back into arithmetic.
func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}
