package pipeline

import (
	"time"

	"foodsense"
)

// ADC ranges. LocalADCMax is the 12-bit range of the on-board converter;
// ReferenceMax is the 16-bit-ish range of the platform the classification
// model was trained against. The two-step rescale below must stay two steps:
// the intermediate reference-scale value is what keeps readings comparable
// with the trained model, and some deployments log it separately.
const (
	LocalADCMax  = 4095
	ReferenceMax = 65472
)

// ReferenceScale converts a raw local ADC reading into the reference
// platform's range.
func ReferenceScale(raw int) float64 {
	return float64(raw) / LocalADCMax * ReferenceMax
}

// Normalize collapses a raw reading to a unit-interval fraction via the
// reference scale. Raw values are hardware-bounded to [0, LocalADCMax], so
// no clamping is applied.
func Normalize(raw int) float64 {
	return ReferenceScale(raw) / ReferenceMax
}

// NormalizeAll maps a raw sample vector into a Reading, preserving channel
// order. The result always has exactly len(raws) entries.
func NormalizeAll(raws []int, at time.Time) foodsense.Reading {
	values := make([]float64, len(raws))
	for i, raw := range raws {
		values[i] = Normalize(raw)
	}
	return foodsense.Reading{Values: values, TakenAt: at}
}
