// Package dsp implements the engine's DSP block library: small,
// state-carrying audio effects chained behind mix groups and voices
// (spec §4.4). Every block exposes Process(item), which works on the
// item's full frame length, and a Bypass flag; all state lives in the
// block itself. Most blocks allocate only when the item's channel count
// changes; Convolver.Process allocates its FFT scratch buffers on every
// call.
package dsp

import (
	"math"

	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/config"
)

// Block is the common contract every DSP effect satisfies: process the
// given MixItem in place, consuming and producing the same number of
// samples. When Bypassed is true, Process must leave samples untouched.
type Block interface {
	Process(item *buffer.MixItem)
	SetBypass(bypass bool)
	Bypassed() bool
}

// DBToAmp converts decibels to a linear amplitude multiplier.
// config.MinDB (and anything below it) maps to 0, matching the spec's
// "dB_to_amp(-inf) = 0" testable property.
func DBToAmp(db float64) float64 {
	if db <= config.MinDB {
		return 0
	}
	return math.Pow(10, db/20)
}

// AmpToDB converts a linear amplitude multiplier to decibels. An
// amplitude of 0 or less maps to config.MinDB rather than -Inf, so
// callers can always format or clamp the result.
func AmpToDB(amp float64) float64 {
	if amp <= 0 {
		return config.MinDB
	}
	db := 20 * math.Log10(amp)
	if db < config.MinDB {
		return config.MinDB
	}
	return db
}

// linearRamp returns the interpolated value at sample index i out of n
// total samples, moving linearly from start to end across the block.
func linearRamp(start, end float64, i, n int) float64 {
	if n <= 1 {
		return end
	}
	t := float64(i) / float64(n-1)
	return start + (end-start)*t
}

// clampUnit keeps a ratio in [0, 1].
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
