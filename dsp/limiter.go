package dsp

import "github.com/z-e-chan/redfish/buffer"

// Limiter is a hard peak limiter: if the block's peak exceeds
// ThresholdDB, the entire block is scaled down so its peak lands
// exactly at the threshold (spec §4.4 "Limiter").
type Limiter struct {
	ThresholdDB float64
	bypass      bool
}

// NewLimiter constructs a Limiter at the given threshold.
func NewLimiter(thresholdDB float64) *Limiter {
	return &Limiter{ThresholdDB: thresholdDB}
}

// SetBypass implements Block.
func (l *Limiter) SetBypass(bypass bool) { l.bypass = bypass }

// Bypassed implements Block.
func (l *Limiter) Bypassed() bool { return l.bypass }

// Process implements Block.
func (l *Limiter) Process(item *buffer.MixItem) {
	if l.bypass {
		return
	}
	peak := item.AbsoluteMax()
	if peak == 0 {
		return
	}
	peakDB := AmpToDB(float64(peak))
	if peakDB <= l.ThresholdDB {
		return
	}
	scale := float32(DBToAmp(l.ThresholdDB - peakDB))
	for _, ch := range item.Channels {
		ch.ScalarMultiply(scale)
	}
}
