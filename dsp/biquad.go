package dsp

import (
	"math"

	"github.com/z-e-chan/redfish/buffer"
)

// BiquadKind selects which RBJ cookbook coefficient formula a Biquad
// recomputes on each sample (spec §4.4 "Biquad IIR Lowpass / Highpass").
type BiquadKind int

const (
	BiquadLowPass BiquadKind = iota
	BiquadHighPass
)

// biquadState is one channel's direct-form-I delay line: two input and
// two output history samples, matching the equalizer package's Filter
// shape (in1, in2, out1, out2 per channel).
type biquadState struct {
	in1, in2, out1, out2 float64
}

// Biquad is a direct-form-I IIR filter whose cutoff and Q both ramp
// linearly across the block; coefficients are recomputed per sample so
// parameter changes never produce an audible discontinuity (spec §4.4:
// "coefficients recomputed per sample to hide parameter
// discontinuities").
type Biquad struct {
	kind       BiquadKind
	sampleRate float64

	cutoffStart, cutoffTarget float64
	qStart, qTarget           float64

	states []biquadState
	bypass bool
}

// NewBiquad constructs a Biquad for the given sample rate and channel
// count, starting at cutoff/q with no ramp pending.
func NewBiquad(kind BiquadKind, sampleRate float64, channels int, cutoff, q float64) *Biquad {
	return &Biquad{
		kind:         kind,
		sampleRate:   sampleRate,
		cutoffStart:  cutoff,
		cutoffTarget: cutoff,
		qStart:       q,
		qTarget:      q,
		states:       make([]biquadState, channels),
	}
}

// SetTarget schedules the cutoff and Q the next Process call ramps
// toward, starting from whatever the filter last settled at.
func (b *Biquad) SetTarget(cutoff, q float64) {
	b.cutoffStart = b.cutoffTarget
	b.qStart = b.qTarget
	b.cutoffTarget = cutoff
	b.qTarget = q
}

// SetBypass implements Block.
func (b *Biquad) SetBypass(bypass bool) { b.bypass = bypass }

// Bypassed implements Block.
func (b *Biquad) Bypassed() bool { return b.bypass }

// coefficients computes the normalized RBJ cookbook biquad coefficients
// for this filter's kind at the given cutoff/Q.
func (b *Biquad) coefficients(cutoff, q float64) (b0a0, b1a0, b2a0, a1a0, a2a0 float64) {
	if cutoff <= 0 {
		cutoff = 1
	}
	if cutoff >= b.sampleRate/2 {
		cutoff = b.sampleRate/2 - 1
	}
	if q <= 0 {
		q = 0.0001
	}
	w0 := 2 * math.Pi * cutoff / b.sampleRate
	cosW0 := math.Cos(w0)
	sinW0 := math.Sin(w0)
	alpha := sinW0 / (2 * q)

	var b0, b1, b2, a0, a1, a2 float64
	switch b.kind {
	case BiquadHighPass:
		b0 = (1 + cosW0) / 2
		b1 = -(1 + cosW0)
		b2 = (1 + cosW0) / 2
	default: // BiquadLowPass
		b0 = (1 - cosW0) / 2
		b1 = 1 - cosW0
		b2 = (1 - cosW0) / 2
	}
	a0 = 1 + alpha
	a1 = -2 * cosW0
	a2 = 1 - alpha

	return b0 / a0, b1 / a0, b2 / a0, a1 / a0, a2 / a0
}

// Process implements Block.
func (b *Biquad) Process(item *buffer.MixItem) {
	if b.bypass {
		return
	}
	if len(b.states) != len(item.Channels) {
		b.states = make([]biquadState, len(item.Channels))
	}

	frames := 0
	if len(item.Channels) > 0 {
		frames = item.Channels[0].Len()
	}

	for c, ch := range item.Channels {
		data := ch.Data()
		st := &b.states[c]
		for i := 0; i < frames; i++ {
			cutoff := linearRamp(b.cutoffStart, b.cutoffTarget, i, frames)
			q := linearRamp(b.qStart, b.qTarget, i, frames)
			b0a0, b1a0, b2a0, a1a0, a2a0 := b.coefficients(cutoff, q)

			in0 := float64(data[i])
			out0 := b0a0*in0 + b1a0*st.in1 + b2a0*st.in2 - a1a0*st.out1 - a2a0*st.out2

			st.in2 = st.in1
			st.in1 = in0
			st.out2 = st.out1
			st.out1 = out0

			data[i] = float32(out0)
		}
	}
	b.cutoffStart = b.cutoffTarget
	b.qStart = b.qTarget
}
