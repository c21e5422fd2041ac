package dsp

import (
	"math"

	"github.com/z-e-chan/redfish/buffer"
)

// ButterworthKind selects lowpass or highpass response.
type ButterworthKind int

const (
	ButterworthLowPass ButterworthKind = iota
	ButterworthHighPass
)

// butterworthState is one channel's 2-input/2-output delay line.
type butterworthState struct {
	x1, x2, y1, y2 float64
}

// Butterworth is a first-order Butterworth section computed via the
// bilinear transform, with a cutoff that ramps linearly across the
// block (spec §4.4 "Butterworth Lowpass / Highpass"). Order 1 applies
// the section once. Order 2 applies the same first-order section twice
// in cascade: 12 dB/octave with about -6 dB at the cutoff, not the
// maximally flat second-order Butterworth response (-3 dB at the cutoff).
type Butterworth struct {
	kind       ButterworthKind
	order      int
	sampleRate float64

	cutoffStart, cutoffTarget float64

	states []butterworthState
	bypass bool
}

// NewButterworth constructs a Butterworth filter of order 1 or 2 for
// channels channels.
func NewButterworth(kind ButterworthKind, order int, sampleRate float64, channels int, cutoff float64) *Butterworth {
	if order != 1 {
		order = 2
	}
	return &Butterworth{
		kind:         kind,
		order:        order,
		sampleRate:   sampleRate,
		cutoffStart:  cutoff,
		cutoffTarget: cutoff,
		states:       make([]butterworthState, channels),
	}
}

// SetTarget schedules the cutoff the next Process call ramps toward.
func (bw *Butterworth) SetTarget(cutoff float64) {
	bw.cutoffStart = bw.cutoffTarget
	bw.cutoffTarget = cutoff
}

// SetBypass implements Block.
func (bw *Butterworth) SetBypass(bypass bool) { bw.bypass = bypass }

// Bypassed implements Block.
func (bw *Butterworth) Bypassed() bool { return bw.bypass }

// isNoOp reports whether both ramp endpoints put this filter at its
// pass-through extreme: cutoff at max for a lowpass, at min for a
// highpass (spec §4.4: "Reset delay lines when the block becomes a
// no-op").
func (bw *Butterworth) isNoOp() bool {
	nyquist := bw.sampleRate / 2
	switch bw.kind {
	case ButterworthHighPass:
		return bw.cutoffStart <= 0 && bw.cutoffTarget <= 0
	default:
		return bw.cutoffStart >= nyquist && bw.cutoffTarget >= nyquist
	}
}

func (bw *Butterworth) reset() {
	for i := range bw.states {
		bw.states[i] = butterworthState{}
	}
}

// coefficients computes the bilinear-transform first-order Butterworth
// coefficients at the given cutoff; order 2 applies them twice in
// cascade (see Process).
func (bw *Butterworth) coefficients(cutoff float64) (b0, b1, a1 float64) {
	if cutoff <= 0 {
		cutoff = 1
	}
	nyquist := bw.sampleRate / 2
	if cutoff >= nyquist {
		cutoff = nyquist - 1
	}
	k := math.Tan(math.Pi * cutoff / bw.sampleRate)
	switch bw.kind {
	case ButterworthHighPass:
		a0 := 1 + k
		return 1 / a0, -1 / a0, (k - 1) / a0
	default:
		a0 := 1 + k
		return k / a0, k / a0, (k - 1) / a0
	}
}

// Process implements Block.
func (bw *Butterworth) Process(item *buffer.MixItem) {
	if bw.bypass {
		return
	}
	if bw.isNoOp() {
		bw.reset()
		bw.cutoffStart = bw.cutoffTarget
		return
	}
	if len(bw.states) != len(item.Channels) {
		bw.states = make([]butterworthState, len(item.Channels))
	}

	frames := 0
	if len(item.Channels) > 0 {
		frames = item.Channels[0].Len()
	}

	for c, ch := range item.Channels {
		data := ch.Data()
		st := &bw.states[c]
		for i := 0; i < frames; i++ {
			cutoff := linearRamp(bw.cutoffStart, bw.cutoffTarget, i, frames)
			b0, b1, a1 := bw.coefficients(cutoff)

			x0 := float64(data[i])
			y0 := b0*x0 + b1*st.x1 - a1*st.y1

			// second pass, reusing the same delay line structure, gives
			// the order-2 response; order 1 stops after the first pass.
			if bw.order == 2 {
				x1b, y1b := st.x2, st.y2
				y1 := b0*y0 + b1*x1b - a1*y1b
				st.x2 = y0
				st.y2 = y1
				y0 = y1
			}

			st.x1 = x0
			st.y1 = y0

			data[i] = float32(y0)
		}
	}
	bw.cutoffStart = bw.cutoffTarget
}
