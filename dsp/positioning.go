package dsp

import (
	"math"

	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/config"
)

// DistanceParams configures how Positioning maps a distance to the
// composite gain/filter/pan it applies (spec §4.4 "Positioning").
type DistanceParams struct {
	MinDistance float64
	MaxDistance float64
	Curve       config.DistanceCurve

	MaxAttenuationDB float64
	MaxHPFCutoffHz   float64
	MaxLPFCutoffHz   float64

	PanAngle float64
}

// Positioning is a composite of Gain, a Butterworth HPF, a Butterworth
// LPF, and Pan, all driven from a single distance value (spec §4.4:
// "composite of gain + Butterworth HPF + Butterworth LPF + pan").
type Positioning struct {
	sampleRate float64
	params     DistanceParams

	gain *Gain
	hpf  *Butterworth
	lpf  *Butterworth
	pan  *Pan

	bypass bool
}

// NewPositioning constructs a Positioning block for the given sample
// rate, channel count, and pan law. Near field defaults to no HPF (0 Hz)
// and no LPF (nyquist, fully open).
func NewPositioning(sampleRate float64, channels int, panLaw config.PanLaw) *Positioning {
	nyquist := sampleRate / 2
	return &Positioning{
		sampleRate: sampleRate,
		params: DistanceParams{
			MinDistance:      0,
			MaxDistance:      1,
			Curve:            config.DistanceLinear,
			MaxAttenuationDB: config.MinDB,
			MaxHPFCutoffHz:   0,
			MaxLPFCutoffHz:   nyquist,
		},
		gain: NewGain(),
		hpf:  NewButterworth(ButterworthHighPass, 2, sampleRate, channels, 0),
		lpf:  NewButterworth(ButterworthLowPass, 2, sampleRate, channels, nyquist),
		pan:  NewPan(panLaw),
	}
}

// SetParams replaces the distance parameters used by the next Update
// call.
func (p *Positioning) SetParams(params DistanceParams) { p.params = params }

// SetBypass implements Block.
func (p *Positioning) SetBypass(bypass bool) { p.bypass = bypass }

// Bypassed implements Block.
func (p *Positioning) Bypassed() bool { return p.bypass }

// normalizedDistance maps the raw distance into [0, 1] via
// (current-min)/(max-min), then reshapes it through the configured
// curve (spec §4.4: "Linear, EqualPower (root), Quadratic").
func (p *Positioning) normalizedDistance(distance float64) float64 {
	span := p.params.MaxDistance - p.params.MinDistance
	var t float64
	if span > 0 {
		t = (distance - p.params.MinDistance) / span
	}
	t = clampUnit(t)

	switch p.params.Curve {
	case config.DistanceEqualPower:
		return math.Sqrt(t)
	case config.DistanceQuadratic:
		return t * t
	default:
		return t
	}
}

// Update recomputes the gain/filter/pan targets for the given distance;
// the next Process call ramps toward them (spec §4.4: near = full
// volume, min HPF, max LPF; far = maxAttenuationDb volume, maxHpfCutoff
// HPF, maxLpfCutoff LPF; pan angle passed through unchanged).
func (p *Positioning) Update(distance float64) {
	t := p.normalizedDistance(distance)

	ampDB := t * p.params.MaxAttenuationDB
	p.gain.SetTarget(DBToAmp(ampDB))

	hpfCutoff := t * p.params.MaxHPFCutoffHz
	p.hpf.SetTarget(hpfCutoff)

	nyquist := p.sampleRate / 2
	lpfCutoff := nyquist + t*(p.params.MaxLPFCutoffHz-nyquist)
	p.lpf.SetTarget(lpfCutoff)

	p.pan.SetTarget(p.params.PanAngle)
}

// Process implements Block, running gain, HPF, LPF, and pan in series.
func (p *Positioning) Process(item *buffer.MixItem) {
	if p.bypass {
		return
	}
	p.gain.Process(item)
	p.hpf.Process(item)
	p.lpf.Process(item)
	p.pan.Process(item)
}
