package dsp

import (
	"math"

	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/config"
)

// panLawExponent maps a PanLaw to the center attenuation used in the
// constant-power crossfade below (spec §4.4 Pan: "selectable at build
// to -3 dB, -4.5 dB, or -6 dB" — made runtime-selectable, see SPEC_FULL
// §6 decision 5).
func panLawExponent(law config.PanLaw) float64 {
	switch law {
	case config.PanLawMinus4_5dB:
		return 1.5
	case config.PanLawMinus6dB:
		return 2
	default: // PanLawMinus3dB
		return 1
	}
}

// Pan is a stereo constant-power panner. Angle is in [-1, 1], mapped to
// [0, rad(pi/2)]: -1 is hard left, 0 is center, 1 is hard right.
type Pan struct {
	law     config.PanLaw
	current float64
	target  float64
	bypass  bool
}

// NewPan constructs a Pan centered at angle 0 using law.
func NewPan(law config.PanLaw) *Pan {
	return &Pan{law: law}
}

// SetTarget schedules a new pan angle in [-1, 1].
func (p *Pan) SetTarget(angle float64) { p.target = angle }

// SetBypass implements Block.
func (p *Pan) SetBypass(bypass bool) { p.bypass = bypass }

// Bypassed implements Block.
func (p *Pan) Bypassed() bool { return p.bypass }

// gains returns the (left, right) linear gain pair for a pan angle in
// [-1, 1] under the configured pan law.
func (p *Pan) gains(angle float64) (left, right float64) {
	if angle < -1 {
		angle = -1
	}
	if angle > 1 {
		angle = 1
	}
	// map [-1, 1] to [0, pi/2]
	theta := (angle + 1) * (math.Pi / 4)
	exponent := panLawExponent(p.law)
	left = math.Pow(math.Cos(theta), exponent)
	right = math.Pow(math.Sin(theta), exponent)
	return left, right
}

// Process implements Block. Pan only makes sense on a stereo MixItem;
// mono or multichannel items beyond two channels are left untouched
// past the first two.
func (p *Pan) Process(item *buffer.MixItem) {
	if p.bypass {
		return
	}
	if len(item.Channels) < 2 {
		p.current = p.target
		return
	}
	left := item.Channels[0].Data()
	right := item.Channels[1].Data()
	frames := len(left)

	for i := 0; i < frames; i++ {
		angle := linearRamp(p.current, p.target, i, frames)
		lg, rg := p.gains(angle)
		left[i] *= float32(lg)
		right[i] *= float32(rg)
	}
	p.current = p.target
}
