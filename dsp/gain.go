package dsp

import (
	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/config"
)

// Gain ramps linearly from its current amplitude to a target amplitude
// across the first config.GainRampSamples of a block, then holds
// constant (spec §4.4 Gain).
type Gain struct {
	current float64
	target  float64
	bypass  bool
}

// NewGain constructs a Gain starting and targeting unity amplitude.
func NewGain() *Gain {
	return &Gain{current: 1, target: 1}
}

// SetTarget schedules a new target amplitude; the next Process call
// ramps toward it from whatever the current amplitude is.
func (g *Gain) SetTarget(amp float64) { g.target = amp }

// Current returns the amplitude Gain is currently outputting (after the
// most recent Process call).
func (g *Gain) Current() float64 { return g.current }

// SetBypass implements Block.
func (g *Gain) SetBypass(bypass bool) { g.bypass = bypass }

// Bypassed implements Block.
func (g *Gain) Bypassed() bool { return g.bypass }

// Process implements Block. If both the current and target amplitude
// are 1.0, the block is a no-op and skips entirely (spec §4.4: "skip
// entirely if both endpoints equal 1.0").
func (g *Gain) Process(item *buffer.MixItem) {
	if g.bypass {
		return
	}
	if g.current == 1 && g.target == 1 {
		return
	}
	if len(item.Channels) == 0 {
		g.current = g.target
		return
	}
	frames := item.Channels[0].Len()
	ramp := config.GainRampSamples
	if ramp > frames {
		ramp = frames
	}

	for _, ch := range item.Channels {
		data := ch.Data()
		for i := 0; i < ramp; i++ {
			amp := linearRamp(g.current, g.target, i, ramp)
			data[i] *= float32(amp)
		}
		for i := ramp; i < frames; i++ {
			data[i] *= float32(g.target)
		}
	}
	g.current = g.target
}
