package dsp

import (
	"github.com/z-e-chan/redfish/buffer"
)

// Compressor applies peak-detected gain reduction above a threshold,
// with a linear ramp into the reduction over attack ms and back to
// unity over release ms (spec §4.4 "Compressor"). Each ramp is capped at
// one block: when attack or release is longer than the block, the ramp
// still reaches its target on the block's last ramped sample, and the
// next block starts from that gain.
type Compressor struct {
	sampleRate float64

	ThresholdDB float64
	RatioToOne  float64
	AttackMS    float64
	ReleaseMS   float64
	MakeupDB    float64

	currentGain float64 // linear amplitude applied to the block, 1 = no reduction
	bypass      bool
}

// NewCompressor constructs a Compressor at unity gain, with ratio 1:1
// (no-op) until configured.
func NewCompressor(sampleRate float64) *Compressor {
	return &Compressor{
		sampleRate:  sampleRate,
		RatioToOne:  1,
		AttackMS:    10,
		ReleaseMS:   100,
		currentGain: 1,
	}
}

// SetBypass implements Block.
func (c *Compressor) SetBypass(bypass bool) { c.bypass = bypass }

// Bypassed implements Block.
func (c *Compressor) Bypassed() bool { return c.bypass }

func msToSamples(ms, sampleRate float64) int {
	n := int(ms * sampleRate / 1000)
	if n < 1 {
		n = 1
	}
	return n
}

// Process implements Block.
func (c *Compressor) Process(item *buffer.MixItem) {
	if c.bypass {
		return
	}

	peak := item.AbsoluteMax()
	peakDB := AmpToDB(float64(peak))

	targetGain := 1.0
	rampSamples := msToSamples(c.ReleaseMS, c.sampleRate)
	if peakDB > c.ThresholdDB && c.RatioToOne > 1 {
		reductionDB := peakDB - (c.ThresholdDB + (peakDB-c.ThresholdDB)/c.RatioToOne)
		targetGain = DBToAmp(-reductionDB)
		rampSamples = msToSamples(c.AttackMS, c.sampleRate)
	}

	makeup := DBToAmp(c.MakeupDB)

	if len(item.Channels) == 0 {
		c.currentGain = targetGain
		return
	}
	frames := item.Channels[0].Len()
	if rampSamples > frames {
		rampSamples = frames
	}

	for _, ch := range item.Channels {
		data := ch.Data()
		for i := 0; i < rampSamples; i++ {
			g := linearRamp(c.currentGain, targetGain, i, rampSamples)
			data[i] *= float32(g * makeup)
		}
		for i := rampSamples; i < frames; i++ {
			data[i] *= float32(targetGain * makeup)
		}
	}
	c.currentGain = targetGain
}
