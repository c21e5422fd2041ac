package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/z-e-chan/redfish/buffer"
)

func TestCompressorNoOpBelowThreshold(t *testing.T) {
	c := NewCompressor(48000)
	c.ThresholdDB = 0
	c.RatioToOne = 4

	item := buffer.NewMixItem(1, 64)
	item.Channels[0].Fill(0.01)
	c.Process(item)
	assert.InDelta(t, 0.01, item.Channels[0].Data()[0], 1e-4)
}

func TestCompressorReducesAboveThreshold(t *testing.T) {
	c := NewCompressor(48000)
	c.ThresholdDB = -20
	c.RatioToOne = 4
	c.AttackMS = 0.01

	item := buffer.NewMixItem(1, 256)
	item.Channels[0].Fill(1) // 0 dBFS, well above -20 dB threshold

	c.Process(item)

	last := item.Channels[0].Data()[len(item.Channels[0].Data())-1]
	assert.Less(t, float64(last), 1.0)
}

func TestCompressorMakeupGainAppliedPostReduction(t *testing.T) {
	c := NewCompressor(48000)
	c.RatioToOne = 1 // unity ratio disables reduction
	c.MakeupDB = 6

	item := buffer.NewMixItem(1, 64)
	item.Channels[0].Fill(0.1)
	c.Process(item)

	expected := 0.1 * DBToAmp(6)
	assert.InDelta(t, expected, item.Channels[0].Data()[32], 1e-4)
}

func TestCompressorBypass(t *testing.T) {
	c := NewCompressor(48000)
	c.ThresholdDB = -60
	c.RatioToOne = 10
	c.SetBypass(true)

	item := buffer.NewMixItem(1, 32)
	item.Channels[0].Fill(0.9)
	c.Process(item)
	for _, v := range item.Channels[0].Data() {
		assert.Equal(t, float32(0.9), v)
	}
}
