package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/z-e-chan/redfish/buffer"
)

func TestLimiterNoOpBelowThreshold(t *testing.T) {
	l := NewLimiter(0)
	item := buffer.NewMixItem(1, 16)
	item.Channels[0].Fill(0.1)
	l.Process(item)
	for _, v := range item.Channels[0].Data() {
		assert.Equal(t, float32(0.1), v)
	}
}

func TestLimiterScalesDownToThreshold(t *testing.T) {
	l := NewLimiter(-6) // -6dB threshold
	item := buffer.NewMixItem(1, 16)
	item.Channels[0].Fill(1) // 0 dBFS

	l.Process(item)

	peak := item.AbsoluteMax()
	assert.InDelta(t, DBToAmp(-6), float64(peak), 1e-4)
}

func TestLimiterSilentInputIsNoOp(t *testing.T) {
	l := NewLimiter(-20)
	item := buffer.NewMixItem(1, 16)
	l.Process(item)
	for _, v := range item.Channels[0].Data() {
		assert.Equal(t, float32(0), v)
	}
}

func TestLimiterBypass(t *testing.T) {
	l := NewLimiter(-60)
	l.SetBypass(true)
	item := buffer.NewMixItem(1, 16)
	item.Channels[0].Fill(1)
	l.Process(item)
	for _, v := range item.Channels[0].Data() {
		assert.Equal(t, float32(1), v)
	}
}
