package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/config"
)

func TestGainSkipsWhenBothEndpointsUnity(t *testing.T) {
	g := NewGain()
	item := buffer.NewMixItem(1, 8)
	item.Channels[0].Fill(1)
	g.Process(item)
	for _, v := range item.Channels[0].Data() {
		assert.Equal(t, float32(1), v)
	}
}

func TestGainRampsThenHolds(t *testing.T) {
	g := NewGain()
	g.SetTarget(0.5)
	item := buffer.NewMixItem(1, config.GainRampSamples+10)
	item.Channels[0].Fill(1)
	g.Process(item)

	data := item.Channels[0].Data()
	assert.InDelta(t, 1.0, data[0], 1e-6)
	assert.InDelta(t, 0.5, data[config.GainRampSamples], 1e-6)
	assert.InDelta(t, 0.5, data[len(data)-1], 1e-6)
	assert.Equal(t, 0.5, g.Current())
}

func TestGainBypassLeavesSamplesUntouched(t *testing.T) {
	g := NewGain()
	g.SetTarget(0.1)
	g.SetBypass(true)
	item := buffer.NewMixItem(1, 4)
	item.Channels[0].Fill(1)
	g.Process(item)
	for _, v := range item.Channels[0].Data() {
		assert.Equal(t, float32(1), v)
	}
}
