package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/z-e-chan/redfish/buffer"
)

func TestConvolverBypassesWithNoIRLoaded(t *testing.T) {
	c := NewConvolver(64)
	item := buffer.NewMixItem(1, 64)
	item.Channels[0].Fill(0.5)
	c.Process(item)
	for _, v := range item.Channels[0].Data() {
		assert.Equal(t, float32(0.5), v)
	}
}

func TestConvolverIdentityIRPassesSignalThrough(t *testing.T) {
	c := NewConvolver(64)
	c.LoadIR(0, []float32{1}, 1) // single-tap identity IR
	c.SetWet(1)

	item := buffer.NewMixItem(1, 64)
	data := item.Channels[0].Data()
	data[0] = 1

	c.Process(item)

	require.Len(t, data, 64)
	assert.InDelta(t, 1, data[0], 1e-3)
}

func TestConvolverLoadAndClearIR(t *testing.T) {
	c := NewConvolver(32)
	c.LoadIR(0, []float32{1, 0.5, 0.25}, 1)
	assert.True(t, c.hasIR())
	c.ClearIR(0)
	assert.False(t, c.hasIR())
}

func TestConvolverBypassFlag(t *testing.T) {
	c := NewConvolver(32)
	c.LoadIR(0, []float32{1}, 1)
	c.SetBypass(true)
	item := buffer.NewMixItem(1, 32)
	item.Channels[0].Fill(0.3)
	c.Process(item)
	for _, v := range item.Channels[0].Data() {
		assert.Equal(t, float32(0.3), v)
	}
}
