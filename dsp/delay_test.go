package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/z-e-chan/redfish/buffer"
)

func TestDelayProducesDelayedTap(t *testing.T) {
	sampleRate := 1000.0
	d := NewDelay(sampleRate, 1000, 1) // up to 1000 samples of delay
	d.SetDelayMS(5)                    // 5 samples at 1kHz
	d.SetFeedback(0)

	item := buffer.NewMixItem(1, 20)
	data := item.Channels[0].Data()
	data[0] = 1 // single impulse

	d.Process(item)

	require.Len(t, data, 20)
	assert.Equal(t, float32(1), data[5])
	assert.Equal(t, float32(0), data[0])
	assert.Equal(t, float32(0), data[4])
}

func TestDelayFeedbackClamped(t *testing.T) {
	d := NewDelay(1000, 1000, 1)
	d.SetFeedback(5)
	assert.Equal(t, 1.0, d.feedback)
	d.SetFeedback(-5)
	assert.Equal(t, 0.0, d.feedback)
}

func TestDelayRunsEvenOnSilentInputForFeedbackTail(t *testing.T) {
	d := NewDelay(1000, 1000, 1)
	d.SetDelayMS(2)
	d.SetFeedback(0.5)

	item := buffer.NewMixItem(1, 4)
	item.Channels[0].Data()[0] = 1
	d.Process(item)

	// second, silent block should still emit the decaying feedback tail
	item2 := buffer.NewMixItem(1, 4)
	d.Process(item2)
	assert.NotEqual(t, float32(0), item2.Channels[0].Data()[0])
}

func TestDelayBypass(t *testing.T) {
	d := NewDelay(1000, 1000, 1)
	d.SetBypass(true)
	item := buffer.NewMixItem(1, 4)
	item.Channels[0].Fill(0.42)
	d.Process(item)
	for _, v := range item.Channels[0].Data() {
		assert.Equal(t, float32(0.42), v)
	}
}
