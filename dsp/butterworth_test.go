package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/z-e-chan/redfish/buffer"
)

func TestButterworthLowPassAttenuatesHighFrequency(t *testing.T) {
	sampleRate := 48000.0
	bw := NewButterworth(ButterworthLowPass, 2, sampleRate, 1, 1000)

	frames := 4096
	item := buffer.NewMixItem(1, frames)
	data := item.Channels[0].Data()
	for i := range data {
		data[i] = float32(math.Sin(2 * math.Pi * 12000 * float64(i) / sampleRate))
	}
	before := rms(data)
	bw.Process(item)
	after := rms(data[1000:])
	assert.Greater(t, before/after, 2.0)
}

func TestButterworthNoOpResetsState(t *testing.T) {
	bw := NewButterworth(ButterworthLowPass, 2, 48000, 1, 48000/2)
	item := buffer.NewMixItem(1, 8)
	item.Channels[0].Fill(1)
	bw.Process(item)
	for _, v := range item.Channels[0].Data() {
		assert.Equal(t, float32(1), v)
	}
}

func TestButterworthBypass(t *testing.T) {
	bw := NewButterworth(ButterworthHighPass, 2, 48000, 1, 500)
	bw.SetBypass(true)
	item := buffer.NewMixItem(1, 8)
	item.Channels[0].Fill(0.3)
	bw.Process(item)
	for _, v := range item.Channels[0].Data() {
		assert.Equal(t, float32(0.3), v)
	}
}
