package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/z-e-chan/redfish/buffer"
)

func rms(data []float32) float64 {
	var sum float64
	for _, v := range data {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(data)))
}

func TestBiquadLowPassAttenuatesHighFrequency(t *testing.T) {
	sampleRate := 48000.0
	b := NewBiquad(BiquadLowPass, sampleRate, 1, 1000, 0.707)

	frames := 4096
	item := buffer.NewMixItem(1, frames)
	data := item.Channels[0].Data()
	for i := range data {
		data[i] = float32(math.Sin(2 * math.Pi * 10000 * float64(i) / sampleRate))
	}
	before := rms(data)

	b.Process(item)
	after := rms(data[1000:])

	assert.Greater(t, before/after, 2.0)
}

func TestBiquadHighPassAttenuatesDC(t *testing.T) {
	b := NewBiquad(BiquadHighPass, 48000, 1, 200, 0.707)
	item := buffer.NewMixItem(1, 4000)
	item.Channels[0].Fill(0.5)
	b.Process(item)

	data := item.Channels[0].Data()
	avg := 0.0
	for i := 3000; i < 4000; i++ {
		avg += math.Abs(float64(data[i]))
	}
	avg /= 1000
	assert.Less(t, avg, 0.05)
}

func TestBiquadBypassLeavesUntouched(t *testing.T) {
	b := NewBiquad(BiquadLowPass, 48000, 1, 1000, 0.707)
	b.SetBypass(true)
	item := buffer.NewMixItem(1, 16)
	item.Channels[0].Fill(0.25)
	b.Process(item)
	for _, v := range item.Channels[0].Data() {
		assert.Equal(t, float32(0.25), v)
	}
}
