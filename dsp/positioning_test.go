package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/config"
)

func TestPositioningNearFieldIsFullVolume(t *testing.T) {
	p := NewPositioning(48000, 2, config.PanLawMinus3dB)
	p.SetParams(DistanceParams{
		MinDistance:      0,
		MaxDistance:      100,
		Curve:            config.DistanceLinear,
		MaxAttenuationDB: -40,
		MaxHPFCutoffHz:   2000,
		MaxLPFCutoffHz:   500,
	})
	p.Update(0)

	item := buffer.NewMixItem(2, 512)
	item.Channels[0].Fill(1)
	item.Channels[1].Fill(1)
	p.Process(item)

	// Gain and filters pass the signal unchanged; the centred -3 dB pan
	// leaves cos(pi/4) on each channel.
	assert.InDelta(t, math.Sqrt(0.5), item.Channels[0].Data()[len(item.Channels[0].Data())-1], 0.05)
}

func TestPositioningFarFieldAttenuates(t *testing.T) {
	p := NewPositioning(48000, 2, config.PanLawMinus3dB)
	p.SetParams(DistanceParams{
		MinDistance:      0,
		MaxDistance:      100,
		Curve:            config.DistanceLinear,
		MaxAttenuationDB: -40,
		MaxHPFCutoffHz:   2000,
		MaxLPFCutoffHz:   500,
	})
	p.Update(100)

	item := buffer.NewMixItem(2, 512)
	item.Channels[0].Fill(1)
	item.Channels[1].Fill(1)
	p.Process(item)

	peak := item.AbsoluteMax()
	assert.Less(t, float64(peak), 1.0)
}

func TestPositioningBypass(t *testing.T) {
	p := NewPositioning(48000, 2, config.PanLawMinus3dB)
	p.SetBypass(true)
	item := buffer.NewMixItem(2, 16)
	item.Channels[0].Fill(0.7)
	item.Channels[1].Fill(0.7)
	p.Process(item)
	assert.Equal(t, float32(0.7), item.Channels[0].Data()[0])
}

func TestNormalizedDistanceCurves(t *testing.T) {
	p := NewPositioning(48000, 2, config.PanLawMinus3dB)
	p.SetParams(DistanceParams{MinDistance: 0, MaxDistance: 100, Curve: config.DistanceEqualPower})
	assert.InDelta(t, 0.5, p.normalizedDistance(25), 1e-6) // sqrt(0.25) = 0.5

	p.SetParams(DistanceParams{MinDistance: 0, MaxDistance: 100, Curve: config.DistanceQuadratic})
	assert.InDelta(t, 0.25, p.normalizedDistance(50), 1e-6) // 0.5^2 = 0.25
}
