package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/config"
)

func TestVoicePlaySeedsGainFromInitialAmplitude(t *testing.T) {
	v := NewVoice()
	v.Play(PlayParams{AudioHandle: audioHandle(1), InitialAmplitude: 0.5, PlayCount: 0})

	data := monoData(1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1)
	item := buffer.NewMixItem(1, 40)
	v.FillMixItem(0, 40, data, item)
	assert.Equal(t, 0.5, v.gain.Current())
}

func TestVoicePlayDefaultsInitialAmplitudeToUnity(t *testing.T) {
	v := NewVoice()
	v.Play(PlayParams{AudioHandle: audioHandle(1), PlayCount: 0})
	assert.Equal(t, 1.0, v.gain.Current())
}

func TestVoiceFillMixItemAppliesGainAndPositioning(t *testing.T) {
	v := NewVoice()
	v.Play(PlayParams{AudioHandle: audioHandle(1), StartTime: 0, Pitch: 1, PlayCount: 0, InitialAmplitude: 0.5})
	v.EnablePositioning(48000, 2, config.PanLawMinus3dB)
	require.NotNil(t, v.Positioning())

	data := monoData(1, 1, 1, 1)
	item := buffer.NewMixItem(2, 4)
	info := v.FillMixItem(0, 4, data, item)

	assert.True(t, info.Started)
	for _, sample := range item.Channels[0].Data() {
		assert.LessOrEqual(t, sample, float32(1))
	}
}

func TestVoiceScheduleStopArmsFaderFromCurrentGain(t *testing.T) {
	v := NewVoice()
	v.Play(PlayParams{AudioHandle: audioHandle(1), PlayCount: 0})
	v.ScheduleStop(100)
	assert.True(t, v.fader.Active())
}
