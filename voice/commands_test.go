package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/dsp"
)

func TestApplyCommandPlayVoiceNonPositional(t *testing.T) {
	vs := newTestVoiceSet(2)
	cmd := NewPlayVoiceCommand(PlayParams{
		AudioHandle: audioHandle(1),
		StartTime:   0,
		Pitch:       1,
		PlayCount:   0,
		SoundEffect: soundEffectHandle(5),
		MixGroup:    redfish.Handle{Kind: redfish.KindMixGroup, Value: 2},
	})

	vs.ApplyCommand(cmd, 48000, 2)
	require.Equal(t, 1, vs.ActiveCount())
	assert.Equal(t, soundEffectHandle(5), vs.voices[0].SoundEffectHandle())
	assert.Nil(t, vs.voices[0].Positioning())
}

func TestApplyCommandPlayVoicePositionalSeedsDistanceParams(t *testing.T) {
	vs := newTestVoiceSet(2)
	dp := dsp.DistanceParams{MinDistance: 0, MaxDistance: 10, Curve: 2, MaxAttenuationDB: -24, MaxHPFCutoffHz: 100, MaxLPFCutoffHz: 8000, PanAngle: 0.25}
	cmd := NewPlayPositionalVoiceCommand(PlayParams{AudioHandle: audioHandle(1), PlayCount: 0}, dp)

	vs.ApplyCommand(cmd, 48000, 2)
	require.Equal(t, 1, vs.ActiveCount())
	require.NotNil(t, vs.voices[0].Positioning())
}

func TestApplyCommandStopVoiceAll(t *testing.T) {
	vs := newTestVoiceSet(2)
	require.True(t, vs.CreateVoice(PlayParams{AudioHandle: audioHandle(1), PlayCount: 0}))

	vs.ApplyCommand(NewStopVoiceCommand(StopAll, redfish.InvalidHandle), 48000, 2)
	assert.True(t, vs.voices[0].Done())
}

func TestApplyCommandStopVoiceBySoundEffect(t *testing.T) {
	vs := newTestVoiceSet(2)
	se := soundEffectHandle(4)
	require.True(t, vs.CreateVoice(PlayParams{AudioHandle: audioHandle(1), SoundEffect: se, PlayCount: 0}))

	vs.ApplyCommand(NewStopVoiceCommand(StopBySoundEffect, se), 48000, 2)
	assert.True(t, vs.voices[0].Done())
}

func TestApplyCommandFadeVoiceScheduled(t *testing.T) {
	vs := newTestVoiceSet(2)
	se := soundEffectHandle(6)
	require.True(t, vs.CreateVoice(PlayParams{AudioHandle: audioHandle(1), SoundEffect: se, PlayCount: 0}))

	vs.ApplyCommand(NewFadeVoiceCommand(se, 0, 16, 0, false), 48000, 2)
	assert.True(t, vs.voices[0].fader.Active())
}

func TestApplyCommandFadeVoiceImmediateAmplitude(t *testing.T) {
	vs := newTestVoiceSet(2)
	se := soundEffectHandle(8)
	require.True(t, vs.CreateVoice(PlayParams{AudioHandle: audioHandle(1), SoundEffect: se, PlayCount: 0}))

	vs.ApplyCommand(NewSetVoiceAmplitudeCommand(se, 0.25), 48000, 2)

	item := buffer.NewMixItem(1, 64)
	for _, ch := range item.Channels {
		ch.Fill(1)
	}
	vs.voices[0].gain.Process(item)
	assert.InDelta(t, float32(0.25), item.Channels[0].Data()[63], 1e-4)
}
