package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/bridge"
	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/config"
	"github.com/z-e-chan/redfish/datacache"
)

func newTestVoiceSet(capacity int) *VoiceSet {
	return NewVoiceSet(capacity, config.PanLawMinus3dB)
}

func audioHandle(v uint32) redfish.Handle {
	return redfish.Handle{Kind: redfish.KindAudioData, Value: v}
}

func soundEffectHandle(v uint32) redfish.Handle {
	return redfish.Handle{Kind: redfish.KindSoundEffect, Value: v}
}

func TestVoiceSetCreateVoiceRespectsCapacity(t *testing.T) {
	vs := newTestVoiceSet(1)
	require.True(t, vs.CreateVoice(PlayParams{AudioHandle: audioHandle(1)}))
	assert.False(t, vs.CreateVoice(PlayParams{AudioHandle: audioHandle(2)}))
	assert.Equal(t, 1, vs.ActiveCount())
}

func TestVoiceSetProcessSwapRemovesDoneVoices(t *testing.T) {
	vs := newTestVoiceSet(4)
	refs := datacache.NewReferences(4)
	data := monoData(1, 2)
	refs.Set(audioHandle(1), data)

	require.True(t, vs.CreateVoice(PlayParams{
		AudioHandle: audioHandle(1),
		StartTime:   0,
		Pitch:       1,
		PlayCount:   1,
		SoundEffect: soundEffectHandle(7),
		MixGroup:    redfish.Handle{Kind: redfish.KindMixGroup, Value: 1},
	}))

	pool := buffer.NewPool(4, 1, 4)
	messages := bridge.NewMessageQueue(8)
	vs.Process(0, 4, refs, pool, messages)

	assert.Equal(t, 0, vs.ActiveCount())
}

func TestVoiceSetStopBySoundEffectHandle(t *testing.T) {
	vs := newTestVoiceSet(2)
	se := soundEffectHandle(1)
	require.True(t, vs.CreateVoice(PlayParams{AudioHandle: audioHandle(1), SoundEffect: se, PlayCount: 0}))

	vs.StopBySoundEffectHandle(se)
	assert.True(t, vs.voices[0].Done())
}

func TestVoiceSetStopByAudioHandleUsedForDeferredDelete(t *testing.T) {
	vs := newTestVoiceSet(2)
	ah := audioHandle(9)
	require.True(t, vs.CreateVoice(PlayParams{AudioHandle: ah, PlayCount: 0}))

	vs.StopByAudioHandle(ah)
	assert.True(t, vs.voices[0].Done())
}

func TestVoiceSetFadeBySoundEffectHandleArmsFader(t *testing.T) {
	vs := newTestVoiceSet(2)
	se := soundEffectHandle(3)
	require.True(t, vs.CreateVoice(PlayParams{AudioHandle: audioHandle(1), SoundEffect: se, PlayCount: 0}))

	vs.FadeBySoundEffectHandle(se, 0, 16, 0, false)
	assert.True(t, vs.voices[0].fader.Active())
}
