package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/datacache"
)

func monoData(samples ...float32) *datacache.AudioData {
	return datacache.NewAudioData("test", samples, 1)
}

func TestBaseVoiceFillsFromStartTime(t *testing.T) {
	var v BaseVoice
	v.Play(PlayParams{AudioHandle: redfish.Handle{Kind: redfish.KindAudioData, Value: 1}, StartTime: 2, Pitch: 1, PlayCount: 1})

	data := monoData(1, 2, 3, 4)
	item := buffer.NewMixItem(1, 8)
	info := v.FillMixItem(0, 8, data, item)

	require.True(t, info.Started)
	assert.Equal(t, []float32{0, 0, 1, 2, 3, 4, 0, 0}, item.Channels[0].Data())
}

func TestBaseVoiceLoopsWhenPlayCountZero(t *testing.T) {
	var v BaseVoice
	v.Play(PlayParams{AudioHandle: redfish.Handle{Kind: redfish.KindAudioData, Value: 1}, StartTime: 0, Pitch: 1, PlayCount: 0})

	data := monoData(1, 2)
	item := buffer.NewMixItem(1, 5)
	info := v.FillMixItem(0, 5, data, item)

	assert.False(t, info.Done)
	assert.True(t, info.Looped)
	assert.Equal(t, []float32{1, 2, 1, 2, 1}, item.Channels[0].Data())
}

func TestBaseVoiceDoneAfterFinitePlayCount(t *testing.T) {
	var v BaseVoice
	v.Play(PlayParams{AudioHandle: redfish.Handle{Kind: redfish.KindAudioData, Value: 1}, StartTime: 0, Pitch: 1, PlayCount: 1})

	data := monoData(1, 2)
	item := buffer.NewMixItem(1, 4)
	info := v.FillMixItem(0, 4, data, item)

	assert.True(t, info.Done)
	assert.True(t, v.Done())
}

func TestBaseVoiceStopMarksDone(t *testing.T) {
	var v BaseVoice
	v.Play(PlayParams{AudioHandle: redfish.Handle{Kind: redfish.KindAudioData, Value: 1}, PlayCount: 0})
	assert.False(t, v.Done())
	v.Stop()
	assert.True(t, v.Done())
}

func TestBaseVoiceNilDataMarksDone(t *testing.T) {
	var v BaseVoice
	v.Play(PlayParams{AudioHandle: redfish.Handle{Kind: redfish.KindAudioData, Value: 1}})
	item := buffer.NewMixItem(1, 4)
	info := v.FillMixItem(0, 4, nil, item)
	assert.True(t, info.Done)
}

func TestBaseVoicePitchResamplesNearestNeighbour(t *testing.T) {
	var v BaseVoice
	v.Play(PlayParams{AudioHandle: redfish.Handle{Kind: redfish.KindAudioData, Value: 1}, StartTime: 0, Pitch: 2, PlayCount: 1})

	data := monoData(10, 20, 30, 40)
	item := buffer.NewMixItem(1, 2)
	info := v.FillMixItem(0, 2, data, item)

	assert.True(t, info.Done)
	assert.Equal(t, []float32{10, 30}, item.Channels[0].Data())
}
