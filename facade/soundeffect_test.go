package facade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/bridge"
)

func TestPlayPushesPlayVoiceCommandForSingleVariation(t *testing.T) {
	e := New(testConfig())
	audio := redfish.Handle{Kind: redfish.KindAudioData, Value: 1}
	sfx := e.NewSoundEffect().AddVariation(Variation{AudioHandle: audio})

	sfx.Play()

	cmd, ok := e.commands.Pop()
	require.True(t, ok)
	assert.Equal(t, bridge.CommandPlayVoice, cmd.Tag)
}

func TestPlayWithNoVariationsPushesNothing(t *testing.T) {
	e := New(testConfig())
	sfx := e.NewSoundEffect()
	sfx.Play()

	_, ok := e.commands.Pop()
	assert.False(t, ok)
}

func TestSmartShuffleNeverRepeatsWithinHistoryWindow(t *testing.T) {
	sfx := newSoundEffect(New(testConfig()), redfish.Handle{Kind: redfish.KindSoundEffect, Value: 1})
	for i := 0; i < 4; i++ {
		sfx.variations = append(sfx.variations, Variation{AudioHandle: redfish.Handle{Kind: redfish.KindAudioData, Value: uint32(i + 1)}})
	}

	var picks []int
	for i := 0; i < 20; i++ {
		sfx.mu.Lock()
		idx := sfx.selectVariationLocked()
		sfx.mu.Unlock()
		picks = append(picks, idx)
	}

	historySize := len(sfx.variations) / 2
	for i := historySize; i < len(picks); i++ {
		for j := i - historySize; j < i; j++ {
			assert.NotEqual(t, picks[j], picks[i], "variation repeated within the history window")
		}
	}
}

func TestRoundRobinCyclesThroughEveryVariation(t *testing.T) {
	sfx := newSoundEffect(New(testConfig()), redfish.Handle{Kind: redfish.KindSoundEffect, Value: 1})
	sfx.rule = RoundRobin
	for i := 0; i < 3; i++ {
		sfx.variations = append(sfx.variations, Variation{})
	}

	for round := 0; round < 2; round++ {
		for i := 0; i < 3; i++ {
			sfx.mu.Lock()
			idx := sfx.selectVariationLocked()
			sfx.mu.Unlock()
			assert.Equal(t, i, idx)
		}
	}
}

func TestStopPushesStopVoiceCommandScopedToSoundEffect(t *testing.T) {
	e := New(testConfig())
	sfx := e.NewSoundEffect()
	sfx.Stop()

	cmd, ok := e.commands.Pop()
	require.True(t, ok)
	assert.Equal(t, bridge.CommandStopVoice, cmd.Tag)
}
