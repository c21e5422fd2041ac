package music

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z-e-chan/redfish/bridge"
	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/config"
	"github.com/z-e-chan/redfish/datacache"
)

// TestMusicManagerPlayTransitionReportsCurrentCueHandle covers spec §8's
// round-trip property: "authoring a cue, playing it, and reading
// current_cue_handle back after first-window processing yields the
// same handle."
func TestMusicManagerPlayTransitionReportsCurrentCueHandle(t *testing.T) {
	cfg := config.Default()
	cfg.MaxCues, cfg.MaxTransitions, cfg.MaxStingers, cfg.MaxCueLayers = 8, 8, 8, 4
	m := NewMusicManager(cfg)

	refs := datacache.NewReferences(4)
	refs.Set(audioDataHandle(1), monoSourceOfLength(96000))

	cue := CueRecord{
		Handle:    cueHandle(1),
		NumLayers: 1,
		Layers:    [maxCueLayers]Layer{{AudioHandle: audioDataHandle(1), MixGroup: mixGroupHandle(1)}},
		Meter:     Meter{Top: 4, Bottom: 4},
		Tempo:     120,
	}
	transition := TransitionRecord{Handle: transitionHandle(1), CueHandle: cue.Handle, Sync: NewMusicalSync(SyncCut, 1, ReferenceBar), PlayCount: 1}

	m.ApplyCommand(NewCreateCueCommand(cue), 0)
	m.ApplyCommand(NewCreateTransitionCommand(transition), 0)
	m.ApplyCommand(NewPlayTransitionCommand(transition.Handle), 0)

	pool := buffer.NewPool(4, cfg.Channels, cfg.BlockSize)
	messages := bridge.NewMessageQueue(16)
	m.Process(0, cfg.BlockSize, refs, pool, messages)

	require.True(t, m.IsPlaying())
	assert.Equal(t, cue.Handle, m.CurrentCueHandle())
}

func TestMusicManagerStopMusicCommand(t *testing.T) {
	cfg := config.Default()
	m := NewMusicManager(cfg)

	refs := datacache.NewReferences(4)
	refs.Set(audioDataHandle(1), monoSourceOfLength(96000))

	cue := CueRecord{
		Handle:    cueHandle(1),
		NumLayers: 1,
		Layers:    [maxCueLayers]Layer{{AudioHandle: audioDataHandle(1), MixGroup: mixGroupHandle(1)}},
		Meter:     Meter{Top: 4, Bottom: 4},
		Tempo:     120,
	}
	transition := TransitionRecord{Handle: transitionHandle(1), CueHandle: cue.Handle, Sync: NewMusicalSync(SyncCut, 1, ReferenceBar), PlayCount: 0}

	m.ApplyCommand(NewCreateCueCommand(cue), 0)
	m.ApplyCommand(NewCreateTransitionCommand(transition), 0)
	m.ApplyCommand(NewPlayTransitionCommand(transition.Handle), 0)

	pool := buffer.NewPool(4, cfg.Channels, cfg.BlockSize)
	messages := bridge.NewMessageQueue(16)
	m.Process(0, cfg.BlockSize, refs, pool, messages)
	require.True(t, m.IsPlaying())

	m.ApplyCommand(NewStopMusicCommand(), int64(cfg.BlockSize))
	assert.False(t, m.sequencer.followUp.Valid())
}
