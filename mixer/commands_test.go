package mixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/config"
	"github.com/z-e-chan/redfish/dsp"
)

func TestApplyCommandCreateAndDestroyMixGroup(t *testing.T) {
	sm := newTestMixer()
	h := testHandle(1)

	sm.ApplyCommand(NewCreateMixGroupCommand(h, true))
	_, ok := sm.Group(h)
	require.True(t, ok)

	sm.ApplyCommand(NewDestroyMixGroupCommand(h))
	_, ok = sm.Group(h)
	assert.False(t, ok)
}

func TestApplyCommandSetOutputAndSend(t *testing.T) {
	sm := newTestMixer()
	master := testHandle(1)
	leaf := testHandle(2)
	sm.ApplyCommand(NewCreateMixGroupCommand(master, true))
	sm.ApplyCommand(NewCreateMixGroupCommand(leaf, false))

	sm.ApplyCommand(NewSetMixGroupOutputCommand(leaf, master))
	g, _ := sm.Group(leaf)
	assert.Equal(t, master, g.Output)

	sm.ApplyCommand(NewCreateSendCommand(leaf, 0, master, 0.25))
	assert.NotEqual(t, -1, g.sends[0])
	assert.Equal(t, 0.25, sm.sendPool[g.sends[0]].Amplitude)

	sm.ApplyCommand(NewDestroySendCommand(leaf, 0))
	assert.Equal(t, -1, g.sends[0])
}

func TestApplyCommandCreatePluginCarriesRefAcrossBridge(t *testing.T) {
	sm := newTestMixer()
	h := testHandle(1)
	sm.ApplyCommand(NewCreateMixGroupCommand(h, true))

	cmd := NewCreatePluginCommand(h, 0, PluginGain, config.Default())
	_, isGain := cmd.Ref.(*dsp.Gain)
	require.True(t, isGain)

	sm.ApplyCommand(cmd)
	block := sm.Plugin(h, 0)
	require.NotNil(t, block)
	_, ok := block.(*dsp.Gain)
	assert.True(t, ok)

	sm.ApplyCommand(NewDestroyPluginCommand(h, 0))
	assert.Nil(t, sm.Plugin(h, 0))
}

func TestApplyCommandSetVolumeAndFade(t *testing.T) {
	sm := newTestMixer()
	h := testHandle(1)
	sm.ApplyCommand(NewCreateMixGroupCommand(h, true))

	sm.ApplyCommand(NewSetMixGroupVolumeCommand(h, -12))
	g, _ := sm.Group(h)
	assert.Equal(t, -12.0, g.VolumeDB)

	sm.ApplyCommand(NewFadeMixGroupsCommand([]redfish.Handle{h}, -60, 0, 16))
	assert.True(t, g.fader.Active())
}
