package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z-e-chan/redfish/bridge"
)

func TestLoadPushesLoadAudioDataCommand(t *testing.T) {
	commands := bridge.NewCommandQueue(8)
	a := New(4, commands)

	h, err := a.Load([]float32{0, 0, 0, 0}, 1, "explosion")
	require.NoError(t, err)
	require.True(t, h.Valid())

	cmd, ok := commands.Pop()
	require.True(t, ok)
	assert.Equal(t, bridge.CommandLoadAudioData, cmd.Tag)
	assert.NotNil(t, cmd.Ref)
}

func TestLoadReturnsErrorWhenCacheFull(t *testing.T) {
	commands := bridge.NewCommandQueue(8)
	a := New(1, commands)

	_, err := a.Load([]float32{0}, 1, "a")
	require.NoError(t, err)
	commands.Pop()

	_, err = a.Load([]float32{0}, 1, "b")
	require.Error(t, err)
}

func TestUnloadPushesCommandOnlyWhenRefCountReachesZero(t *testing.T) {
	commands := bridge.NewCommandQueue(8)
	a := New(4, commands)

	h1, err := a.Load([]float32{0}, 1, "shared")
	require.NoError(t, err)
	commands.Pop()
	h2, err := a.Load([]float32{0}, 1, "shared")
	require.NoError(t, err)
	_, ok := commands.Pop()
	require.True(t, ok)
	assert.Equal(t, h1, h2)

	a.Unload(h1)
	_, ok = commands.Pop()
	assert.False(t, ok, "ref count still above zero, no unload command expected")

	a.Unload(h2)
	cmd, ok := commands.Pop()
	require.True(t, ok)
	assert.Equal(t, bridge.CommandUnloadAudioData, cmd.Tag)
}

func TestHandleAssetDeleteMessageFreesTheSlot(t *testing.T) {
	commands := bridge.NewCommandQueue(8)
	a := New(4, commands)

	h, err := a.Load([]float32{0}, 1, "explosion")
	require.NoError(t, err)
	commands.Pop()
	assert.Equal(t, 1, a.Len())

	var buf [bridge.MessagePayloadSize]byte
	bridge.NewPayloadWriter(buf[:]).PutUint32(h.Value)
	a.HandleAssetDeleteMessage(bridge.Message{Tag: bridge.MessageAssetDelete, Payload: buf})

	assert.Equal(t, 0, a.Len())
}

func TestDecodeFileRejectsUnsupportedExtension(t *testing.T) {
	a := New(4, bridge.NewCommandQueue(8))
	_, err := a.LoadFile("sound.ogg")
	assert.Error(t, err)
}
