package facade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z-e-chan/redfish/bridge"
)

func TestCreateMixGroupPushesCommandAndTracksMaster(t *testing.T) {
	e := New(testConfig())
	master := e.Mixer.CreateMixGroup("master", true)
	require.NotNil(t, master)
	assert.True(t, master.IsMaster())

	got, ok := e.Mixer.GetMaster()
	require.True(t, ok)
	assert.Equal(t, master.Handle(), got.Handle())
}

func TestSetVolumeDBPushesCommandAndCachesValue(t *testing.T) {
	e := New(testConfig())
	g := e.Mixer.CreateMixGroup("sfx", false)
	g.SetVolumeDB(-6)
	assert.Equal(t, -6.0, g.VolumeDB())
}

func TestDispatchMeterMessageUpdatesPeakAndLevel(t *testing.T) {
	e := New(testConfig())
	g := e.Mixer.CreateMixGroup("sfx", false)

	var peakBuf [bridge.MessagePayloadSize]byte
	w := bridge.NewPayloadWriter(peakBuf[:])
	w.PutUint32(g.Handle().Value)
	w.PutFloat32(0.75)
	e.Mixer.dispatchMeterMessage(bridge.Message{Tag: bridge.MessageMixGroupPeak, Payload: peakBuf})

	assert.Equal(t, float32(0.75), g.Peak())
	assert.Equal(t, float32(0), g.Level())
}
