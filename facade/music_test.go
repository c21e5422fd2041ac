package facade

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/z-e-chan/redfish/bridge"
	"github.com/z-e-chan/redfish/music"
)

func TestCreateCueTracksNameAndMintsHandle(t *testing.T) {
	e := New(testConfig())
	h := e.Music.CreateCue("theme", nil, music.Meter{Top: 4, Bottom: 4}, 120, 0)
	assert.True(t, h.Valid())

	var buf [bridge.MessagePayloadSize]byte
	bridge.NewPayloadWriter(buf[:]).PutUint32(h.Value)
	e.Music.dispatchMessage(bridge.Message{Tag: bridge.MessageMusicTransitioned, Payload: buf}, e.Event)

	assert.Equal(t, h, e.Music.CurrentCueHandle())
	assert.Equal(t, "theme", e.Music.CurrentCueName())
}

func TestDispatchMessageUpdatesTempoMeterAndBarBeat(t *testing.T) {
	e := New(testConfig())

	var tempoBuf [bridge.MessagePayloadSize]byte
	bridge.NewPayloadWriter(tempoBuf[:]).PutFloat64(128)
	e.Music.dispatchMessage(bridge.Message{Tag: bridge.MessageTempoChanged, Payload: tempoBuf}, e.Event)
	assert.Equal(t, 128.0, e.Music.Tempo())

	var meterBuf [bridge.MessagePayloadSize]byte
	w := bridge.NewPayloadWriter(meterBuf[:])
	w.PutUint32(3)
	w.PutUint32(4)
	e.Music.dispatchMessage(bridge.Message{Tag: bridge.MessageMeterChanged, Payload: meterBuf}, e.Event)
	assert.Equal(t, music.Meter{Top: 3, Bottom: 4}, e.Music.Meter())

	var barBuf [bridge.MessagePayloadSize]byte
	w = bridge.NewPayloadWriter(barBuf[:])
	w.PutUint32(2)
	w.PutUint32(1)
	e.Music.dispatchMessage(bridge.Message{Tag: bridge.MessageBarChanged, Payload: barBuf}, e.Event)
	bar, beat := e.Music.BarBeat()
	assert.Equal(t, 2, bar)
	assert.Equal(t, 1, beat)
}

func TestMusicFinishedClearsCurrentCueAndFiresCallback(t *testing.T) {
	e := New(testConfig())
	fired := false
	e.Event.RegisterOnMusicFinished(func() { fired = true })

	e.Music.dispatchMessage(bridge.Message{Tag: bridge.MessageMusicFinished}, e.Event)

	assert.True(t, fired)
	assert.False(t, e.Music.CurrentCueHandle().Valid())
}
