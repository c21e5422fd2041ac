package facade

import (
	"sync"

	"github.com/google/uuid"

	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/bridge"
	"github.com/z-e-chan/redfish/music"
)

// Music is the control-side facade over the cue/transition/stinger
// sequencer (spec §6 "Music: create/destroy cue, create/destroy
// transition, create/destroy stinger, play(transition),
// play(user_data), play_stinger, stop, fade_out_and_stop; read-outs
// current cue name/handle, meter, tempo, bar, beat"). Like Mixer, it
// mints handles here and mirrors audio-thread read-outs from messages,
// never reaching into music.MusicManager directly.
type Music struct {
	engine *Engine

	cueAllocator        *redfish.HandleAllocator
	transitionAllocator *redfish.HandleAllocator
	stingerAllocator    *redfish.HandleAllocator

	mu          sync.RWMutex
	cueNames    map[uint32]string
	currentCue  redfish.Handle
	meter       music.Meter
	tempo       float64
	bar, beat   int
}

func newMusic(e *Engine) *Music {
	return &Music{
		engine:              e,
		cueAllocator:        redfish.NewHandleAllocator(redfish.KindCue),
		transitionAllocator: redfish.NewHandleAllocator(redfish.KindTransition),
		stingerAllocator:    redfish.NewHandleAllocator(redfish.KindStinger),
		cueNames:            make(map[uint32]string),
	}
}

// CreateCue mints a handle and installs rec under it via
// CommandCreateCue (spec §6 "create_cue"). An empty name mints a
// UUID-based default, so callers that only care about the handle don't
// have to invent one.
func (m *Music) CreateCue(name string, layers []music.Layer, meter music.Meter, tempo, gainDB float64) redfish.Handle {
	if name == "" {
		name = "cue-" + uuid.New().String()
	}
	h := m.cueAllocator.Next()

	var rec music.CueRecord
	rec.Handle = h
	rec.NumLayers = len(layers)
	copy(rec.Layers[:], layers)
	rec.Meter = meter
	rec.Tempo = tempo
	rec.GainDB = gainDB

	m.mu.Lock()
	m.cueNames[h.Value] = name
	m.mu.Unlock()

	m.engine.pushCommand(music.NewCreateCueCommand(rec), "create-cue")
	return h
}

// DestroyCue removes a cue by handle.
func (m *Music) DestroyCue(h redfish.Handle) {
	m.mu.Lock()
	delete(m.cueNames, h.Value)
	m.mu.Unlock()
	m.engine.pushCommand(music.NewDestroyCueCommand(h), "destroy-cue")
}

// CreateTransition mints a handle and installs rec, resolving rec's
// Handle field for the caller (spec §6 "create_transition").
func (m *Music) CreateTransition(rec music.TransitionRecord) redfish.Handle {
	h := m.transitionAllocator.Next()
	rec.Handle = h
	m.engine.pushCommand(music.NewCreateTransitionCommand(rec), "create-transition")
	return h
}

// DestroyTransition removes a transition by handle.
func (m *Music) DestroyTransition(h redfish.Handle) {
	m.engine.pushCommand(music.NewDestroyTransitionCommand(h), "destroy-transition")
}

// CreateStinger mints a handle and installs rec.
func (m *Music) CreateStinger(rec music.StingerRecord) redfish.Handle {
	h := m.stingerAllocator.Next()
	rec.Handle = h
	m.engine.pushCommand(music.NewCreateStingerCommand(rec), "create-stinger")
	return h
}

// DestroyStinger removes a stinger by handle.
func (m *Music) DestroyStinger(h redfish.Handle) {
	m.engine.pushCommand(music.NewDestroyStingerCommand(h), "destroy-stinger")
}

// Play queues transition for playback at its own Sync (spec §6
// "play(transition)").
func (m *Music) Play(transition redfish.Handle) {
	m.engine.pushCommand(music.NewPlayTransitionCommand(transition), "play-transition")
}

// PlayByCondition queues whichever registered transition's Condition
// first matches userData (spec §6 "play(user_data)").
func (m *Music) PlayByCondition(userData [16]byte) {
	m.engine.pushCommand(music.NewPlayTransitionByConditionCommand(userData), "play-transition-by-condition")
}

// PlayStinger overlays stinger on the currently playing cue.
func (m *Music) PlayStinger(stinger redfish.Handle) {
	m.engine.pushCommand(music.NewPlayStingerCommand(stinger), "play-stinger")
}

// Stop halts music immediately.
func (m *Music) Stop() {
	m.engine.pushCommand(music.NewStopMusicCommand(), "stop-music")
}

// FadeOutAndStop ramps the current cue to silence and stops, using
// scheduleSync to resolve a start time and durationSync to resolve the
// fade length (spec §6 "fade_out_and_stop(schedule_sync,
// duration_sync)").
func (m *Music) FadeOutAndStop(scheduleSync, durationSync music.Sync) {
	m.engine.pushCommand(music.NewFadeOutAndStopMusicCommand(scheduleSync, durationSync), "fade-out-and-stop-music")
}

// CurrentCueHandle returns the most recently observed playing cue
// handle, the zero handle if none (spec §6 "current cue handle").
func (m *Music) CurrentCueHandle() redfish.Handle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentCue
}

// CurrentCueName resolves CurrentCueHandle back to the name it was
// created with, empty if unknown.
func (m *Music) CurrentCueName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cueNames[m.currentCue.Value]
}

// Meter returns the most recently observed time signature.
func (m *Music) Meter() music.Meter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.meter
}

// Tempo returns the most recently observed tempo in BPM.
func (m *Music) Tempo() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tempo
}

// BarBeat returns the most recently observed bar and beat counters.
func (m *Music) BarBeat() (bar, beat int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bar, m.beat
}

// cachedTempoMeter is the unexported read Engine.resolveSyncDuration
// uses; it is the same pair as Tempo/Meter, fetched in one lock to
// avoid a torn read between the two.
func (m *Music) cachedTempoMeter() (float64, music.Meter) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tempo, m.meter
}

// dispatchMessage updates Music's cached read-outs from a drained
// music-related Message, and fires the matching Event callback, if
// registered.
func (m *Music) dispatchMessage(msg bridge.Message, event *Event) {
	r := bridge.NewPayloadReader(msg.Payload[:])
	switch msg.Tag {
	case bridge.MessageMusicTransitioned:
		h := r.Uint32()
		m.mu.Lock()
		if h == 0 {
			m.currentCue = redfish.InvalidHandle
		} else {
			m.currentCue = redfish.Handle{Kind: redfish.KindCue, Value: h}
		}
		m.mu.Unlock()
	case bridge.MessageMusicFinished:
		m.mu.Lock()
		m.currentCue = redfish.InvalidHandle
		m.mu.Unlock()
		event.fireMusicFinished()
	case bridge.MessageTempoChanged:
		tempo := r.Float64()
		m.mu.Lock()
		m.tempo = tempo
		m.mu.Unlock()
	case bridge.MessageMeterChanged:
		top := int(r.Uint32())
		bottom := int(r.Uint32())
		m.mu.Lock()
		m.meter = music.Meter{Top: top, Bottom: bottom}
		m.mu.Unlock()
	case bridge.MessageBarChanged:
		bar := int(r.Uint32())
		beat := int(r.Uint32())
		m.mu.Lock()
		m.bar, m.beat = bar, beat
		m.mu.Unlock()
		event.fireOnBar(bar)
	case bridge.MessageBeatChanged:
		bar := int(r.Uint32())
		beat := int(r.Uint32())
		m.mu.Lock()
		m.bar, m.beat = bar, beat
		m.mu.Unlock()
		event.fireOnBeat(beat)
	}
}
