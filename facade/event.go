package facade

import (
	"sync"

	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/bridge"
)

// Event is the control-side callback registry spec §6 names:
// "register_on_bar, register_on_beat, register_on_music_finished,
// user-data pointer". Callbacks are invoked synchronously from
// whichever goroutine calls Engine.Poll (or the Start pump), never
// from the audio thread.
type Event struct {
	mu               sync.RWMutex
	onBar            []func(bar int)
	onBeat           []func(beat int)
	onMusicFinished  []func()
	userData         [16]byte
	lastVoiceStarted redfish.Handle
	lastVoiceStopped redfish.Handle
}

func newEvent() *Event {
	return &Event{}
}

// RegisterOnBar adds a callback invoked whenever the bar counter
// advances.
func (e *Event) RegisterOnBar(fn func(bar int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onBar = append(e.onBar, fn)
}

// RegisterOnBeat adds a callback invoked whenever the beat counter
// advances.
func (e *Event) RegisterOnBeat(fn func(beat int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onBeat = append(e.onBeat, fn)
}

// RegisterOnMusicFinished adds a callback invoked when the active cue
// stops with no follow-up queued.
func (e *Event) RegisterOnMusicFinished(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onMusicFinished = append(e.onMusicFinished, fn)
}

// SetUserData installs the opaque 16-byte payload play(user_data)
// transitions are matched against (spec §3 TransitionCondition.Payload).
func (e *Event) SetUserData(data [16]byte) {
	e.mu.Lock()
	e.userData = data
	e.mu.Unlock()
}

// UserData returns the most recently installed user-data payload.
func (e *Event) UserData() [16]byte {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.userData
}

// LastVoiceStarted returns the handle of the most recently reported
// MessageVoiceStarted.
func (e *Event) LastVoiceStarted() redfish.Handle {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastVoiceStarted
}

// LastVoiceStopped returns the handle of the most recently reported
// MessageVoiceStopped.
func (e *Event) LastVoiceStopped() redfish.Handle {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastVoiceStopped
}

func (e *Event) dispatchVoiceMessage(msg bridge.Message) {
	r := bridge.NewPayloadReader(msg.Payload[:])
	v := r.Uint32()
	h := redfish.InvalidHandle
	if v != 0 {
		h = redfish.Handle{Kind: redfish.KindSoundEffect, Value: v}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	switch msg.Tag {
	case bridge.MessageVoiceStarted:
		e.lastVoiceStarted = h
	case bridge.MessageVoiceStopped:
		e.lastVoiceStopped = h
	}
}

func (e *Event) fireOnBar(bar int) {
	e.mu.RLock()
	callbacks := append([]func(int){}, e.onBar...)
	e.mu.RUnlock()
	for _, fn := range callbacks {
		fn(bar)
	}
}

func (e *Event) fireOnBeat(beat int) {
	e.mu.RLock()
	callbacks := append([]func(int){}, e.onBeat...)
	e.mu.RUnlock()
	for _, fn := range callbacks {
		fn(beat)
	}
}

func (e *Event) fireMusicFinished() {
	e.mu.RLock()
	callbacks := append([]func(){}, e.onMusicFinished...)
	e.mu.RUnlock()
	for _, fn := range callbacks {
		fn()
	}
}
