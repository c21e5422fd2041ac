package voice

import (
	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/bridge"
	"github.com/z-e-chan/redfish/config"
	"github.com/z-e-chan/redfish/datacache"
)

// VoiceSet owns a fixed pool of Voices and fills mix items for every
// active one (spec §4.5). CreateVoice finds a free slot; overflow is a
// silent drop (spec §7 "transient resource exhaustion"). Process walks
// active voices, emitting one MixItem per voice, and swap-removes any
// voice that reported done or stopped.
type VoiceSet struct {
	voices []*Voice
	active int

	panLaw config.PanLaw
}

// NewVoiceSet allocates capacity idle Voices.
func NewVoiceSet(capacity int, panLaw config.PanLaw) *VoiceSet {
	vs := &VoiceSet{voices: make([]*Voice, capacity), panLaw: panLaw}
	for i := range vs.voices {
		vs.voices[i] = NewVoice()
	}
	return vs
}

// CreateVoice claims a free slot and starts playback with p, returning
// false if the pool is exhausted (spec §4.5 "overflow is silent drop").
func (vs *VoiceSet) CreateVoice(p PlayParams) bool {
	if vs.active >= len(vs.voices) {
		return false
	}
	v := vs.voices[vs.active]
	v.Play(p)
	vs.active++
	return true
}

// CreatePositionalVoice is CreateVoice plus EnablePositioning for the
// newly claimed voice, returning it so the caller can seed its distance
// params (spec §4.4 Positioning, §4.5).
func (vs *VoiceSet) CreatePositionalVoice(p PlayParams, sampleRate float64, channels int) *Voice {
	if vs.active >= len(vs.voices) {
		return nil
	}
	v := vs.voices[vs.active]
	v.Play(p)
	v.EnablePositioning(sampleRate, channels, vs.panLaw)
	vs.active++
	return v
}

// Process advances every active voice by one block, appending the
// resulting MixItems into pool and reporting the active voice count
// message (spec §4.5 "emits a ContextNumVoices message").
func (vs *VoiceSet) Process(playhead int64, blockSize int, refs *datacache.References, pool *buffer.Pool, messages *bridge.MessageQueue) {
	i := 0
	for i < vs.active {
		v := vs.voices[i]
		data := refs.Get(v.AudioHandle())

		item := pool.Acquire()
		if item == nil {
			// Pool exhausted this callback; leave remaining voices
			// silent rather than panic (spec §7).
			break
		}
		item.Destination = v.MixGroup().Value

		info := v.FillMixItem(playhead, blockSize, data, item)

		if info.Started {
			pushVoiceStarted(messages, v)
		}
		if info.Done || info.Stopped {
			pushVoiceStopped(messages, v)
			vs.swapRemove(i)
			continue
		}
		i++
	}
	pushNumVoices(messages, vs.active)
}

// swapRemove drops the voice at index i by moving the last active voice
// into its place, matching spec §4.5 "swap-removing done/stopped
// voices" without shifting the whole slice.
func (vs *VoiceSet) swapRemove(i int) {
	last := vs.active - 1
	vs.voices[i], vs.voices[last] = vs.voices[last], vs.voices[i]
	vs.active--
}

// ActiveCount returns the number of currently active voices.
func (vs *VoiceSet) ActiveCount() int { return vs.active }

// activeSlice returns voices currently playing, for group-query helpers.
func (vs *VoiceSet) activeSlice() []*Voice { return vs.voices[:vs.active] }

// StopAll stops every active voice immediately.
func (vs *VoiceSet) StopAll() {
	for _, v := range vs.activeSlice() {
		v.Stop()
	}
}

// StopBySoundEffectHandle stops every voice owned by the given
// sound-effect handle.
func (vs *VoiceSet) StopBySoundEffectHandle(h redfish.Handle) {
	for _, v := range vs.activeSlice() {
		if v.SoundEffectHandle() == h {
			v.Stop()
		}
	}
}

// StopByStingerHandle stops every voice owned by the given stinger
// handle.
func (vs *VoiceSet) StopByStingerHandle(h redfish.Handle) {
	for _, v := range vs.activeSlice() {
		if v.StingerHandle() == h {
			v.Stop()
		}
	}
}

// StopByAudioHandle stops every voice reading from the given AudioData
// handle; used by the deferred-delete path so no voice outlives an
// unloaded asset (spec §4.2, §8 invariant 3).
func (vs *VoiceSet) StopByAudioHandle(h redfish.Handle) {
	for _, v := range vs.activeSlice() {
		if v.AudioHandle() == h {
			v.Stop()
		}
	}
}

// FadeBySoundEffectHandle schedules a fade on every voice owned by the
// given sound-effect handle.
func (vs *VoiceSet) FadeBySoundEffectHandle(h redfish.Handle, startTime int64, durationSamples int, target float64, stopOnDone bool) {
	for _, v := range vs.activeSlice() {
		if v.SoundEffectHandle() == h {
			v.ScheduleFade(startTime, durationSamples, target, stopOnDone)
		}
	}
}

// SetAmplitudeBySoundEffectHandle sets the immediate gain target (no
// ramp scheduling) on every voice owned by the given sound-effect
// handle.
func (vs *VoiceSet) SetAmplitudeBySoundEffectHandle(h redfish.Handle, amplitude float64) {
	for _, v := range vs.activeSlice() {
		if v.SoundEffectHandle() == h {
			v.gain.SetTarget(amplitude)
		}
	}
}

func pushVoiceStarted(messages *bridge.MessageQueue, v *Voice) {
	var buf [bridge.MessagePayloadSize]byte
	bridge.NewPayloadWriter(buf[:]).PutUint32(v.SoundEffectHandle().Value)
	messages.Push(bridge.Message{Tag: bridge.MessageVoiceStarted, Payload: buf})
}

func pushVoiceStopped(messages *bridge.MessageQueue, v *Voice) {
	var buf [bridge.MessagePayloadSize]byte
	bridge.NewPayloadWriter(buf[:]).PutUint32(v.SoundEffectHandle().Value)
	messages.Push(bridge.Message{Tag: bridge.MessageVoiceStopped, Payload: buf})
}

func pushNumVoices(messages *bridge.MessageQueue, count int) {
	var buf [bridge.MessagePayloadSize]byte
	bridge.NewPayloadWriter(buf[:]).PutUint32(uint32(count))
	messages.Push(bridge.Message{Tag: bridge.MessageContextNumVoices, Payload: buf})
}
