package music

import (
	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/datacache"
	"github.com/z-e-chan/redfish/dsp"
)

// StingerSet owns an independent pool of one-shot musicVoices for
// stingers, separate from LayerSet's cue-layer voices: a stinger can
// ring out over a transition's cue change, so it cannot share the
// LayerSet's lockstep lifetime (spec §4.6 StingerSet).
type StingerSet struct {
	voices   []*musicVoice
	capacity int
}

// NewStingerSet allocates a pool sized for maxCueLayers layers across
// maxStingers concurrently-ringing stingers.
func NewStingerSet(maxCueLayers, maxStingers int) *StingerSet {
	capacity := maxCueLayers * maxStingers
	return &StingerSet{voices: make([]*musicVoice, 0, capacity), capacity: capacity}
}

// Play starts one musicVoice per layer of the stinger's cue, all at
// request.StingerStartTime, scaled by the stinger's own gain.
func (ss *StingerSet) Play(request TransitionRequest, stinger StingerRecord, cue CueRecord) {
	amp := dsp.DBToAmp(stinger.GainDB)
	for i := 0; i < cue.NumLayers; i++ {
		if len(ss.voices) >= ss.capacity {
			return
		}
		mv := newMusicVoice()
		mv.play(request.StingerStartTime, cue, 1, i, amp)
		ss.voices = append(ss.voices, mv)
	}
}

// Reset stops and discards every ringing stinger voice, for a manual
// music stop (natural stops let stingers ring out; see Sequencer).
func (ss *StingerSet) Reset() {
	for _, v := range ss.voices {
		v.Stop()
	}
	ss.voices = ss.voices[:0]
}

// Process fills one MixItem per active stinger voice, swap-removing
// any that finish this callback.
func (ss *StingerSet) Process(playhead int64, blockSize int, refs *datacache.References, pool *buffer.Pool) {
	for i := 0; i < len(ss.voices); {
		v := ss.voices[i]
		data := refs.Get(v.AudioHandle())
		item := pool.Acquire()
		if data == nil || item == nil {
			i++
			continue
		}
		item.Destination = v.MixGroup().Value
		info := v.FillMixItem(playhead, blockSize, data, item)
		if info.Done {
			ss.voices[i] = ss.voices[len(ss.voices)-1]
			ss.voices = ss.voices[:len(ss.voices)-1]
			continue
		}
		i++
	}
}

// ResetIfPlayingAudioHandle resets the whole set if any ringing voice
// reads the given audio handle (spec: asset unload must not leave a
// stinger voice pointing at freed data).
func (ss *StingerSet) ResetIfPlayingAudioHandle(h redfish.Handle) {
	for _, v := range ss.voices {
		if v.AudioHandle() == h {
			ss.Reset()
			return
		}
	}
}
