package music

import (
	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/datacache"
	"github.com/z-e-chan/redfish/voice"
)

// maxCueLayersConst duplicates maxCueLayers for array sizing clarity.
const maxCueLayersConst = maxCueLayers

// LayerSet plays every layer of the currently active cue in lockstep,
// one musicVoice per layer, all started at the same sample and all
// torn down together the instant any one of them reports done (spec
// §4.6 LayerSet: "all layers of a cue play in lockstep").
type LayerSet struct {
	voices    [maxCueLayersConst]*musicVoice
	numLayers int
}

// NewLayerSet allocates a LayerSet with one musicVoice per cue layer
// slot.
func NewLayerSet() *LayerSet {
	ls := &LayerSet{}
	for i := range ls.voices {
		ls.voices[i] = newMusicVoice()
	}
	return ls
}

// Play starts every layer of cue at request.StartTime, looping
// playCount times (0 = forever).
func (ls *LayerSet) Play(request TransitionRequest, transition TransitionRecord, cue CueRecord) {
	ls.numLayers = cue.NumLayers
	for i := 0; i < ls.numLayers; i++ {
		ls.voices[i].play(request.StartTime, cue, transition.PlayCount, i, 1.0)
	}
}

// Reset stops and forgets every layer voice.
func (ls *LayerSet) Reset() {
	for i := 0; i < ls.numLayers; i++ {
		ls.voices[i].Stop()
	}
	ls.numLayers = 0
}

// Process fills one MixItem per active layer and returns the Info of
// the last layer filled, with Stopped set (and every layer reset) as
// soon as any layer reports done or stopped (all layers of a cue share
// the same audio frame count, so they normally finish together).
// forceDone makes every layer report stopped regardless of its own
// fill state, used for a manual music stop.
func (ls *LayerSet) Process(playhead int64, blockSize int, refs *datacache.References, pool *buffer.Pool, forceDone bool) voice.Info {
	var info voice.Info
	if ls.numLayers == 0 {
		return info
	}

	stopped := false
	for i := 0; i < ls.numLayers; i++ {
		v := ls.voices[i]
		data := refs.Get(v.AudioHandle())
		if data == nil {
			continue
		}
		item := pool.Acquire()
		if item == nil {
			continue
		}
		item.Destination = v.MixGroup().Value
		info = v.FillMixItem(playhead, blockSize, data, item)
		if info.Done || info.Stopped || forceDone {
			stopped = true
		}
	}

	if stopped {
		info.Stopped = true
		ls.Reset()
	}

	return info
}

// IsPlaying reports whether any layer voice is currently active.
func (ls *LayerSet) IsPlaying() bool {
	for i := 0; i < ls.numLayers; i++ {
		if !ls.voices[i].Done() {
			return true
		}
	}
	return false
}

// ScheduleFade arms a ramped fade on every active layer (spec §4.6, §4.7
// "an optional flag stops playback when the fade reaches zero").
func (ls *LayerSet) ScheduleFade(startTime int64, durationSamples int, target float64, stopOnDone bool) {
	for i := 0; i < ls.numLayers; i++ {
		ls.voices[i].ScheduleFade(startTime, durationSamples, target, stopOnDone)
	}
}

// CutAt hard-stops every active layer at the given absolute sample
// (spec §4.6: "finalise the interrupt of the currently playing layer
// set by rendering only (start − playhead) samples of the old
// layers"). This is a one-sample fade-to-silence ending exactly at
// stopTime rather than a genuine mid-block partial render, since
// musicVoice has no sub-block split path; the practical effect is the
// same silence-at-the-boundary the spec describes.
func (ls *LayerSet) CutAt(stopTime int64) {
	for i := 0; i < ls.numLayers; i++ {
		ls.voices[i].ScheduleFade(stopTime-1, 1, 0, true)
	}
}
