package voice

import (
	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/datacache"
)

// PlayParams initializes a BaseVoice's playback record (spec §4.5
// "BaseVoice.Play initialises the playback record from a PlayParams
// struct").
type PlayParams struct {
	AudioHandle      redfish.Handle
	StartTime        int64
	Pitch            float64
	PlayCount        int // 0 = infinite loop
	SoundEffect      redfish.Handle
	Stinger          redfish.Handle
	MixGroup         redfish.Handle
	InitialAmplitude float64
}

// Info reports the outcome of one FillMixItem call (spec §4.5).
type Info struct {
	LastFilledFrame int
	FullyFilled     bool
	Done            bool
	Looped          bool
	Started         bool
	Stopped         bool
	AudioHandle     redfish.Handle
}

// BaseVoice is a playback head into an AudioData (spec §3 Voice, §4.5).
type BaseVoice struct {
	audioHandle redfish.Handle
	startTime   int64
	pitch       float64
	playCount   int
	playedCount int

	soundEffect redfish.Handle
	stinger     redfish.Handle
	mixGroup    redfish.Handle

	sourceIndex float64 // fractional read position in source frames
	started     bool
	done        bool
	stopped     bool
}

// Play resets the voice's playback record for a new AudioData.
func (v *BaseVoice) Play(p PlayParams) {
	*v = BaseVoice{
		audioHandle: p.AudioHandle,
		startTime:   p.StartTime,
		pitch:       p.Pitch,
		playCount:   p.PlayCount,
		soundEffect: p.SoundEffect,
		stinger:     p.Stinger,
		mixGroup:    p.MixGroup,
	}
	if v.pitch == 0 {
		v.pitch = 1
	}
}

// Stop marks the voice as stopped; VoiceSet.Process will swap-remove it
// on the next pass.
func (v *BaseVoice) Stop() { v.stopped = true }

// Done reports whether the voice finished playback (exhausted a finite
// play count) or was explicitly stopped.
func (v *BaseVoice) Done() bool { return v.done || v.stopped }

// AudioHandle returns the AudioData handle this voice reads from.
func (v *BaseVoice) AudioHandle() redfish.Handle { return v.audioHandle }

// SoundEffectHandle returns the owning sound-effect handle, for
// group-stop queries.
func (v *BaseVoice) SoundEffectHandle() redfish.Handle { return v.soundEffect }

// StingerHandle returns the owning stinger handle, for group-stop
// queries.
func (v *BaseVoice) StingerHandle() redfish.Handle { return v.stinger }

// MixGroup returns the destination mix-group handle.
func (v *BaseVoice) MixGroup() redfish.Handle { return v.mixGroup }

// FillMixItem is the heart of polyphony (spec §4.5 steps 1-3). It
// writes nearest-neighbour-resampled source frames into item starting
// at playhead, and returns an Info describing what happened. data is
// the AudioData this voice reads from, looked up by the caller via
// datacache.References so BaseVoice itself never touches the cache.
func (v *BaseVoice) FillMixItem(playhead int64, blockSize int, data *datacache.AudioData, item *buffer.MixItem) Info {
	info := Info{AudioHandle: v.audioHandle}

	if data == nil || data.Frames == 0 {
		v.done = true
		info.Done = true
		return info
	}

	startIndex := 0
	if !v.started {
		if v.startTime < playhead || v.startTime >= playhead+int64(blockSize) {
			// Not yet time to start, or (a programmer error aside) we
			// missed the window entirely; either way there's no work
			// this callback.
			return info
		}
		startIndex = int(v.startTime - playhead)
		v.started = true
		v.sourceIndex = 0
		info.Started = true
	}
	info.Started = info.Started || v.started

	framesAvailable := blockSize - startIndex
	writeIndex := startIndex
	remaining := framesAvailable

	for remaining > 0 {
		// maxOutputFrames is how many output frames can be emitted before
		// the fractional source index reaches the end of the source,
		// advancing by v.pitch source frames per output frame.
		maxOutputFrames := 0
		if v.pitch > 0 {
			maxOutputFrames = int((float64(data.Frames) - v.sourceIndex) / v.pitch)
		}
		if maxOutputFrames < 0 {
			maxOutputFrames = 0
		}
		chunk := remaining
		if chunk > maxOutputFrames {
			chunk = maxOutputFrames
		}

		for c, ch := range item.Channels {
			srcChannel := data.Channels[c%len(data.Channels)]
			idx := v.sourceIndex
			dst := ch.Data()
			for i := 0; i < chunk; i++ {
				dst[writeIndex+i] = srcChannel[int(idx)]
				idx += v.pitch
			}
		}
		v.sourceIndex += float64(chunk) * v.pitch
		writeIndex += chunk
		remaining -= chunk
		if chunk > 0 {
			info.LastFilledFrame = writeIndex - 1
		}

		if int(v.sourceIndex) >= data.Frames {
			v.playedCount++
			if v.playCount == 0 || v.playedCount < v.playCount {
				v.sourceIndex = 0
				info.Looped = true
				continue
			}
			v.done = true
			info.Done = true
			break
		}

		// Source has frames left but we've filled the requested span.
		break
	}

	info.FullyFilled = writeIndex >= blockSize
	info.Stopped = v.stopped
	return info
}
