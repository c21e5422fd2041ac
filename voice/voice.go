package voice

import (
	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/config"
	"github.com/z-e-chan/redfish/datacache"
	"github.com/z-e-chan/redfish/dsp"
)

// Voice wraps a BaseVoice with the per-voice DSP chain spec.md §3
// describes: "amplitude with interpolation state, optional fader ...
// optional positioning DSP instance."
type Voice struct {
	base BaseVoice
	gain *dsp.Gain

	fader       Fader
	positioning *dsp.Positioning // nil unless the voice was created with positional params

	inUse bool
}

// NewVoice constructs an idle Voice ready for VoiceSet to hand out.
func NewVoice() *Voice {
	return &Voice{gain: dsp.NewGain()}
}

// Play resets the voice for a new playback, per BaseVoice.Play (spec
// §4.5), and seeds its gain ramp from the play parameters' initial
// amplitude.
func (v *Voice) Play(p PlayParams) {
	v.base.Play(p)
	v.fader.Clear()
	v.gain = dsp.NewGain()
	if p.InitialAmplitude == 0 {
		p.InitialAmplitude = 1
	}
	v.gain.SetTarget(p.InitialAmplitude)
	v.inUse = true
}

// EnablePositioning attaches a Butterworth/Pan/Gain composite driven by
// distance, matching spec.md §4.4 "Positioning".
func (v *Voice) EnablePositioning(sampleRate float64, channels int, panLaw config.PanLaw) {
	v.positioning = dsp.NewPositioning(sampleRate, channels, panLaw)
}

// Positioning returns the voice's positional DSP instance, or nil if
// EnablePositioning was never called.
func (v *Voice) Positioning() *dsp.Positioning { return v.positioning }

// ScheduleFade arms a fade targeting amplitude over durationSamples
// starting at startTime (spec §4.5 "fade requests schedule a fader
// targeting a specified amplitude over a specified sample duration").
func (v *Voice) ScheduleFade(startTime int64, durationSamples int, target float64, stopOnDone bool) {
	v.fader.ScheduleFade(startTime, durationSamples, v.gain.Current(), target, stopOnDone)
}

// ScheduleStop arms a fade to silence ending at stopTime (spec §4.5
// "stop requests set a deadline and schedule a fader to silence").
func (v *Voice) ScheduleStop(stopTime int64) {
	v.fader.ScheduleStop(stopTime, config.StopFadeSamples, v.gain.Current())
}

// Stop immediately marks the voice done, bypassing any fade.
func (v *Voice) Stop() { v.base.Stop() }

// Done reports whether the voice is finished and can be reclaimed.
func (v *Voice) Done() bool { return v.base.Done() }

// AudioHandle, SoundEffectHandle, StingerHandle, MixGroup delegate to
// the wrapped BaseVoice.
func (v *Voice) AudioHandle() redfish.Handle      { return v.base.AudioHandle() }
func (v *Voice) SoundEffectHandle() redfish.Handle { return v.base.SoundEffectHandle() }
func (v *Voice) StingerHandle() redfish.Handle     { return v.base.StingerHandle() }
func (v *Voice) MixGroup() redfish.Handle          { return v.base.MixGroup() }

// FillMixItem advances the fader, fills item from data via BaseVoice,
// then applies the per-voice gain DSP (spec §4.5 step 4).
func (v *Voice) FillMixItem(playhead int64, blockSize int, data *datacache.AudioData, item *buffer.MixItem) Info {
	if amp, done, stopOnDone := v.fader.Value(playhead); v.fader.Active() || done {
		v.gain.SetTarget(amp)
		if done && stopOnDone {
			v.base.Stop()
		}
	}

	info := v.base.FillMixItem(playhead, blockSize, data, item)
	v.gain.Process(item)
	if v.positioning != nil {
		v.positioning.Process(item)
	}
	return info
}
