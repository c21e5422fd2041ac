// Package voice implements polyphonic sample playback: BaseVoice's
// nearest-neighbour resampling fill loop, Voice's per-voice DSP chain,
// and VoiceSet's fixed pool with swap-remove (spec §4.5).
package voice

// Fader ramps an amplitude linearly from its current value to a target
// over a fixed sample duration, starting at a scheduled sample time.
// Used both for per-voice stop/fade scheduling and (mirrored in
// package mixer) for mix-group fades (spec §4.5, §4.7).
type Fader struct {
	active     bool
	startTime  int64
	duration   int
	from       float64
	to         float64
	elapsed    int
	stopOnDone bool
}

// ScheduleFade arms a fade from `from` to `to` over durationSamples,
// beginning at startTime (an absolute sample position). durationSamples
// of 0 is clamped to 1 (spec §9 Open Question: zero-duration fades are
// clamped rather than treated as instantaneous, matching the "1 sample
// in the source" reading of spec.md §8's fade note).
func (f *Fader) ScheduleFade(startTime int64, durationSamples int, from, to float64, stopOnDone bool) {
	if durationSamples < 1 {
		durationSamples = 1
	}
	f.active = true
	f.startTime = startTime
	f.duration = durationSamples
	f.from = from
	f.to = to
	f.elapsed = 0
	f.stopOnDone = stopOnDone
}

// ScheduleStop arms a fade to silence over config's stop-fade sample
// count, ending exactly at stopTime (spec §4.5: "schedule a fader to
// silence over 32 samples ending at the stop time").
func (f *Fader) ScheduleStop(stopTime int64, stopFadeSamples int, from float64) {
	f.ScheduleFade(stopTime-int64(stopFadeSamples), stopFadeSamples, from, 0, true)
}

// Active reports whether a fade is scheduled or in progress.
func (f *Fader) Active() bool { return f.active }

// Clear disarms the fader.
func (f *Fader) Clear() { *f = Fader{} }

// Value returns the amplitude at absolute sample position pos. Before
// the scheduled start it returns `from`; once the fade duration has
// fully elapsed it returns `to` and the fader becomes inactive.
func (f *Fader) Value(pos int64) (amplitude float64, done bool, stopOnDone bool) {
	if !f.active {
		return f.to, false, false
	}
	if pos < f.startTime {
		return f.from, false, false
	}
	elapsed := pos - f.startTime
	if elapsed >= int64(f.duration) {
		f.active = false
		return f.to, true, f.stopOnDone
	}
	t := float64(elapsed) / float64(f.duration)
	return f.from + (f.to-f.from)*t, false, false
}
