package facade

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/config"
	"github.com/z-e-chan/redfish/dsp"
	"github.com/z-e-chan/redfish/music"
	"github.com/z-e-chan/redfish/voice"
)

// PlaybackRule selects how a SoundEffect with multiple variations picks
// one to play (spec §6 "playback rule ∈ {SmartShuffle, RoundRobin,
// Random}").
type PlaybackRule int

const (
	SmartShuffle PlaybackRule = iota
	RoundRobin
	Random
)

// Variation is one authored take of a SoundEffect: the asset to play
// plus the volume-dB and pitch ranges it is randomised within on
// selection (spec §6 "variations (each with volume-dB and pitch
// randomisation ranges)").
type Variation struct {
	AudioHandle redfish.Handle
	VolumeDBMin float64
	VolumeDBMax float64
	PitchMin    float64
	PitchMax    float64
}

// SoundEffect is a builder-style control-side authoring object for
// polyphonic one-shot (or looping) playback (spec §6 "SoundEffect:
// builder-style with variations ..."). It mints its own handle so the
// voices it spawns can be stopped, faded, or queried as a group.
type SoundEffect struct {
	engine *Engine
	handle redfish.Handle
	name   string
	rng    *rand.Rand

	mu          sync.Mutex
	variations  []Variation
	rule        PlaybackRule
	mixGroup    redfish.Handle
	positioning dsp.DistanceParams
	positional  bool
	looping     bool
	volumeDB    float64
	pitch       float64

	history       []int
	roundRobinIdx int
}

// newSoundEffect mints a UUID-based default name: unlike mix groups and
// cues, nothing in spec §6's SoundEffect surface ever takes a
// caller-supplied name, so every sound effect is anonymous by
// construction.
func newSoundEffect(e *Engine, h redfish.Handle) *SoundEffect {
	return &SoundEffect{
		engine: e,
		handle: h,
		name:   "soundeffect-" + uuid.New().String(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(h.Value))),
		pitch:  1.0,
	}
}

// Handle returns the opaque handle identifying this sound effect's
// voice group.
func (s *SoundEffect) Handle() redfish.Handle { return s.handle }

// Name returns the UUID-based default name this sound effect was
// minted with, for logging/debugging purposes.
func (s *SoundEffect) Name() string { return s.name }

// AddVariation appends a variation and returns s for chaining.
func (s *SoundEffect) AddVariation(v Variation) *SoundEffect {
	s.mu.Lock()
	s.variations = append(s.variations, v)
	s.mu.Unlock()
	return s
}

// SetMixGroup routes this sound effect's voices to group.
func (s *SoundEffect) SetMixGroup(group redfish.Handle) *SoundEffect {
	s.mu.Lock()
	s.mixGroup = group
	s.mu.Unlock()
	return s
}

// SetPlaybackRule selects how AddVariation's entries are chosen from on
// Play.
func (s *SoundEffect) SetPlaybackRule(rule PlaybackRule) *SoundEffect {
	s.mu.Lock()
	s.rule = rule
	s.mu.Unlock()
	return s
}

// SetPositioning enables distance-based attenuation/filtering/panning
// for voices spawned from this sound effect (spec §3 "Positioning").
func (s *SoundEffect) SetPositioning(params dsp.DistanceParams) *SoundEffect {
	s.mu.Lock()
	s.positioning = params
	s.positional = true
	s.mu.Unlock()
	return s
}

// SetLooping sets whether Play spawns an infinitely looping voice
// (PlayCount 0) or a single-shot one.
func (s *SoundEffect) SetLooping(looping bool) *SoundEffect {
	s.mu.Lock()
	s.looping = looping
	s.mu.Unlock()
	return s
}

// SetVolumeDB sets the base volume applied on top of the selected
// variation's own randomised offset.
func (s *SoundEffect) SetVolumeDB(db float64) *SoundEffect {
	s.mu.Lock()
	s.volumeDB = db
	s.mu.Unlock()
	return s
}

// SetPitch sets the base pitch scalar applied on top of the selected
// variation's own randomised offset.
func (s *SoundEffect) SetPitch(pitch float64) *SoundEffect {
	s.mu.Lock()
	s.pitch = pitch
	s.mu.Unlock()
	return s
}

// Play selects a variation and starts a voice immediately.
func (s *SoundEffect) Play() {
	s.playAt(s.engine.estimatedPlayheadValue())
}

// PlayAtSync resolves sync against the engine's best-effort current
// tempo/meter and starts a voice at the resulting sample time (spec §6
// "play(sync)").
func (s *SoundEffect) PlayAtSync(sync music.Sync) {
	s.playAt(s.engine.resolveSyncStart(sync))
}

func (s *SoundEffect) playAt(startTime int64) {
	s.mu.Lock()
	n := len(s.variations)
	if n == 0 {
		s.mu.Unlock()
		return
	}
	idx := s.selectVariationLocked()
	v := s.variations[idx]
	playCount := 1
	if s.looping {
		playCount = 0
	}
	volumeDB := s.volumeDB + randRange(s.rng, v.VolumeDBMin, v.VolumeDBMax)
	pitch := s.pitch * randRange(s.rng, v.PitchMin, v.PitchMax)
	mixGroup := s.mixGroup
	positional := s.positional
	distParams := s.positioning
	s.mu.Unlock()

	params := voice.PlayParams{
		AudioHandle:      v.AudioHandle,
		StartTime:        startTime,
		Pitch:            pitch,
		PlayCount:        playCount,
		SoundEffect:      s.handle,
		MixGroup:         mixGroup,
		InitialAmplitude: dsp.DBToAmp(volumeDB),
	}

	if positional {
		s.engine.pushCommand(voice.NewPlayPositionalVoiceCommand(params, distParams), "play-positional-voice")
		return
	}
	s.engine.pushCommand(voice.NewPlayVoiceCommand(params), "play-voice")
}

// selectVariationLocked implements SmartShuffle's reject-and-retry
// history rule (spec §4.7 "keep a history of the most recently selected
// variations of size floor(n/2); on selection, reject any variation in
// the history and retry; then roll the history forward"). Caller must
// hold s.mu and s.variations must be non-empty.
func (s *SoundEffect) selectVariationLocked() int {
	n := len(s.variations)
	switch s.rule {
	case RoundRobin:
		idx := s.roundRobinIdx % n
		s.roundRobinIdx++
		return idx
	case Random:
		return s.rng.Intn(n)
	default: // SmartShuffle
		historySize := n / 2
		var idx int
		for {
			idx = s.rng.Intn(n)
			if !containsInt(s.history, idx) {
				break
			}
		}
		if historySize > 0 {
			s.history = append(s.history, idx)
			if len(s.history) > historySize {
				s.history = s.history[len(s.history)-historySize:]
			}
		}
		return idx
	}
}

// Stop halts every voice spawned by this sound effect.
func (s *SoundEffect) Stop() {
	s.engine.pushCommand(voice.NewStopVoiceCommand(voice.StopBySoundEffect, s.handle), "stop-voice")
}

// Fade ramps every voice spawned by this sound effect to targetDB,
// starting at scheduleSync and lasting durationSync, optionally
// stopping the voices once the ramp completes.
func (s *SoundEffect) Fade(targetDB float64, scheduleSync, durationSync music.Sync, stopOnDone bool) {
	start := s.engine.resolveSyncStart(scheduleSync)
	duration := s.engine.resolveSyncDuration(durationSync)
	s.engine.pushCommand(voice.NewFadeVoiceCommand(s.handle, start, duration, dsp.DBToAmp(targetDB), stopOnDone), "fade-voice")
}

// FadeOutAndStop ramps every voice spawned by this sound effect to
// silence and stops them once the ramp completes.
func (s *SoundEffect) FadeOutAndStop(scheduleSync, durationSync music.Sync) {
	s.Fade(config.MinDB, scheduleSync, durationSync, true)
}

func randRange(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
