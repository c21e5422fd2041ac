package music

import (
	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/bridge"
	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/config"
	"github.com/z-e-chan/redfish/datacache"
)

// MusicManager orchestrates the Database, Conductor, Sequencer, and
// StingerSet behind one Process call per callback (spec §4.6
// MusicManager: "orchestrates sequencer + conductor; exposes control
// API"). It is exclusively audio-thread state: every mutation arrives
// through ApplyCommand (commands.go), never a direct method call from
// the control side.
type MusicManager struct {
	db        *Database
	conductor *Conductor
	sequencer *Sequencer
	stingers  *StingerSet
}

// NewMusicManager allocates a MusicManager sized per cfg's
// MAX_CUES/MAX_TRANSITIONS/MAX_STINGERS/MAX_CUE_LAYERS.
func NewMusicManager(cfg config.EngineConfig) *MusicManager {
	db := NewDatabase(cfg.MaxCues, cfg.MaxTransitions, cfg.MaxStingers)
	conductor := NewConductor(float64(cfg.SampleRate), cfg.BlockSize)
	stingers := NewStingerSet(cfg.MaxCueLayers, cfg.MaxStingers)
	sequencer := NewSequencer(db, conductor, stingers, cfg.MaxTransitions)
	return &MusicManager{db: db, conductor: conductor, sequencer: sequencer, stingers: stingers}
}

// Process advances the sequencer (and through it, the conductor's
// metronome and both layer sets) and the stinger set by one callback
// block, filling mix items for every active music voice (spec §4.8 step
// 2 "the music manager advances the sequencer").
func (m *MusicManager) Process(playhead int64, blockSize int, refs *datacache.References, pool *buffer.Pool, messages *bridge.MessageQueue) {
	m.sequencer.Process(playhead, blockSize, refs, pool, messages)
}

// CurrentCueHandle reports the cue handle of whatever transition is
// currently playing, the zero handle if nothing is (spec §6 "current
// cue name/handle").
func (m *MusicManager) CurrentCueHandle() redfish.Handle { return m.sequencer.CurrentCue() }

// IsPlaying reports whether music is currently active.
func (m *MusicManager) IsPlaying() bool { return m.sequencer.IsPlaying() }

// BarBeat reports the Conductor metronome's current bar/beat counters
// (spec §6 "bar, beat" read-out).
func (m *MusicManager) BarBeat() (bar, beat int) { return m.sequencer.CurrentBarBeat() }

// Tempo reports the Conductor metronome's current tempo in BPM.
func (m *MusicManager) Tempo() float64 { return m.conductor.Metronome().Tempo() }

// Meter reports the Conductor metronome's current time signature.
func (m *MusicManager) Meter() Meter { return m.conductor.Metronome().MeterValue() }

// ResetIfPlayingAudioHandle forwards to the StingerSet so a deferred
// asset unload never leaves a ringing stinger reading freed data (spec
// §8 invariant 3, applied to music voices as well as sound-effect
// voices).
func (m *MusicManager) ResetIfPlayingAudioHandle(h redfish.Handle) {
	m.stingers.ResetIfPlayingAudioHandle(h)
}
