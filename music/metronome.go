package music

import (
	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/bridge"
)

// TransitionRequest describes the currently playing (or about to play)
// music window the Metronome ticks against (spec §4.6 "the sequencer
// publishes a transition request the metronome reads every callback").
type TransitionRequest struct {
	TransitionHandle redfish.Handle
	StartTime        int64
	StingerStartTime int64
	MusicLength      int64 // -1 if unknown (asset not loaded yet)
	HasCue           bool
	Cue              CueRecord
}

// inFirstWindow reports whether playhead falls within the first
// callback block of a window starting at start (spec: a transition
// just became active this callback).
func inFirstWindow(playhead, start int64, blockSize int) bool {
	return start >= playhead && start < playhead+int64(blockSize)
}

// Metronome derives the current bar/beat from the playhead and the
// active cue's tempo/meter, and pushes MessageBarChanged/
// MessageBeatChanged whenever either counter advances (spec §4.6
// Metronome).
type Metronome struct {
	calc BeatCalculator

	tempo         float64
	meter         Meter
	samplesPerBeat float64

	barCounter  int
	beatCounter int

	sampleRate float64
	blockSize  int
}

// NewMetronome builds a Metronome for the given engine timing.
func NewMetronome(sampleRate float64, blockSize int) *Metronome {
	return &Metronome{sampleRate: sampleRate, blockSize: blockSize}
}

// Set installs a new tempo/meter and recomputes note-division timing,
// pushing MessageTempoChanged/MessageMeterChanged.
func (m *Metronome) Set(tempo float64, meter Meter, messages *bridge.MessageQueue) {
	m.tempo = tempo
	m.meter = meter
	m.samplesPerBeat = m.calc.BeatCalc(tempo, meter, m.sampleRate)

	if messages == nil {
		return
	}

	{
		var buf [bridge.MessagePayloadSize]byte
		w := bridge.NewPayloadWriter(buf[:])
		w.PutFloat64(tempo)
		messages.Push(bridge.Message{Tag: bridge.MessageTempoChanged, Payload: buf})
	}
	{
		var buf [bridge.MessagePayloadSize]byte
		w := bridge.NewPayloadWriter(buf[:])
		w.PutUint32(uint32(meter.Top))
		w.PutUint32(uint32(meter.Bottom))
		messages.Push(bridge.Message{Tag: bridge.MessageMeterChanged, Payload: buf})
	}
}

// Update advances the bar/beat counters from playhead given the active
// request, pushing change messages only when a counter moved (spec
// §4.6). It is a no-op when isPlaying is false.
func (m *Metronome) Update(playhead int64, request TransitionRequest, isPlaying bool, messages *bridge.MessageQueue) {
	if !isPlaying {
		return
	}

	firstWindow := inFirstWindow(playhead, request.StartTime, m.blockSize)
	if request.HasCue && firstWindow {
		cue := request.Cue
		tempoChanged := m.tempo != cue.Tempo
		meterChanged := m.meter != cue.Meter
		if tempoChanged || meterChanged {
			m.Set(cue.Tempo, cue.Meter, messages)
		}
	}

	if request.MusicLength == -1 {
		return
	}

	totalPlaytime := (playhead + int64(m.blockSize)) - request.StartTime
	if totalPlaytime < 0 {
		totalPlaytime = 0
	}

	if m.samplesPerBeat <= 0 || m.meter.Top <= 0 {
		return
	}

	currentBeat := float64(int64(float64(totalPlaytime) / m.samplesPerBeat))
	bars := float64(int64(currentBeat / float64(m.meter.Top)))
	beats := currentBeat - bars*float64(m.meter.Top)

	lastBar := m.barCounter
	lastBeat := m.beatCounter
	m.barCounter = 1 + int(bars)
	m.beatCounter = 1 + int(beats)

	if m.barCounter != lastBar {
		var buf [bridge.MessagePayloadSize]byte
		w := bridge.NewPayloadWriter(buf[:])
		w.PutUint32(uint32(m.barCounter))
		w.PutUint32(uint32(m.beatCounter))
		messages.Push(bridge.Message{Tag: bridge.MessageBarChanged, Payload: buf})
	}
	if m.beatCounter != lastBeat {
		var buf [bridge.MessagePayloadSize]byte
		w := bridge.NewPayloadWriter(buf[:])
		w.PutUint32(uint32(m.barCounter))
		w.PutUint32(uint32(m.beatCounter))
		messages.Push(bridge.Message{Tag: bridge.MessageBeatChanged, Payload: buf})
	}
}

// Reset zeroes meter/counters and sets tempo to -1 (no tempo), for when
// music stops entirely.
func (m *Metronome) Reset() {
	m.calc = BeatCalculator{}
	m.meter = Meter{}
	m.tempo = -1.0
	m.samplesPerBeat = 0
	m.barCounter = 0
	m.beatCounter = 0
}

// GetSyncSamples resolves sync to a sample duration given the supplied
// tempo/meter (spec §4.6, static helper used by fade-out-and-stop).
func GetSyncSamples(sync Sync, tempo float64, meter Meter, sampleRate float64) int {
	if sync.Mode == SyncTime {
		return round(sampleRate * sync.TimeSeconds)
	}
	var calc BeatCalculator
	calc.BeatCalc(tempo, meter, sampleRate)
	return calc.BeatSwitch(sync)
}

func (m *Metronome) PreciseBeatSwitch(sync Sync) float64 { return m.calc.PreciseBeatSwitch(sync) }
func (m *Metronome) Tempo() float64                      { return m.tempo }
func (m *Metronome) MeterValue() Meter                   { return m.meter }
func (m *Metronome) BarCounter() int                     { return m.barCounter }
func (m *Metronome) BeatCounter() int                    { return m.beatCounter }
