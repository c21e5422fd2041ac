package music

import (
	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/bridge"
)

// Conductor resolves a Transition's Sync into an absolute start sample,
// extending it when necessary to make room for an attached Stinger, and
// owns the Metronome that tracks bar/beat against whatever is currently
// playing (spec §4.6 Conductor).
type Conductor struct {
	sampleRate float64
	blockSize  int
	metronome  *Metronome
	lastStart  int64
	lastLength int64
}

// NewConductor builds a Conductor for the given engine timing.
func NewConductor(sampleRate float64, blockSize int) *Conductor {
	return &Conductor{
		sampleRate: sampleRate,
		blockSize:  blockSize,
		metronome:  NewMetronome(sampleRate, blockSize),
		lastLength: -1,
	}
}

func (c *Conductor) Metronome() *Metronome { return c.metronome }

// Update advances the metronome against the currently active request.
func (c *Conductor) Update(playhead int64, request TransitionRequest, isPlaying bool, messages *bridge.MessageQueue) {
	c.metronome.Update(playhead, request, isPlaying, messages)
}

// Reset clears the conductor's notion of "last transition" and the
// metronome's tempo/meter/counters, for a fully stopped music system.
func (c *Conductor) Reset() {
	c.lastStart = 0
	c.lastLength = -1
	c.metronome.Reset()
}

// UpdateLastCreatedRequest records request as the reference point for
// future Musical-Sync resolution (spec: called once the transition
// actually enters its first window, not at creation time, so an
// in-flight transition doesn't get superseded by itself).
func (c *Conductor) UpdateLastCreatedRequest(request TransitionRequest) {
	c.lastStart = request.StartTime
	c.lastLength = request.MusicLength
}

// CreateRequest resolves transition (whose cue has audio already
// resident, reported via musicLength) into a TransitionRequest,
// extending its start time to accommodate transition's stinger (if
// any) when there isn't enough lead time to play it in full.
func (c *Conductor) CreateRequest(transitionHandle redfish.Handle, transition TransitionRecord, cue CueRecord, musicLength int64, playhead int64, isPlaying bool, db *Database) TransitionRequest {
	if !isPlaying {
		c.metronome.Set(cue.Tempo, cue.Meter, nil)
	}

	startTime := c.CalculateStartTime(transition.Sync, playhead, isPlaying)

	request := TransitionRequest{
		TransitionHandle: transitionHandle,
		StartTime:        startTime,
		MusicLength:      musicLength,
		HasCue:           true,
		Cue:              cue,
	}

	if transition.Stinger.Valid() {
		stinger, ok := db.Stinger(transition.Stinger)
		if ok {
			stingerCue, ok := db.Cue(stinger.CueHandle)
			if ok {
				stingerDuration := GetSyncSamples(stinger.Sync, stingerCue.Tempo, stingerCue.Meter, c.sampleRate)

				if startTime-int64(stingerDuration) < playhead {
					var extension int64
					if transition.Sync.Value == SyncQueue {
						extension = musicLength
					} else {
						extension = int64(GetSyncSamples(transition.Sync, c.metronome.Tempo(), c.metronome.MeterValue(), c.sampleRate))
					}
					if extension <= 0 {
						extension = 1
					}
					for startTime-int64(stingerDuration) < playhead {
						startTime += extension
					}
					request.StartTime = startTime
				}

				request.StingerStartTime = startTime - int64(stingerDuration)
			}
		}
	}

	if !isPlaying {
		c.UpdateLastCreatedRequest(request)
	}

	return request
}

// CalculateStartTime resolves sync to an absolute sample position (spec
// §4.6 "Conductor resolves a Sync into an absolute start sample").
func (c *Conductor) CalculateStartTime(sync Sync, playhead int64, isPlaying bool) int64 {
	switch sync.Mode {
	case SyncMusical:
		startTime := playhead
		if !isPlaying {
			return startTime
		}

		if sync.Value == SyncQueue {
			return c.lastStart + c.lastLength
		}
		if sync.Value == SyncCut {
			return playhead
		}

		syncValue := int64(c.metronome.PreciseBeatSwitch(sync))

		if sync.ReferencePoint == ReferenceCueStart {
			candidate := c.lastStart + syncValue
			if candidate >= playhead {
				return candidate
			}
			// Poorly authored transition: the CueStart offset already
			// passed. Fall through to Bar-relative resolution below.
		}

		numFullBarsPlayed := c.metronome.BarCounter() - 1
		barValue := int64(c.metronome.PreciseBeatSwitch(Sync{Mode: SyncMusical, Value: SyncBar, Factor: 1}))
		currentMeasureStart := c.lastStart + int64(numFullBarsPlayed)*barValue

		reference := currentMeasureStart
		nextMeasure := currentMeasureStart + barValue
		startTime = -1
		for startTime < playhead {
			startTime = reference + syncValue
			reference += syncValue
			if reference >= nextMeasure {
				reference = nextMeasure
				nextMeasure += barValue
			}
		}
		return startTime
	case SyncTime:
		return playhead + int64(round(c.sampleRate*sync.TimeSeconds))
	default:
		return playhead
	}
}

// GetSyncSamples resolves sync against the conductor's current
// tempo/meter (spec §4.6, used by fade-out-and-stop in Time mode too
// for consistency with Musical mode).
func (c *Conductor) GetSyncSamples(sync Sync) int {
	return GetSyncSamples(sync, c.metronome.Tempo(), c.metronome.MeterValue(), c.sampleRate)
}
