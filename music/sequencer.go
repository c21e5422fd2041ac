package music

import (
	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/bridge"
	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/datacache"
)

// Sequencer is the three-state machine (GetTransition, ProcessingTransition,
// FollowUp) described in spec §4.6: it drains the queued transition
// handles into the Conductor, swaps between two LayerSets when a
// pending transition's first window arrives, and chains a follow-up
// transition once the active cue naturally reports done.
//
// Two LayerSets are kept instead of one so the outgoing cue can keep
// ringing its cut-off tail (see LayerSet.CutAt) in the same callback
// the incoming cue starts, without either one clobbering the other's
// voice state.
type Sequencer struct {
	db        *Database
	conductor *Conductor
	stingers  *StingerSet

	queue    []redfish.Handle
	queueCap int

	layers    [2]*LayerSet
	activeIdx int
	playing   bool

	currentRequest    TransitionRequest
	currentTransition TransitionRecord
	currentCueHandle  redfish.Handle

	pendingValid      bool
	pendingRequest    TransitionRequest
	pendingTransition TransitionRecord
	pendingCue        CueRecord

	followUp redfish.Handle
}

// NewSequencer builds a Sequencer backed by db/conductor/stingers, with
// a transition queue sized for maxTransitions (spec MAX_TRANSITIONS).
func NewSequencer(db *Database, conductor *Conductor, stingers *StingerSet, maxTransitions int) *Sequencer {
	return &Sequencer{
		db:        db,
		conductor: conductor,
		stingers:  stingers,
		queue:     make([]redfish.Handle, 0, maxTransitions),
		queueCap:  maxTransitions,
		layers:    [2]*LayerSet{NewLayerSet(), NewLayerSet()},
	}
}

// Enqueue appends a transition handle to the FIFO of transitions
// awaiting resolution by the Conductor (spec §6 "play(transition)"),
// silently dropping it once the queue is at MAX_TRANSITIONS capacity
// (spec §7 "transient resource exhaustion").
func (s *Sequencer) Enqueue(h redfish.Handle) bool {
	if len(s.queue) >= s.queueCap {
		return false
	}
	s.queue = append(s.queue, h)
	return true
}

// CurrentCue returns the cue handle of the transition currently
// playing, or the zero handle if nothing is active.
func (s *Sequencer) CurrentCue() redfish.Handle { return s.currentCueHandle }

// CurrentBarBeat reports the Conductor's metronome counters.
func (s *Sequencer) CurrentBarBeat() (int, int) {
	return s.conductor.Metronome().BarCounter(), s.conductor.Metronome().BeatCounter()
}

// IsPlaying reports whether music is currently active.
func (s *Sequencer) IsPlaying() bool { return s.playing }

// Stop arms a fade to silence over the stop-fade sample count starting
// at playhead, discards any queued follow-up, and resets stingers (spec
// §4.6 "stop requests set a deadline and schedule a fader to silence
// over 32 samples ending at the stop time, then clear state").
func (s *Sequencer) Stop(playhead int64) {
	const stopFadeSamples = 32
	s.layers[s.activeIdx].ScheduleFade(playhead, stopFadeSamples, 0, true)
	s.layers[1-s.activeIdx].ScheduleFade(playhead, stopFadeSamples, 0, true)
	s.stingers.Reset()
	s.followUp = redfish.InvalidHandle
	s.queue = s.queue[:0]
	s.pendingValid = false
}

// FadeOutAndStop resolves schedule/duration against the Conductor's
// current tempo/meter and arms a fade to silence across the resolved
// window, stopping playback once it completes (spec §4.7, §6
// "fade_out_and_stop(schedule_sync, duration_sync)").
func (s *Sequencer) FadeOutAndStop(schedule, duration Sync, playhead int64) {
	startTime := s.conductor.CalculateStartTime(schedule, playhead, s.playing)
	durationSamples := s.conductor.GetSyncSamples(duration)
	if durationSamples < 1 {
		durationSamples = 1
	}
	s.layers[s.activeIdx].ScheduleFade(startTime, durationSamples, 0, true)
	s.followUp = redfish.InvalidHandle
	s.queue = s.queue[:0]
	s.pendingValid = false
}

// Process advances the queue, the pending-transition window check, and
// both LayerSets/the StingerSet by one callback block (spec §4.6, §4.8
// step 2).
func (s *Sequencer) Process(playhead int64, blockSize int, refs *datacache.References, pool *buffer.Pool, messages *bridge.MessageQueue) {
	s.drainQueue(playhead, refs)

	request := s.currentRequest
	tracking := s.playing
	if s.pendingValid && !s.playing {
		request = s.pendingRequest
		tracking = true
	}
	s.conductor.Update(playhead, request, tracking, messages)

	if s.pendingValid && inFirstWindow(playhead, s.pendingRequest.StartTime, blockSize) {
		s.beginTransition(messages)
	}

	info := s.layers[s.activeIdx].Process(playhead, blockSize, refs, pool, false)
	_ = s.layers[1-s.activeIdx].Process(playhead, blockSize, refs, pool, false)
	s.stingers.Process(playhead, blockSize, refs, pool)

	if !s.playing || !info.Stopped {
		return
	}

	// The active LayerSet reported done (finite play count exhausted,
	// spec §9 Open Question 2: an infinite loop never reports done, so
	// a follow-up attached to a looping transition is unreachable until
	// something else stops it).
	s.playing = false
	followUp := s.followUp
	s.followUp = redfish.InvalidHandle
	s.currentRequest = TransitionRequest{}
	s.currentCueHandle = redfish.InvalidHandle
	pushMusicFinished(messages)
	if followUp.Valid() {
		s.Enqueue(followUp)
	}
}

// drainQueue resolves every queued transition handle into a pending
// TransitionRequest via the Conductor, and hands any attached stinger
// to the StingerSet immediately (spec §4.6: "when the new request has
// a stinger, hand it to the StingerSet").
func (s *Sequencer) drainQueue(playhead int64, refs *datacache.References) {
	for len(s.queue) > 0 {
		h := s.queue[0]
		s.queue = s.queue[1:]

		transition, ok := s.db.Transition(h)
		if !ok {
			continue
		}
		cue, ok := s.db.Cue(transition.CueHandle)
		if !ok {
			continue
		}

		musicLength := int64(-1)
		if cue.NumLayers > 0 {
			if data := refs.Get(cue.Layers[0].AudioHandle); data != nil {
				musicLength = int64(data.Frames)
			}
		}

		request := s.conductor.CreateRequest(h, transition, cue, musicLength, playhead, s.playing, s.db)
		s.pendingValid = true
		s.pendingRequest = request
		s.pendingTransition = transition
		s.pendingCue = cue

		if transition.Stinger.Valid() {
			if stinger, ok := s.db.Stinger(transition.Stinger); ok {
				if stingerCue, ok := s.db.Cue(stinger.CueHandle); ok {
					s.stingers.Play(request, stinger, stingerCue)
				}
			}
		}
	}
}

// beginTransition swaps the active LayerSet once the pending request's
// first window arrives: the outgoing layers are cut off exactly at the
// new start sample (CutAt), and the incoming layers start from it (spec
// §4.6 "swap current/pending; emit MusicTransitioned").
func (s *Sequencer) beginTransition(messages *bridge.MessageQueue) {
	req := s.pendingRequest
	transition := s.pendingTransition
	cue := s.pendingCue
	s.pendingValid = false

	if s.playing {
		s.layers[s.activeIdx].CutAt(req.StartTime)
	}

	newIdx := 1 - s.activeIdx
	s.layers[newIdx].Play(req, transition, cue)
	s.activeIdx = newIdx
	s.playing = true

	s.currentRequest = req
	s.currentTransition = transition
	s.currentCueHandle = transition.CueHandle
	s.followUp = transition.FollowUp

	s.conductor.UpdateLastCreatedRequest(req)
	pushMusicTransitioned(messages, transition.CueHandle)
}

func pushMusicTransitioned(messages *bridge.MessageQueue, cue redfish.Handle) {
	var buf [bridge.MessagePayloadSize]byte
	bridge.NewPayloadWriter(buf[:]).PutUint32(cue.Value)
	messages.Push(bridge.Message{Tag: bridge.MessageMusicTransitioned, Payload: buf})
}

func pushMusicFinished(messages *bridge.MessageQueue) {
	messages.Push(bridge.Message{Tag: bridge.MessageMusicFinished})
}
