package music

import (
	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/bridge"
)

func packHandle(h redfish.Handle) uint32 { return h.Value }

func unpackHandle(kind redfish.Kind, v uint32) redfish.Handle {
	if v == 0 {
		return redfish.InvalidHandle
	}
	return redfish.Handle{Kind: kind, Value: v}
}

// packSync writes an 11-byte Sync: mode, reference point, value, factor,
// time-in-seconds (downcast to float32, same budget trade-off the rest
// of the command pack uses for everything but start times).
func packSync(w *bridge.PayloadWriter, s Sync) {
	w.PutUint8(uint8(s.Mode))
	w.PutUint8(uint8(s.ReferencePoint))
	w.PutUint8(uint8(s.Value))
	w.PutUint32(uint32(s.Factor))
	w.PutFloat32(float32(s.TimeSeconds))
}

func unpackSync(r *bridge.PayloadReader) Sync {
	mode := SyncMode(r.Uint8())
	ref := ReferencePoint(r.Uint8())
	value := SyncValue(r.Uint8())
	factor := int(r.Uint32())
	seconds := float64(r.Float32())
	return Sync{Mode: mode, ReferencePoint: ref, Value: value, Factor: factor, TimeSeconds: seconds}
}

// packCondition writes a 32-byte TransitionCondition.
func packCondition(w *bridge.PayloadWriter, c TransitionCondition) {
	for _, b := range c.Payload {
		w.PutUint8(b)
	}
	w.PutUint32(packHandle(c.RequiredCue))
	w.PutBool(c.EvenBars)
	w.PutBool(c.OddBars)
	w.PutUint8(uint8(c.BarOp))
	w.PutUint32(uint32(c.BarThreshold))
	w.PutUint8(uint8(c.BeatOp))
	w.PutUint32(uint32(c.BeatThreshold))
}

func unpackCondition(r *bridge.PayloadReader) TransitionCondition {
	var c TransitionCondition
	for i := range c.Payload {
		c.Payload[i] = r.Uint8()
	}
	c.RequiredCue = unpackHandle(redfish.KindCue, r.Uint32())
	c.EvenBars = r.Bool()
	c.OddBars = r.Bool()
	c.BarOp = CompareOp(r.Uint8())
	c.BarThreshold = int(int32(r.Uint32()))
	c.BeatOp = CompareOp(r.Uint8())
	c.BeatThreshold = int(int32(r.Uint32()))
	return c
}

// NewCreateCueCommand packs a CueRecord into a CommandCreateCue (63
// bytes: handle(4) + 4 layers × {audio(4)+mixgroup(4)+gainDB-as-f32(4)}
// + numLayers(1) + meter(2) + tempo-as-f32(4) + gainDB-as-f32(4)).
func NewCreateCueCommand(rec CueRecord) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutUint32(packHandle(rec.Handle))
	for i := 0; i < maxCueLayers; i++ {
		l := rec.Layers[i]
		w.PutUint32(packHandle(l.AudioHandle))
		w.PutUint32(packHandle(l.MixGroup))
		w.PutFloat32(float32(l.GainDB))
	}
	w.PutUint8(uint8(rec.NumLayers))
	w.PutUint8(uint8(rec.Meter.Top))
	w.PutUint8(uint8(rec.Meter.Bottom))
	w.PutFloat32(float32(rec.Tempo))
	w.PutFloat32(float32(rec.GainDB))
	return bridge.Command{Tag: bridge.CommandCreateCue, Payload: buf}
}

func unpackCueRecord(r *bridge.PayloadReader) CueRecord {
	var rec CueRecord
	rec.Handle = unpackHandle(redfish.KindCue, r.Uint32())
	for i := 0; i < maxCueLayers; i++ {
		audio := unpackHandle(redfish.KindAudioData, r.Uint32())
		mix := unpackHandle(redfish.KindMixGroup, r.Uint32())
		gain := float64(r.Float32())
		rec.Layers[i] = Layer{AudioHandle: audio, MixGroup: mix, GainDB: gain}
	}
	rec.NumLayers = int(r.Uint8())
	rec.Meter.Top = int(r.Uint8())
	rec.Meter.Bottom = int(r.Uint8())
	rec.Tempo = float64(r.Float32())
	rec.GainDB = float64(r.Float32())
	return rec
}

// NewDestroyCueCommand packs a CommandDestroyCue.
func NewDestroyCueCommand(h redfish.Handle) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	bridge.NewPayloadWriter(buf[:]).PutUint32(packHandle(h))
	return bridge.Command{Tag: bridge.CommandDestroyCue, Payload: buf}
}

// NewCreateTransitionCommand packs a TransitionRecord into a
// CommandCreateTransition (63 bytes: handle(4)+cue(4)+sync(11)+
// playCount(4)+followUp(4)+stinger(4)+condition(32)).
func NewCreateTransitionCommand(rec TransitionRecord) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutUint32(packHandle(rec.Handle))
	w.PutUint32(packHandle(rec.CueHandle))
	packSync(w, rec.Sync)
	w.PutUint32(uint32(rec.PlayCount))
	w.PutUint32(packHandle(rec.FollowUp))
	w.PutUint32(packHandle(rec.Stinger))
	packCondition(w, rec.Condition)
	return bridge.Command{Tag: bridge.CommandCreateTransition, Payload: buf}
}

func unpackTransitionRecord(r *bridge.PayloadReader) TransitionRecord {
	var rec TransitionRecord
	rec.Handle = unpackHandle(redfish.KindTransition, r.Uint32())
	rec.CueHandle = unpackHandle(redfish.KindCue, r.Uint32())
	rec.Sync = unpackSync(r)
	rec.PlayCount = int(r.Uint32())
	rec.FollowUp = unpackHandle(redfish.KindTransition, r.Uint32())
	rec.Stinger = unpackHandle(redfish.KindStinger, r.Uint32())
	rec.Condition = unpackCondition(r)
	return rec
}

// NewDestroyTransitionCommand packs a CommandDestroyTransition.
func NewDestroyTransitionCommand(h redfish.Handle) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	bridge.NewPayloadWriter(buf[:]).PutUint32(packHandle(h))
	return bridge.Command{Tag: bridge.CommandDestroyTransition, Payload: buf}
}

// NewCreateStingerCommand packs a StingerRecord into a
// CommandCreateStinger (23 bytes: handle(4)+cue(4)+sync(11)+gainDB-as-
// f32(4)).
func NewCreateStingerCommand(rec StingerRecord) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutUint32(packHandle(rec.Handle))
	w.PutUint32(packHandle(rec.CueHandle))
	packSync(w, rec.Sync)
	w.PutFloat32(float32(rec.GainDB))
	return bridge.Command{Tag: bridge.CommandCreateStinger, Payload: buf}
}

func unpackStingerRecord(r *bridge.PayloadReader) StingerRecord {
	var rec StingerRecord
	rec.Handle = unpackHandle(redfish.KindStinger, r.Uint32())
	rec.CueHandle = unpackHandle(redfish.KindCue, r.Uint32())
	rec.Sync = unpackSync(r)
	rec.GainDB = float64(r.Float32())
	return rec
}

// NewDestroyStingerCommand packs a CommandDestroyStinger.
func NewDestroyStingerCommand(h redfish.Handle) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	bridge.NewPayloadWriter(buf[:]).PutUint32(packHandle(h))
	return bridge.Command{Tag: bridge.CommandDestroyStinger, Payload: buf}
}

// NewPlayTransitionCommand queues transition h directly (spec §6
// "play(transition)").
func NewPlayTransitionCommand(h redfish.Handle) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutBool(false)
	w.PutUint32(packHandle(h))
	return bridge.Command{Tag: bridge.CommandPlayTransition, Payload: buf}
}

// NewPlayTransitionByConditionCommand queues whichever transition's
// Condition first matches userData (spec §6 "play(user_data)
// (condition-matched)"); the match itself happens on the audio thread,
// since the Database it is matched against never leaves that thread.
func NewPlayTransitionByConditionCommand(userData [16]byte) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutBool(true)
	for _, b := range userData {
		w.PutUint8(b)
	}
	return bridge.Command{Tag: bridge.CommandPlayTransition, Payload: buf}
}

// NewPlayStingerCommand packs a CommandPlayStinger.
func NewPlayStingerCommand(h redfish.Handle) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	bridge.NewPayloadWriter(buf[:]).PutUint32(packHandle(h))
	return bridge.Command{Tag: bridge.CommandPlayStinger, Payload: buf}
}

// NewStopMusicCommand packs a CommandStopMusic.
func NewStopMusicCommand() bridge.Command {
	return bridge.Command{Tag: bridge.CommandStopMusic}
}

// NewFadeOutAndStopMusicCommand packs a CommandFadeOutAndStopMusic (22
// bytes: two packed Syncs).
func NewFadeOutAndStopMusicCommand(scheduleSync, durationSync Sync) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	packSync(w, scheduleSync)
	packSync(w, durationSync)
	return bridge.Command{Tag: bridge.CommandFadeOutAndStopMusic, Payload: buf}
}

// ApplyCommand dispatches cmd to the Database and Sequencer. playhead is
// needed to resolve Stop/FadeOutAndStop into absolute sample times.
func (m *MusicManager) ApplyCommand(cmd bridge.Command, playhead int64) {
	r := bridge.NewPayloadReader(cmd.Payload[:])
	switch cmd.Tag {
	case bridge.CommandCreateCue:
		m.db.CreateCue(unpackCueRecord(r))
	case bridge.CommandDestroyCue:
		m.db.DestroyCue(unpackHandle(redfish.KindCue, r.Uint32()))
	case bridge.CommandCreateTransition:
		m.db.CreateTransition(unpackTransitionRecord(r))
	case bridge.CommandDestroyTransition:
		m.db.DestroyTransition(unpackHandle(redfish.KindTransition, r.Uint32()))
	case bridge.CommandCreateStinger:
		m.db.CreateStinger(unpackStingerRecord(r))
	case bridge.CommandDestroyStinger:
		m.db.DestroyStinger(unpackHandle(redfish.KindStinger, r.Uint32()))
	case bridge.CommandPlayTransition:
		byCondition := r.Bool()
		if !byCondition {
			h := unpackHandle(redfish.KindTransition, r.Uint32())
			m.sequencer.Enqueue(h)
			return
		}
		var userData [16]byte
		for i := range userData {
			userData[i] = r.Uint8()
		}
		bar, beat := m.sequencer.CurrentBarBeat()
		if h, ok := m.db.FindTransition(userData, m.sequencer.CurrentCue(), bar, beat); ok {
			m.sequencer.Enqueue(h)
		}
	case bridge.CommandPlayStinger:
		h := unpackHandle(redfish.KindStinger, r.Uint32())
		if stinger, ok := m.db.Stinger(h); ok {
			if cue, ok := m.db.Cue(stinger.CueHandle); ok {
				req := TransitionRequest{StingerStartTime: playhead}
				m.stingers.Play(req, stinger, cue)
			}
		}
	case bridge.CommandStopMusic:
		m.sequencer.Stop(playhead)
	case bridge.CommandFadeOutAndStopMusic:
		schedule := unpackSync(r)
		duration := unpackSync(r)
		m.sequencer.FadeOutAndStop(schedule, duration, playhead)
	}
}
