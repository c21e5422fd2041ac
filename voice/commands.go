package voice

import (
	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/bridge"
	"github.com/z-e-chan/redfish/config"
	"github.com/z-e-chan/redfish/dsp"
)

func unpackHandle(kind redfish.Kind, v uint32) redfish.Handle {
	if v == 0 {
		return redfish.InvalidHandle
	}
	return redfish.Handle{Kind: kind, Value: v}
}

// packDistanceParams writes p in float32 precision (7 fields, 25 bytes)
// so CommandPlayVoice's positional variant still fits CommandPayloadSize
// alongside the PlayParams fields.
func packDistanceParams(w *bridge.PayloadWriter, p dsp.DistanceParams) {
	w.PutFloat32(float32(p.MinDistance))
	w.PutFloat32(float32(p.MaxDistance))
	w.PutUint8(uint8(p.Curve))
	w.PutFloat32(float32(p.MaxAttenuationDB))
	w.PutFloat32(float32(p.MaxHPFCutoffHz))
	w.PutFloat32(float32(p.MaxLPFCutoffHz))
	w.PutFloat32(float32(p.PanAngle))
}

func unpackDistanceParams(r *bridge.PayloadReader) dsp.DistanceParams {
	return dsp.DistanceParams{
		MinDistance:      float64(r.Float32()),
		MaxDistance:      float64(r.Float32()),
		Curve:            config.DistanceCurve(r.Uint8()),
		MaxAttenuationDB: float64(r.Float32()),
		MaxHPFCutoffHz:   float64(r.Float32()),
		MaxLPFCutoffHz:   float64(r.Float32()),
		PanAngle:         float64(r.Float32()),
	}
}

func packPlayParams(w *bridge.PayloadWriter, p PlayParams) {
	w.PutUint32(p.AudioHandle.Value)
	w.PutInt64(p.StartTime)
	w.PutFloat32(float32(p.Pitch))
	w.PutUint32(uint32(p.PlayCount))
	w.PutUint32(p.SoundEffect.Value)
	w.PutUint32(p.Stinger.Value)
	w.PutUint32(p.MixGroup.Value)
	w.PutFloat32(float32(p.InitialAmplitude))
}

func unpackPlayParams(r *bridge.PayloadReader) PlayParams {
	audioHandle := unpackHandle(redfish.KindAudioData, r.Uint32())
	startTime := r.Int64()
	pitch := float64(r.Float32())
	playCount := int(r.Uint32())
	soundEffect := unpackHandle(redfish.KindSoundEffect, r.Uint32())
	stinger := unpackHandle(redfish.KindStinger, r.Uint32())
	mixGroup := unpackHandle(redfish.KindMixGroup, r.Uint32())
	initialAmplitude := float64(r.Float32())
	return PlayParams{
		AudioHandle:      audioHandle,
		StartTime:        startTime,
		Pitch:            pitch,
		PlayCount:        playCount,
		SoundEffect:      soundEffect,
		Stinger:          stinger,
		MixGroup:         mixGroup,
		InitialAmplitude: initialAmplitude,
	}
}

// NewPlayVoiceCommand packs a non-positional CommandPlayVoice.
func NewPlayVoiceCommand(p PlayParams) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	packPlayParams(w, p)
	w.PutBool(false)
	return bridge.Command{Tag: bridge.CommandPlayVoice, Payload: buf}
}

// NewPlayPositionalVoiceCommand packs a positional CommandPlayVoice:
// PlayParams plus the DistanceParams the newly started voice's
// dsp.Positioning block should be seeded with.
func NewPlayPositionalVoiceCommand(p PlayParams, distParams dsp.DistanceParams) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	packPlayParams(w, p)
	w.PutBool(true)
	packDistanceParams(w, distParams)
	return bridge.Command{Tag: bridge.CommandPlayVoice, Payload: buf}
}

// StopScope selects which voices a CommandStopVoice targets.
type StopScope uint8

const (
	StopAll StopScope = iota
	StopBySoundEffect
	StopByStinger
	StopByAudioData
)

// NewStopVoiceCommand packs CommandStopVoice's payload: scope, handle
// (ignored for StopAll).
func NewStopVoiceCommand(scope StopScope, h redfish.Handle) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutUint8(uint8(scope))
	w.PutUint32(h.Value)
	return bridge.Command{Tag: bridge.CommandStopVoice, Payload: buf}
}

// FadeKind selects whether a CommandFadeVoice schedules a ramp or sets
// an immediate amplitude target.
type FadeKind uint8

const (
	FadeScheduled FadeKind = iota
	FadeImmediate
)

// NewFadeVoiceCommand packs a scheduled-ramp CommandFadeVoice targeting
// every voice owned by soundEffect.
func NewFadeVoiceCommand(soundEffect redfish.Handle, startTime int64, durationSamples int, target float64, stopOnDone bool) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutUint32(soundEffect.Value)
	w.PutUint8(uint8(FadeScheduled))
	w.PutInt64(startTime)
	w.PutUint32(uint32(durationSamples))
	w.PutFloat32(float32(target))
	w.PutBool(stopOnDone)
	return bridge.Command{Tag: bridge.CommandFadeVoice, Payload: buf}
}

// NewSetVoiceAmplitudeCommand packs an immediate-amplitude CommandFadeVoice
// targeting every voice owned by soundEffect.
func NewSetVoiceAmplitudeCommand(soundEffect redfish.Handle, amplitude float64) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutUint32(soundEffect.Value)
	w.PutUint8(uint8(FadeImmediate))
	w.PutInt64(0)
	w.PutUint32(0)
	w.PutFloat32(float32(amplitude))
	w.PutBool(false)
	return bridge.Command{Tag: bridge.CommandFadeVoice, Payload: buf}
}

// ApplyCommand executes one bridge.Command against vs, for the
// CommandTags voice owns (spec §4.2: dispatched by tag on the audio
// thread's drain step).
func (vs *VoiceSet) ApplyCommand(cmd bridge.Command, sampleRate float64, channels int) {
	r := bridge.NewPayloadReader(cmd.Payload[:])
	switch cmd.Tag {
	case bridge.CommandPlayVoice:
		p := unpackPlayParams(r)
		positional := r.Bool()
		if !positional {
			vs.CreateVoice(p)
			return
		}
		distParams := unpackDistanceParams(r)
		if v := vs.CreatePositionalVoice(p, sampleRate, channels); v != nil {
			v.Positioning().SetParams(distParams)
		}
	case bridge.CommandStopVoice:
		scope := StopScope(r.Uint8())
		h := r.Uint32()
		switch scope {
		case StopAll:
			vs.StopAll()
		case StopBySoundEffect:
			vs.StopBySoundEffectHandle(redfish.Handle{Kind: redfish.KindSoundEffect, Value: h})
		case StopByStinger:
			vs.StopByStingerHandle(redfish.Handle{Kind: redfish.KindStinger, Value: h})
		case StopByAudioData:
			vs.StopByAudioHandle(redfish.Handle{Kind: redfish.KindAudioData, Value: h})
		}
	case bridge.CommandFadeVoice:
		soundEffect := redfish.Handle{Kind: redfish.KindSoundEffect, Value: r.Uint32()}
		kind := FadeKind(r.Uint8())
		startTime := r.Int64()
		duration := int(r.Uint32())
		target := float64(r.Float32())
		stopOnDone := r.Bool()
		switch kind {
		case FadeScheduled:
			vs.FadeBySoundEffectHandle(soundEffect, startTime, duration, target, stopOnDone)
		case FadeImmediate:
			vs.SetAmplitudeBySoundEffectHandle(soundEffect, target)
		}
	}
}
