package music

import (
	"github.com/z-e-chan/redfish/dsp"
	"github.com/z-e-chan/redfish/voice"
)

// musicVoice wraps a regular voice.Voice with a Play helper that folds
// a cue's and layer's authored gains (and an external envelope
// amplitude from fade-ins/outs) into one linear amplitude before
// handing off to voice.BaseVoice (spec §4.6 "each cue layer plays
// through its own voice, gains composed at play time").
type musicVoice struct {
	*voice.Voice
}

func newMusicVoice() *musicVoice {
	return &musicVoice{Voice: voice.NewVoice()}
}

// play starts layer layerIndex of cue at startTime for playCount loops
// (0 = loop forever), scaling by amplitude on top of the cue's and
// layer's own gain.
func (mv *musicVoice) play(startTime int64, cue CueRecord, playCount, layerIndex int, amplitude float64) {
	layer := cue.Layers[layerIndex]
	cueAmp := dsp.DBToAmp(cue.GainDB)
	layerAmp := dsp.DBToAmp(layer.GainDB)
	final := cueAmp * layerAmp * amplitude

	mv.Voice.Play(voice.PlayParams{
		AudioHandle:      layer.AudioHandle,
		StartTime:        startTime,
		Pitch:            1.0,
		PlayCount:        playCount,
		MixGroup:         layer.MixGroup,
		InitialAmplitude: final,
	})
}
