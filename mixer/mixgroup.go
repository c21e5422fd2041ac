// Package mixer implements the priority-ordered summing mixer: MixGroup,
// Send, and SummingMixer compose mix items into the interleaved device
// output buffer through per-group plug-in chains, sends, and fades (spec
// §4.7).
package mixer

import (
	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/config"
	"github.com/z-e-chan/redfish/dsp"
	"github.com/z-e-chan/redfish/voice"
)

// MixGroup is the audio thread's per-group state (spec §3
// "MixGroupState"): its output/send routing, its plug-in chain, and the
// accumulator MixItem that SummingMixer.Sum zeroes and fills each
// callback.
type MixGroup struct {
	Handle   redfish.Handle
	Output   redfish.Handle
	IsMaster bool
	VolumeDB float64
	Priority int

	sends   [config.MaxMixGroupSends]int   // index into SummingMixer.sendPool, or -1
	plugins [config.MaxMixGroupPlugins]int // index into SummingMixer.plugPool, or -1

	accumulator *buffer.MixItem
	volumeGain  *dsp.Gain

	// fader/fadeGain implement CommandFadeMixGroups: a scheduled ramp to a
	// target dB independent of the user's own volume setting, used for
	// musical ducking (spec §4.7 "Fades across mix groups"). voice.Fader
	// is reused verbatim rather than re-implemented (spec §9's ownership
	// split never said a mix group's fade envelope had to be a distinct
	// type from a voice's).
	fader    voice.Fader
	fadeGain *dsp.Gain

	peak  float32
	level float32
}

func newMixGroup(h redfish.Handle, isMaster bool, channels, frames int) *MixGroup {
	g := &MixGroup{
		Handle:      h,
		IsMaster:    isMaster,
		accumulator: buffer.NewMixItem(channels, frames),
		volumeGain:  dsp.NewGain(),
		fadeGain:    dsp.NewGain(),
	}
	for i := range g.sends {
		g.sends[i] = -1
	}
	for i := range g.plugins {
		g.plugins[i] = -1
	}
	return g
}

// Peak returns the group's most recently measured absolute peak sample.
func (g *MixGroup) Peak() float32 { return g.peak }

// Level returns the group's smoothed RMS-ish level, supplemental
// metering carried over from original_source/meter.cpp (SPEC_FULL §4).
func (g *MixGroup) Level() float32 { return g.level }

const levelSmoothing = 0.9
