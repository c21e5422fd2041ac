package mixer

import (
	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/bridge"
	"github.com/z-e-chan/redfish/config"
	"github.com/z-e-chan/redfish/dsp"
)

// Every mix-group handle packed into a Command payload is a plain
// uint32: the Kind half of redfish.Handle is always KindMixGroup for
// these tags, so it is reconstructed on decode rather than spending 5
// bytes per handle on the wire (spec §4.2 payloads are packed tight
// enough to fit CommandPayloadSize).
func packHandle(h redfish.Handle) uint32 { return h.Value }

func unpackMixGroupHandle(v uint32) redfish.Handle {
	if v == 0 {
		return redfish.InvalidHandle
	}
	return redfish.Handle{Kind: redfish.KindMixGroup, Value: v}
}

// NewCreateMixGroupCommand packs CommandCreateMixGroup's payload:
// handle, isMaster.
func NewCreateMixGroupCommand(h redfish.Handle, isMaster bool) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutUint32(packHandle(h))
	w.PutBool(isMaster)
	return bridge.Command{Tag: bridge.CommandCreateMixGroup, Payload: buf}
}

// NewDestroyMixGroupCommand packs CommandDestroyMixGroup's payload: handle.
func NewDestroyMixGroupCommand(h redfish.Handle) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutUint32(packHandle(h))
	return bridge.Command{Tag: bridge.CommandDestroyMixGroup, Payload: buf}
}

// NewSetMixGroupOutputCommand packs CommandSetMixGroupOutput's payload:
// handle, output.
func NewSetMixGroupOutputCommand(h, output redfish.Handle) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutUint32(packHandle(h))
	w.PutUint32(packHandle(output))
	return bridge.Command{Tag: bridge.CommandSetMixGroupOutput, Payload: buf}
}

// NewCreateSendCommand packs CommandCreateSend's payload: source, slot,
// dest, amplitude.
func NewCreateSendCommand(source redfish.Handle, slot int, dest redfish.Handle, amplitude float64) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutUint32(packHandle(source))
	w.PutUint32(uint32(slot))
	w.PutUint32(packHandle(dest))
	w.PutFloat64(amplitude)
	return bridge.Command{Tag: bridge.CommandCreateSend, Payload: buf}
}

// NewDestroySendCommand packs CommandDestroySend's payload: source, slot.
func NewDestroySendCommand(source redfish.Handle, slot int) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutUint32(packHandle(source))
	w.PutUint32(uint32(slot))
	return bridge.Command{Tag: bridge.CommandDestroySend, Payload: buf}
}

// NewCreatePluginCommand packs CommandCreatePlugin's payload: handle,
// slot, plugin type. The already-constructed dsp.Block rides in the
// Command's Ref field (see bridge.Command's doc comment) since a live
// DSP block, possibly owning a convolution kernel or delay line, does
// not fit in 80 bytes and must not be duplicated via re-construction on
// the audio thread.
func NewCreatePluginCommand(h redfish.Handle, slot int, t PluginType, cfg config.EngineConfig) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutUint32(packHandle(h))
	w.PutUint32(uint32(slot))
	return bridge.Command{Tag: bridge.CommandCreatePlugin, Payload: buf, Ref: NewPlugin(t, cfg)}
}

// NewDestroyPluginCommand packs CommandDestroyPlugin's payload: handle, slot.
func NewDestroyPluginCommand(h redfish.Handle, slot int) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutUint32(packHandle(h))
	w.PutUint32(uint32(slot))
	return bridge.Command{Tag: bridge.CommandDestroyPlugin, Payload: buf}
}

// NewSetMixGroupVolumeCommand packs CommandSetMixGroupVolume's payload:
// handle, volumeDB.
func NewSetMixGroupVolumeCommand(h redfish.Handle, volumeDB float64) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutUint32(packHandle(h))
	w.PutFloat64(volumeDB)
	return bridge.Command{Tag: bridge.CommandSetMixGroupVolume, Payload: buf}
}

// MaxFadeGroups bounds how many handles CommandFadeMixGroups can carry
// inline: a 4-byte handle count plus 4 bytes per handle must fit in
// 80 bytes alongside the 8-byte targetDB, 8-byte startTime, and 4-byte
// duration fields.
const MaxFadeGroups = (bridge.CommandPayloadSize - 8 - 8 - 4 - 4) / 4

// NewFadeMixGroupsCommand packs CommandFadeMixGroups's payload:
// targetDB, startTime, durationSamples, count, then up to
// MaxFadeGroups handles. handles beyond MaxFadeGroups are silently
// dropped; callers needing more groups issue multiple commands.
func NewFadeMixGroupsCommand(handles []redfish.Handle, targetDB float64, startTime int64, durationSamples int) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutFloat64(targetDB)
	w.PutInt64(startTime)
	w.PutUint32(uint32(durationSamples))
	n := len(handles)
	if n > MaxFadeGroups {
		n = MaxFadeGroups
	}
	w.PutUint32(uint32(n))
	for i := 0; i < n; i++ {
		w.PutUint32(packHandle(handles[i]))
	}
	return bridge.Command{Tag: bridge.CommandFadeMixGroups, Payload: buf}
}

// ApplyCommand executes one bridge.Command against sm, for the
// CommandTags mixer owns. It is the audio thread's handler: called only
// from the command-drain step of the callback, never concurrently with
// Sum.
func (sm *SummingMixer) ApplyCommand(cmd bridge.Command) {
	r := bridge.NewPayloadReader(cmd.Payload[:])
	switch cmd.Tag {
	case bridge.CommandCreateMixGroup:
		h := unpackMixGroupHandle(r.Uint32())
		isMaster := r.Bool()
		sm.CreateGroup(h, isMaster)
	case bridge.CommandDestroyMixGroup:
		h := unpackMixGroupHandle(r.Uint32())
		sm.DestroyGroup(h)
	case bridge.CommandSetMixGroupOutput:
		h := unpackMixGroupHandle(r.Uint32())
		output := unpackMixGroupHandle(r.Uint32())
		sm.SetOutput(h, output)
	case bridge.CommandCreateSend:
		source := unpackMixGroupHandle(r.Uint32())
		slot := int(r.Uint32())
		dest := unpackMixGroupHandle(r.Uint32())
		amplitude := r.Float64()
		sm.CreateSend(source, slot, dest, amplitude)
	case bridge.CommandDestroySend:
		source := unpackMixGroupHandle(r.Uint32())
		slot := int(r.Uint32())
		sm.DestroySend(source, slot)
	case bridge.CommandCreatePlugin:
		h := unpackMixGroupHandle(r.Uint32())
		slot := int(r.Uint32())
		block, _ := cmd.Ref.(dsp.Block)
		sm.CreatePlugin(h, slot, block)
	case bridge.CommandDestroyPlugin:
		h := unpackMixGroupHandle(r.Uint32())
		slot := int(r.Uint32())
		sm.DestroyPlugin(h, slot)
	case bridge.CommandSetMixGroupVolume:
		h := unpackMixGroupHandle(r.Uint32())
		db := r.Float64()
		sm.SetVolumeDB(h, db)
	case bridge.CommandFadeMixGroups:
		targetDB := r.Float64()
		startTime := r.Int64()
		duration := int(r.Uint32())
		n := int(r.Uint32())
		// A fade-mix-groups command is issued rarely (a musical ducking
		// event), not once per callback, so the slice here doesn't need
		// to come from a pool the way Sum's hot path does.
		handles := make([]redfish.Handle, n)
		for i := 0; i < n; i++ {
			handles[i] = unpackMixGroupHandle(r.Uint32())
		}
		sm.FadeGroups(handles, targetDB, startTime, duration)
	}
}
