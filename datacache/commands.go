package datacache

import (
	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/bridge"
)

// NewLoadAudioDataCommand packs CommandLoadAudioData's payload: just the
// handle the control thread already allocated via Cache.Load. The
// decoded AudioData itself travels through Ref, since a *AudioData
// pointer has no safe fixed-byte encoding (bridge.Command's doc
// comment).
func NewLoadAudioDataCommand(h redfish.Handle, data *AudioData) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutUint32(h.Value)
	return bridge.Command{Tag: bridge.CommandLoadAudioData, Payload: buf, Ref: data}
}

// NewUnloadAudioDataCommand packs CommandUnloadAudioData's payload: the
// handle whose reference the audio thread must drop before the control
// thread frees the underlying slot (spec §4.3, §4.5 deferred delete).
func NewUnloadAudioDataCommand(h redfish.Handle) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutUint32(h.Value)
	return bridge.Command{Tag: bridge.CommandUnloadAudioData, Payload: buf}
}

// NewClearAudioDataReferenceCommand packs CommandClearAudioDataReference,
// a direct References.Clear primitive kept separate from
// CommandUnloadAudioData for callers that need to drop a reference
// without driving the rest of the unload sequence (e.g. recovering from
// a handle reused out of band).
func NewClearAudioDataReferenceCommand(h redfish.Handle) bridge.Command {
	var buf [bridge.CommandPayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutUint32(h.Value)
	return bridge.Command{Tag: bridge.CommandClearAudioDataReference, Payload: buf}
}

// DecodeHandle unpacks the single redfish.KindAudioData handle every
// datacache command carries as its first field.
func DecodeHandle(cmd bridge.Command) redfish.Handle {
	r := bridge.NewPayloadReader(cmd.Payload[:])
	v := r.Uint32()
	if v == 0 {
		return redfish.InvalidHandle
	}
	return redfish.Handle{Kind: redfish.KindAudioData, Value: v}
}

// ApplyCommand executes one bridge.Command against refs, for the
// CommandTags datacache owns. CommandLoadAudioData installs the
// decoded AudioData carried in cmd.Ref; CommandUnloadAudioData and
// CommandClearAudioDataReference both clear the slot, the former as
// part of the full unload sequence (the caller is also responsible for
// stopping any voice still referencing the handle) and the latter as a
// standalone primitive.
func (r *References) ApplyCommand(cmd bridge.Command) {
	switch cmd.Tag {
	case bridge.CommandLoadAudioData:
		h := DecodeHandle(cmd)
		data, _ := cmd.Ref.(*AudioData)
		if data != nil {
			r.Set(h, data)
		}
	case bridge.CommandUnloadAudioData, bridge.CommandClearAudioDataReference:
		r.Clear(DecodeHandle(cmd))
	}
}
