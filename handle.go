// Package redfish is a real-time audio engine for games: a fixed pool of
// polyphonic playback voices, a music cue/transition sequencer, and a
// priority-ordered summing mixer, all driven from a single hard
// real-time pull callback and fed by a lock-free command/message bridge
// from one or more control threads.
//
// This root package holds only the Handle primitive shared by every
// sub-package (buffer, bridge, datacache, dsp, voice, music, mixer,
// timeline); github.com/z-e-chan/redfish/facade wires those sub-packages
// together behind a control-side API safe to call from any thread other
// than the audio callback itself.
package redfish

import "sync/atomic"

// Kind distinguishes the namespace a Handle was minted in. Two handles
// with the same numeric Value but different Kind never compare equal.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindAudioData
	KindSoundEffect
	KindMixGroup
	KindCue
	KindTransition
	KindStinger
)

func (k Kind) String() string {
	switch k {
	case KindAudioData:
		return "audio-data"
	case KindSoundEffect:
		return "sound-effect"
	case KindMixGroup:
		return "mix-group"
	case KindCue:
		return "cue"
	case KindTransition:
		return "transition"
	case KindStinger:
		return "stinger"
	default:
		return "invalid"
	}
}

// Handle is an opaque, monotonically increasing 32-bit identifier for an
// externally referenced entity. The zero value is always invalid.
// Handles are created only on the control thread, compared by value, and
// never dereferenced.
type Handle struct {
	Kind  Kind
	Value uint32
}

// Valid reports whether h refers to a real entity (Value != 0).
func (h Handle) Valid() bool { return h.Value != 0 }

// InvalidHandle is the zero Handle, returned whenever construction fails.
var InvalidHandle = Handle{}

// HandleAllocator mints monotonically increasing handles for one Kind.
// Safe for concurrent use, though in practice only the control thread
// calls Next.
type HandleAllocator struct {
	kind    Kind
	counter uint32
}

// NewHandleAllocator returns an allocator that mints handles of kind.
func NewHandleAllocator(kind Kind) *HandleAllocator {
	return &HandleAllocator{kind: kind}
}

// Next returns the next handle in sequence; it never returns the zero
// value, so Value 0 can always mean "invalid".
func (a *HandleAllocator) Next() Handle {
	v := atomic.AddUint32(&a.counter, 1)
	return Handle{Kind: a.kind, Value: v}
}
