package music

import "github.com/z-e-chan/redfish"

// maxCueLayers mirrors config.MaxCueLayers; duplicated here (rather
// than importing config) to keep CueRecord a fixed-size value with no
// slice, so installing one via CommandCreateCue never allocates on the
// audio thread.
const maxCueLayers = 4

// Layer is one authored layer of a Cue: a decoded asset, its
// destination mix group, and a per-layer gain (spec §3 "Cue ... carries
// up to MAX_CUE_LAYERS layers (each layer = audio-data index + mix
// group + per-layer gain)").
type Layer struct {
	AudioHandle redfish.Handle
	MixGroup    redfish.Handle
	GainDB      float64
}

// CueRecord is an authored musical unit: up to maxCueLayers layers
// played in lockstep, plus meter/tempo/gain (spec §3 Cue). Layers is a
// fixed array, not a slice, so the record carries no heap pointer.
type CueRecord struct {
	Handle    redfish.Handle
	Layers    [maxCueLayers]Layer
	NumLayers int
	Meter     Meter
	Tempo     float64
	GainDB    float64
}

// ActiveLayers returns the populated prefix of rec.Layers.
func (rec CueRecord) ActiveLayers() []Layer {
	return rec.Layers[:rec.NumLayers]
}

// CompareOp is a bar/beat threshold comparison a TransitionCondition
// can require (spec §3: "<,≤,>,≥,= bars; <,≤,>,≥,= beats").
type CompareOp int

const (
	CompareNone CompareOp = iota
	CompareLess
	CompareLessEqual
	CompareGreater
	CompareGreaterEqual
	CompareEqual
)

func (op CompareOp) match(value, threshold int) bool {
	switch op {
	case CompareLess:
		return value < threshold
	case CompareLessEqual:
		return value <= threshold
	case CompareGreater:
		return value > threshold
	case CompareGreaterEqual:
		return value >= threshold
	case CompareEqual:
		return value == threshold
	default:
		return true
	}
}

// TransitionCondition is the user-data-matched predicate a
// play(user_data) call resolves against (spec §3 "TransitionCondition
// carries 16 bytes of opaque user-matching payload, an optional
// required current cue handle, optional bar/beat thresholds, and a
// bitflag set").
type TransitionCondition struct {
	Payload        [16]byte
	RequiredCue    redfish.Handle // zero means "any cue"
	EvenBars       bool
	OddBars        bool
	BarOp          CompareOp
	BarThreshold   int
	BeatOp         CompareOp
	BeatThreshold  int
}

// Matches reports whether condition c is satisfied by the given
// playback state. userData must equal c.Payload byte for byte; a
// RequiredCue of zero matches any currently playing cue.
func (c TransitionCondition) Matches(userData [16]byte, currentCue redfish.Handle, bar, beat int) bool {
	if userData != c.Payload {
		return false
	}
	if c.RequiredCue.Valid() && c.RequiredCue != currentCue {
		return false
	}
	if c.EvenBars && bar%2 != 0 {
		return false
	}
	if c.OddBars && bar%2 == 0 {
		return false
	}
	if !c.BarOp.match(bar, c.BarThreshold) {
		return false
	}
	if !c.BeatOp.match(beat, c.BeatThreshold) {
		return false
	}
	return true
}

// TransitionRecord is a policy for entering a cue (spec §3
// "Transition"): a scheduling Sync, play count (1 = once, 0 = loop), an
// optional follow-up transition and stinger, and a match condition.
type TransitionRecord struct {
	Handle    redfish.Handle
	CueHandle redfish.Handle
	Sync      Sync
	PlayCount int
	FollowUp  redfish.Handle // zero means none
	Stinger   redfish.Handle // zero means none
	Condition TransitionCondition
}

// StingerRecord is an overlay cue played during transitions (spec §3
// "Stinger").
type StingerRecord struct {
	Handle    redfish.Handle
	CueHandle redfish.Handle
	Sync      Sync
	GainDB    float64
}

// slot pairs a handle with its record; a zero handle marks a free slot.
type slot[T any] struct {
	handle redfish.Handle
	rec    T
}

// table is a fixed-capacity, linearly-scanned slot array keyed by
// Handle, the same shape as datacache.References: bounded (spec
// MAX_CUES/MAX_TRANSITIONS/MAX_STINGERS are all 64), so a linear scan
// per lookup is cheap and the table never allocates past construction
// (spec §5 "no allocation occurs inside the audio callback").
type table[T any] struct {
	slots []slot[T]
}

func newTable[T any](capacity int) *table[T] {
	return &table[T]{slots: make([]slot[T], capacity)}
}

// Set installs rec under handle h, reusing h's existing slot if present
// or claiming the first free one. Reports false if the table is full
// and h is new (spec §7 "attempts to create more than MAX_* entities").
func (t *table[T]) Set(h redfish.Handle, rec T) bool {
	free := -1
	for i := range t.slots {
		if t.slots[i].handle == h {
			t.slots[i].rec = rec
			return true
		}
		if free == -1 && !t.slots[i].handle.Valid() {
			free = i
		}
	}
	if free == -1 {
		return false
	}
	t.slots[free] = slot[T]{handle: h, rec: rec}
	return true
}

// Clear removes the record for handle h, if any.
func (t *table[T]) Clear(h redfish.Handle) {
	for i := range t.slots {
		if t.slots[i].handle == h {
			var zero slot[T]
			t.slots[i] = zero
			return
		}
	}
}

// Get returns the record for handle h and whether it was found.
func (t *table[T]) Get(h redfish.Handle) (T, bool) {
	for i := range t.slots {
		if t.slots[i].handle == h {
			return t.slots[i].rec, true
		}
	}
	var zero T
	return zero, false
}

// Find returns the first handle/record satisfying pred.
func (t *table[T]) Find(pred func(T) bool) (redfish.Handle, T, bool) {
	for i := range t.slots {
		if t.slots[i].handle.Valid() && pred(t.slots[i].rec) {
			return t.slots[i].handle, t.slots[i].rec, true
		}
	}
	var zero T
	return redfish.InvalidHandle, zero, false
}

// Database is the audio thread's own store of Cue/Transition/Stinger
// authoring records (spec §3 "Cue/Transition/Stinger authoring
// records"), installed by CreateCue/CreateTransition/CreateStinger
// command handlers and never touched by the control thread directly.
type Database struct {
	cues        *table[CueRecord]
	transitions *table[TransitionRecord]
	stingers    *table[StingerRecord]
}

// NewDatabase allocates a Database sized for the given per-kind
// capacities (spec MAX_CUES, MAX_TRANSITIONS, MAX_STINGERS).
func NewDatabase(maxCues, maxTransitions, maxStingers int) *Database {
	return &Database{
		cues:        newTable[CueRecord](maxCues),
		transitions: newTable[TransitionRecord](maxTransitions),
		stingers:    newTable[StingerRecord](maxStingers),
	}
}

func (d *Database) CreateCue(rec CueRecord) bool              { return d.cues.Set(rec.Handle, rec) }
func (d *Database) DestroyCue(h redfish.Handle)                { d.cues.Clear(h) }
func (d *Database) Cue(h redfish.Handle) (CueRecord, bool)     { return d.cues.Get(h) }

func (d *Database) CreateTransition(rec TransitionRecord) bool { return d.transitions.Set(rec.Handle, rec) }
func (d *Database) DestroyTransition(h redfish.Handle)          { d.transitions.Clear(h) }
func (d *Database) Transition(h redfish.Handle) (TransitionRecord, bool) {
	return d.transitions.Get(h)
}

func (d *Database) CreateStinger(rec StingerRecord) bool { return d.stingers.Set(rec.Handle, rec) }
func (d *Database) DestroyStinger(h redfish.Handle)        { d.stingers.Clear(h) }
func (d *Database) Stinger(h redfish.Handle) (StingerRecord, bool) {
	return d.stingers.Get(h)
}

// FindTransition returns the first transition whose Condition matches
// the given user data / current cue / bar / beat (spec §6
// "play(user_data) (condition-matched)").
func (d *Database) FindTransition(userData [16]byte, currentCue redfish.Handle, bar, beat int) (redfish.Handle, bool) {
	h, _, ok := d.transitions.Find(func(t TransitionRecord) bool {
		return t.Condition.Matches(userData, currentCue, bar, beat)
	})
	return h, ok
}
