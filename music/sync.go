// Package music implements the cue/transition/stinger sequencer,
// bar/beat-synchronised timing math, and layered music playback (spec
// §4.6): BeatCalculator, Metronome, Conductor, LayerSet, StingerSet,
// Sequencer, and the MusicManager that orchestrates all of them behind
// a small control-side surface.
package music

// SyncMode selects whether a Sync resolves against musical time or wall
// time (spec §3 "Sync").
type SyncMode int

const (
	SyncTime SyncMode = iota
	SyncMusical
)

// ReferencePoint anchors a Musical Sync's bar-relative arithmetic.
type ReferencePoint int

const (
	ReferenceBar ReferencePoint = iota
	ReferenceCueStart
)

// SyncValue is the musical note division (or transport verb) a Musical
// Sync resolves against.
type SyncValue int

const (
	SyncCut SyncValue = iota
	SyncQueue
	SyncBar
	SyncWhole
	SyncHalf
	SyncQuarter
	SyncEighth
	SyncSixteenth
	SyncThirtySecond
	SyncSixtyFourth
	SyncOneTwentyEighth
	SyncHalfDotted
	SyncQuarterDotted
	SyncEighthDotted
	SyncSixteenthDotted
	SyncThirtySecondDotted
	SyncSixtyFourthDotted
	SyncHalfTriplet
	SyncQuarterTriplet
	SyncEighthTriplet
	SyncSixteenthTriplet
	SyncThirtySecondTriplet
	SyncSixtyFourthTriplet
)

// Sync is a scheduling expression, musical or timed (spec §3 "Sync").
type Sync struct {
	Mode           SyncMode
	ReferencePoint ReferencePoint
	Value          SyncValue
	Factor         int
	TimeSeconds    float64
}

// NewMusicalSync builds a Musical-mode Sync for value at the given
// factor (1 = the note value itself; e.g. factor 3 on SyncQuarter means
// three quarter notes), anchored at the given reference point.
func NewMusicalSync(value SyncValue, factor int, ref ReferencePoint) Sync {
	if factor == 0 {
		factor = 1
	}
	return Sync{Mode: SyncMusical, Value: value, Factor: factor, ReferencePoint: ref}
}

// NewTimeSync builds a Time-mode Sync for the given duration.
func NewTimeSync(seconds float64) Sync {
	return Sync{Mode: SyncTime, TimeSeconds: seconds}
}

// Meter is a musical time signature (spec §3 Cue: "meter (top/bottom)").
type Meter struct {
	Top    int
	Bottom int
}

// Valid reports whether both parts of the meter are positive.
func (m Meter) Valid() bool { return m.Top > 0 && m.Bottom > 0 }
