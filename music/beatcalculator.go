package music

import "math"

// precise holds the floating-point samples-per-note values BeatCalc
// derives from a tempo/meter pair; beatSamples holds the same values
// rounded to the nearest sample, plus dotted/triplet derivations (spec
// §4.6 "BeatCalculator precomputes ... both a precise (double) and
// rounded (int) form").
type precise struct {
	oneTwentyEighth, sixtyFourth, thirtySecond, sixteenth float64
	eighth, quarter, half, whole, bar                     float64
}

type beatSamples struct {
	oneTwentyEighth, sixtyFourth, thirtySecond, sixteenth int
	eighth, quarter, half, whole, bar                     int

	sixtyFourthDotted, thirtySecondDotted, sixteenthDotted int
	eighthDotted, quarterDotted, halfDotted                int

	sixtyFourthTriplet, thirtySecondTriplet, sixteenthTriplet int
	eighthTriplet, quarterTriplet, halfTriplet                int
}

// BeatCalculator precomputes, for a given tempo/meter/sample-rate, the
// number of samples per note division from 128th through a full bar,
// including dotted and triplet variants (spec §4.6).
type BeatCalculator struct {
	precise precise
	samples beatSamples
}

// BeatCalc recomputes every division for tempo (BPM), meter, and
// sampleRate, and returns the number of samples in one beat (the unit
// the metronome counts in, which depends on meter.Bottom). Returns 0 if
// tempo or meter is invalid.
func (bc *BeatCalculator) BeatCalc(tempo float64, meter Meter, sampleRate float64) float64 {
	if tempo <= 0 || !meter.Valid() {
		return 0
	}

	const (
		oneTwentyEighth = 0.03125
		sixtyFourth     = 0.0625
		thirtySecond    = 0.125
		sixteenth       = 0.25
		eighth          = 0.5
		quarter         = 1.0
		half            = 2.0
		whole           = 4.0
	)

	var quarterPerBar float64
	switch {
	case meter.Bottom == 4:
		quarterPerBar = float64(meter.Top)
	case meter.Bottom < 4:
		scale := 4.0 / float64(meter.Bottom)
		quarterPerBar = float64(meter.Top) * scale
	default:
		scale := float64(meter.Bottom) / 4.0
		quarterPerBar = float64(meter.Top) / scale
	}

	ratio := quarterPerBar / tempo
	secondsPerBar := ratio * 60.0
	rawBarSamples := secondsPerBar * sampleRate

	constantScale := 0.25 * float64(meter.Bottom)
	perQuarterNote := rawBarSamples / float64(meter.Top) * constantScale

	p := precise{
		oneTwentyEighth: perQuarterNote * oneTwentyEighth,
		sixtyFourth:     perQuarterNote * sixtyFourth,
		thirtySecond:    perQuarterNote * thirtySecond,
		sixteenth:       perQuarterNote * sixteenth,
		eighth:          perQuarterNote * eighth,
		quarter:         perQuarterNote * quarter,
		half:            perQuarterNote * half,
		whole:           perQuarterNote * whole,
		bar:             rawBarSamples,
	}
	bc.precise = p

	s := beatSamples{
		oneTwentyEighth: round(p.oneTwentyEighth),
		sixtyFourth:     round(p.sixtyFourth),
		thirtySecond:    round(p.thirtySecond),
		sixteenth:       round(p.sixteenth),
		eighth:          round(p.eighth),
		quarter:         round(p.quarter),
		half:            round(p.half),
		whole:           round(p.whole),
		bar:             round(p.bar),
	}
	s.sixtyFourthDotted = s.sixtyFourth + s.oneTwentyEighth
	s.thirtySecondDotted = s.thirtySecond + s.sixtyFourth
	s.sixteenthDotted = s.sixteenth + s.thirtySecond
	s.eighthDotted = s.eighth + s.sixteenth
	s.quarterDotted = s.quarter + s.eighth
	s.halfDotted = s.half + s.quarter

	s.sixtyFourthTriplet = round(p.sixtyFourth * 2.0 / 3.0)
	s.thirtySecondTriplet = round(p.thirtySecond * 2.0 / 3.0)
	s.sixteenthTriplet = round(p.sixteenth * 2.0 / 3.0)
	s.eighthTriplet = round(p.eighth * 2.0 / 3.0)
	s.quarterTriplet = round(p.quarter * 2.0 / 3.0)
	s.halfTriplet = round(p.half * 2.0 / 3.0)
	bc.samples = s

	switch meter.Bottom {
	case 1:
		return p.whole
	case 2:
		return p.half
	case 4:
		return p.quarter
	case 8:
		return p.eighth
	case 16:
		return p.sixteenth
	case 32:
		return p.thirtySecond
	case 64:
		return p.sixtyFourth
	default:
		// Unsupported beat division (spec §7 programmer error); fall
		// back to quarter-note timing rather than panic in release.
		return p.quarter
	}
}

// BeatSwitch returns the rounded sample count for sync, scaled by its
// Factor (spec §4.6, BeatCalculator.BeatSwitch in the original).
func (bc *BeatCalculator) BeatSwitch(sync Sync) int {
	switch sync.Value {
	case SyncOneTwentyEighth:
		return round(bc.precise.oneTwentyEighth * float64(sync.Factor))
	case SyncSixtyFourth:
		return round(bc.precise.sixtyFourth * float64(sync.Factor))
	case SyncThirtySecond:
		return round(bc.precise.thirtySecond * float64(sync.Factor))
	case SyncSixteenth:
		return round(bc.precise.sixteenth * float64(sync.Factor))
	case SyncEighth:
		return round(bc.precise.eighth * float64(sync.Factor))
	case SyncQuarter:
		return round(bc.precise.quarter * float64(sync.Factor))
	case SyncHalf:
		return round(bc.precise.half * float64(sync.Factor))
	case SyncWhole:
		return round(bc.precise.whole * float64(sync.Factor))
	case SyncBar:
		return round(bc.precise.bar * float64(sync.Factor))
	case SyncSixtyFourthDotted:
		return bc.samples.sixtyFourthDotted * sync.Factor
	case SyncThirtySecondDotted:
		return bc.samples.thirtySecondDotted * sync.Factor
	case SyncSixteenthDotted:
		return bc.samples.sixteenthDotted * sync.Factor
	case SyncEighthDotted:
		return bc.samples.eighthDotted * sync.Factor
	case SyncQuarterDotted:
		return bc.samples.quarterDotted * sync.Factor
	case SyncHalfDotted:
		return bc.samples.halfDotted * sync.Factor
	case SyncSixtyFourthTriplet:
		return bc.samples.sixtyFourthTriplet * sync.Factor
	case SyncThirtySecondTriplet:
		return bc.samples.thirtySecondTriplet * sync.Factor
	case SyncSixteenthTriplet:
		return bc.samples.sixteenthTriplet * sync.Factor
	case SyncEighthTriplet:
		return bc.samples.eighthTriplet * sync.Factor
	case SyncQuarterTriplet:
		return bc.samples.quarterTriplet * sync.Factor
	case SyncHalfTriplet:
		return bc.samples.halfTriplet * sync.Factor
	case SyncCut:
		return 1
	default:
		return 1
	}
}

// PreciseBeatSwitch is BeatSwitch's unrounded counterpart, used by the
// Conductor's bar-walking arithmetic so accumulated error doesn't drift
// across many bars (spec §4.6 Conductor "walk forward in sync-sized
// steps").
func (bc *BeatCalculator) PreciseBeatSwitch(sync Sync) float64 {
	switch sync.Value {
	case SyncOneTwentyEighth:
		return bc.precise.oneTwentyEighth * float64(sync.Factor)
	case SyncSixtyFourth:
		return bc.precise.sixtyFourth * float64(sync.Factor)
	case SyncThirtySecond:
		return bc.precise.thirtySecond * float64(sync.Factor)
	case SyncSixteenth:
		return bc.precise.sixteenth * float64(sync.Factor)
	case SyncEighth:
		return bc.precise.eighth * float64(sync.Factor)
	case SyncQuarter:
		return bc.precise.quarter * float64(sync.Factor)
	case SyncHalf:
		return bc.precise.half * float64(sync.Factor)
	case SyncWhole:
		return bc.precise.whole * float64(sync.Factor)
	case SyncBar:
		return bc.precise.bar * float64(sync.Factor)
	case SyncSixtyFourthDotted:
		return float64(bc.samples.sixtyFourthDotted * sync.Factor)
	case SyncThirtySecondDotted:
		return float64(bc.samples.thirtySecondDotted * sync.Factor)
	case SyncSixteenthDotted:
		return float64(bc.samples.sixteenthDotted * sync.Factor)
	case SyncEighthDotted:
		return float64(bc.samples.eighthDotted * sync.Factor)
	case SyncQuarterDotted:
		return float64(bc.samples.quarterDotted * sync.Factor)
	case SyncHalfDotted:
		return float64(bc.samples.halfDotted * sync.Factor)
	case SyncSixtyFourthTriplet:
		return float64(bc.samples.sixtyFourthTriplet * sync.Factor)
	case SyncThirtySecondTriplet:
		return float64(bc.samples.thirtySecondTriplet * sync.Factor)
	case SyncSixteenthTriplet:
		return float64(bc.samples.sixteenthTriplet * sync.Factor)
	case SyncEighthTriplet:
		return float64(bc.samples.eighthTriplet * sync.Factor)
	case SyncQuarterTriplet:
		return float64(bc.samples.quarterTriplet * sync.Factor)
	case SyncHalfTriplet:
		return float64(bc.samples.halfTriplet * sync.Factor)
	case SyncCut:
		return 1
	default:
		return 1
	}
}

func round(v float64) int {
	return int(math.Round(v))
}
