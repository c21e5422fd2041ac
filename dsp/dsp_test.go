package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDBToAmpAndBack(t *testing.T) {
	assert.InDelta(t, 1.0, DBToAmp(0), 1e-9)
	assert.Equal(t, 0.0, DBToAmp(-1000))

	for _, amp := range []float64{0.001, 0.1, 0.5, 1, 2} {
		db := AmpToDB(amp)
		roundTrip := DBToAmp(db)
		assert.InDelta(t, amp, roundTrip, 1e-6)
	}
}

func TestDBToAmpNegativeInfinity(t *testing.T) {
	assert.Equal(t, 0.0, DBToAmp(math.Inf(-1)))
}

func TestLinearRampEndpoints(t *testing.T) {
	assert.Equal(t, 0.0, linearRamp(0, 10, 0, 10))
	assert.InDelta(t, 10.0, linearRamp(0, 10, 9, 10), 1e-9)
}

func TestClampUnit(t *testing.T) {
	assert.Equal(t, 0.0, clampUnit(-5))
	assert.Equal(t, 1.0, clampUnit(5))
	assert.Equal(t, 0.5, clampUnit(0.5))
}
