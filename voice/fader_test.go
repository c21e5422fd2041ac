package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFaderBeforeStartReturnsFrom(t *testing.T) {
	var f Fader
	f.ScheduleFade(10, 4, 1, 0, false)
	amp, done, _ := f.Value(5)
	assert.Equal(t, 1.0, amp)
	assert.False(t, done)
	assert.True(t, f.Active())
}

func TestFaderInterpolatesMidway(t *testing.T) {
	var f Fader
	f.ScheduleFade(0, 10, 0, 1, false)
	amp, done, _ := f.Value(5)
	assert.InDelta(t, 0.5, amp, 1e-9)
	assert.False(t, done)
}

func TestFaderDoneAfterDuration(t *testing.T) {
	var f Fader
	f.ScheduleFade(0, 10, 0, 1, true)
	amp, done, stopOnDone := f.Value(10)
	assert.Equal(t, 1.0, amp)
	assert.True(t, done)
	assert.True(t, stopOnDone)
	assert.False(t, f.Active())
}

func TestFaderZeroDurationClampedToOne(t *testing.T) {
	var f Fader
	f.ScheduleFade(0, 0, 0, 1, false)
	_, done, _ := f.Value(1)
	assert.True(t, done)
}

func TestFaderClearDisarms(t *testing.T) {
	var f Fader
	f.ScheduleFade(0, 10, 0, 1, false)
	f.Clear()
	assert.False(t, f.Active())
	amp, done, _ := f.Value(100)
	assert.Equal(t, 0.0, amp)
	assert.False(t, done)
}

func TestFaderScheduleStopEndsAtStopTime(t *testing.T) {
	var f Fader
	f.ScheduleStop(100, 32, 1)
	amp, done, _ := f.Value(100)
	assert.Equal(t, 0.0, amp)
	assert.True(t, done)
}
