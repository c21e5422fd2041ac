package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferZeroAndFill(t *testing.T) {
	b := New(17)
	b.Fill(1.5)
	for _, v := range b.Data() {
		assert.Equal(t, float32(1.5), v)
	}
	b.Zero()
	for _, v := range b.Data() {
		assert.Equal(t, float32(0), v)
	}
}

func TestBufferNewFrom(t *testing.T) {
	data := []float32{1, 2, 3}
	b := NewFrom(data)
	require.Equal(t, 3, b.Len())
	data[0] = 9
	assert.Equal(t, float32(9), b.Data()[0])
}

func TestBufferMultiply(t *testing.T) {
	a := NewFrom([]float32{1, 2, 3, 4, 5})
	b := NewFrom([]float32{2, 2, 2, 2, 2})
	a.Multiply(b)
	assert.Equal(t, []float32{2, 4, 6, 8, 10}, a.Data())
}

func TestBufferScalarMultiply(t *testing.T) {
	a := NewFrom([]float32{1, -2, 3})
	a.ScalarMultiply(-1)
	assert.Equal(t, []float32{-1, 2, -3}, a.Data())
}

func TestBufferSum(t *testing.T) {
	a := NewFrom([]float32{1, 1, 1})
	b := NewFrom([]float32{2, 2, 2})
	a.Sum(b, 0.5)
	assert.Equal(t, []float32{2, 2, 2}, a.Data())
}

func TestBufferSumZeroAmplitudeSkips(t *testing.T) {
	a := NewFrom([]float32{1, 1, 1})
	b := NewFrom([]float32{100, 100, 100})
	a.Sum(b, 0)
	assert.Equal(t, []float32{1, 1, 1}, a.Data())
}

func TestBufferSubtract(t *testing.T) {
	a := NewFrom([]float32{5, 5, 5})
	b := NewFrom([]float32{1, 2, 3})
	a.Subtract(b)
	assert.Equal(t, []float32{4, 3, 2}, a.Data())
}

func TestBufferAbsoluteMax(t *testing.T) {
	a := NewFrom([]float32{-1, 0.5, -9, 3})
	assert.Equal(t, float32(9), a.AbsoluteMax())
}

func TestBufferAbsoluteMaxEmpty(t *testing.T) {
	a := New(0)
	assert.Equal(t, float32(0), a.AbsoluteMax())
}

func TestRequireEqualLenPanics(t *testing.T) {
	a := New(4)
	b := New(5)
	assert.Panics(t, func() { a.Multiply(b) })
	assert.Panics(t, func() { a.Sum(b, 1) })
	assert.Panics(t, func() { a.Subtract(b) })
}

func TestSIMDWidthIsPowerOfTwoOrOne(t *testing.T) {
	w := SIMDWidth()
	assert.Contains(t, []int{1, 4, 8, 16}, w)
}

func TestBufferOpsAcrossOddLengths(t *testing.T) {
	// Exercise the scalar tail path for lengths that don't divide evenly
	// by any SIMD width.
	for _, n := range []int{1, 3, 7, 15, 17, 31, 33} {
		a := New(n)
		a.Fill(2)
		b := New(n)
		b.Fill(3)
		a.Multiply(b)
		for _, v := range a.Data() {
			assert.Equal(t, float32(6), v)
		}
	}
}
