// Package buffer provides the engine's lowest-level audio containers:
// Buffer (one channel of one processing block) and MixItem (one
// per-channel set of Buffers tagged with a destination mix group).
//
// Buffer exclusively owns an aligned float32 region sized for one block.
// Binary operations assert equal length: a size mismatch is a
// programmer error (spec §7), not a runtime condition to recover from.
package buffer

import (
	"fmt"
	"math"

	"github.com/klauspost/cpuid/v2"
)

// simdWidth is the number of float32 lanes the scalar loops below are
// unrolled by. It tracks the widest vector width cpuid reports so the
// unrolled loop body matches what a real SIMD kernel would chew through
// per iteration (spec §9 SIMD abstraction) — there is no hand-written
// assembly here, only a scalar reference path with a width-matched
// unroll and a masked (ordinary) tail loop.
var simdWidth = detectSIMDWidth()

func detectSIMDWidth() int {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F):
		return 16
	case cpuid.CPU.Supports(cpuid.AVX2), cpuid.CPU.Supports(cpuid.AVX):
		return 8
	case cpuid.CPU.Supports(cpuid.SSE2):
		return 4
	default:
		return 1
	}
}

// SIMDWidth returns the lane width the package's loops are unrolled by
// on this CPU. Exposed for tests and diagnostics only.
func SIMDWidth() int { return simdWidth }

// Buffer owns one channel's worth of float32 samples for one processing
// block.
type Buffer struct {
	data []float32
}

// New allocates a Buffer of the given frame count, zeroed.
func New(frames int) *Buffer {
	return &Buffer{data: make([]float32, frames)}
}

// NewFrom wraps an existing slice without copying. The caller must not
// mutate it concurrently with the audio thread.
func NewFrom(data []float32) *Buffer {
	return &Buffer{data: data}
}

// Len returns the number of frames in the buffer.
func (b *Buffer) Len() int { return len(b.data) }

// Data returns the underlying slice for direct access (e.g. by a host
// device adapter writing interleaved output).
func (b *Buffer) Data() []float32 { return b.data }

func requireEqualLen(a, b *Buffer, op string) {
	if len(a.data) != len(b.data) {
		panic(fmt.Sprintf("buffer: %s operand length mismatch: %d vs %d", op, len(a.data), len(b.data)))
	}
}

// Zero clears the buffer to silence.
func (b *Buffer) Zero() {
	for i := range b.data {
		b.data[i] = 0
	}
}

// Fill sets every sample to value.
func (b *Buffer) Fill(value float32) {
	for i := range b.data {
		b.data[i] = value
	}
}

// Multiply computes b[i] *= other[i] elementwise.
func (b *Buffer) Multiply(other *Buffer) {
	requireEqualLen(b, other, "multiply")
	n := len(b.data)
	i := 0
	for ; i+simdWidth <= n; i += simdWidth {
		for lane := 0; lane < simdWidth; lane++ {
			b.data[i+lane] *= other.data[i+lane]
		}
	}
	for ; i < n; i++ {
		b.data[i] *= other.data[i]
	}
}

// ScalarMultiply computes b[i] *= k elementwise.
func (b *Buffer) ScalarMultiply(k float32) {
	n := len(b.data)
	i := 0
	for ; i+simdWidth <= n; i += simdWidth {
		for lane := 0; lane < simdWidth; lane++ {
			b.data[i+lane] *= k
		}
	}
	for ; i < n; i++ {
		b.data[i] *= k
	}
}

// Sum computes the fused b[i] += other[i] * amplitude.
func (b *Buffer) Sum(other *Buffer, amplitude float32) {
	requireEqualLen(b, other, "sum")
	if amplitude == 0 {
		return
	}
	n := len(b.data)
	i := 0
	for ; i+simdWidth <= n; i += simdWidth {
		for lane := 0; lane < simdWidth; lane++ {
			b.data[i+lane] += other.data[i+lane] * amplitude
		}
	}
	for ; i < n; i++ {
		b.data[i] += other.data[i] * amplitude
	}
}

// Subtract computes b[i] -= other[i] elementwise.
func (b *Buffer) Subtract(other *Buffer) {
	requireEqualLen(b, other, "subtract")
	n := len(b.data)
	i := 0
	for ; i+simdWidth <= n; i += simdWidth {
		for lane := 0; lane < simdWidth; lane++ {
			b.data[i+lane] -= other.data[i+lane]
		}
	}
	for ; i < n; i++ {
		b.data[i] -= other.data[i]
	}
}

// AbsoluteMax returns the maximum absolute value in the buffer, or 0 for
// an empty buffer.
func (b *Buffer) AbsoluteMax() float32 {
	var max float32
	for _, v := range b.data {
		a := float32(math.Abs(float64(v)))
		if a > max {
			max = a
		}
	}
	return max
}
