package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMixItemResetClearsChannelsAndDestination(t *testing.T) {
	mi := NewMixItem(2, 4)
	mi.Channels[0].Fill(1)
	mi.Channels[1].Fill(2)
	mi.Destination = 7
	mi.InUse = true

	mi.Reset()

	assert.False(t, mi.InUse)
	assert.Equal(t, uint32(0), mi.Destination)
	for _, ch := range mi.Channels {
		assert.Equal(t, float32(0), ch.AbsoluteMax())
	}
}

func TestMixItemSumAndMultiply(t *testing.T) {
	a := NewMixItem(2, 3)
	b := NewMixItem(2, 3)
	b.Channels[0].Fill(2)
	b.Channels[1].Fill(4)

	a.Sum(b, 0.5)
	assert.Equal(t, []float32{1, 1, 1}, a.Channels[0].Data())
	assert.Equal(t, []float32{2, 2, 2}, a.Channels[1].Data())

	a.Multiply(b)
	assert.Equal(t, []float32{2, 2, 2}, a.Channels[0].Data())
	assert.Equal(t, []float32{8, 8, 8}, a.Channels[1].Data())
}

func TestMixItemScalarMultiply(t *testing.T) {
	mi := NewMixItem(2, 2)
	mi.Channels[0].Fill(1)
	mi.Channels[1].Fill(-1)
	mi.ScalarMultiply(3)
	assert.Equal(t, []float32{3, 3}, mi.Channels[0].Data())
	assert.Equal(t, []float32{-3, -3}, mi.Channels[1].Data())
}

func TestMixItemAbsoluteMax(t *testing.T) {
	mi := NewMixItem(2, 2)
	mi.Channels[0].Fill(0.25)
	mi.Channels[1].Fill(-0.9)
	assert.InDelta(t, 0.9, mi.AbsoluteMax(), 1e-6)
}

func TestMixItemToInterleaved(t *testing.T) {
	mi := NewMixItem(2, 3)
	mi.Channels[0].Fill(1)
	mi.Channels[1].Fill(2)
	dst := make([]float32, 6)
	mi.ToInterleaved(dst)
	assert.Equal(t, []float32{1, 2, 1, 2, 1, 2}, dst)
}

func TestPoolAcquireAndReset(t *testing.T) {
	p := NewPool(2, 2, 4)
	require.Equal(t, 2, p.Capacity())

	a := p.Acquire()
	require.NotNil(t, a)
	b := p.Acquire()
	require.NotNil(t, b)
	assert.Nil(t, p.Acquire())
	assert.Len(t, p.Items(), 2)

	p.Reset()
	assert.Len(t, p.Items(), 0)
	c := p.Acquire()
	require.NotNil(t, c)
	assert.True(t, c.InUse)
}
