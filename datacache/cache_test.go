package datacache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z-e-chan/redfish"
)

func TestAudioDataDeinterleaves(t *testing.T) {
	// two channels, three frames: L0 R0 L1 R1 L2 R2
	samples := []float32{1, -1, 2, -2, 3, -3}
	ad := NewAudioData("tone", samples, 2)
	require.Equal(t, 2, ad.ChannelCount())
	assert.Equal(t, 3, ad.Frames)
	assert.Equal(t, []float32{1, 2, 3}, ad.Channels[0])
	assert.Equal(t, []float32{-1, -2, -3}, ad.Channels[1])
}

func TestCacheLoadDedupsByName(t *testing.T) {
	c := NewCache(4)
	h1, ok := c.Load([]float32{1, 2, 3, 4}, 1, "explosion")
	require.True(t, ok)
	h2, ok := c.Load([]float32{9, 9, 9, 9}, 1, "explosion")
	require.True(t, ok)
	assert.Equal(t, h1, h2)
	assert.Equal(t, 1, c.Len())
}

func TestCacheLoadRejectsOverCapacity(t *testing.T) {
	c := NewCache(1)
	_, ok := c.Load([]float32{1}, 1, "a")
	require.True(t, ok)
	_, ok = c.Load([]float32{1}, 1, "b")
	assert.False(t, ok)
}

func TestCacheUnloadReachesZero(t *testing.T) {
	c := NewCache(2)
	h, _ := c.Load([]float32{1, 2}, 1, "a")
	_, _ = c.Load([]float32{1, 2}, 1, "a") // refcount now 2

	assert.False(t, c.Unload(h))
	assert.True(t, c.Unload(h))
}

func TestCacheFreeRemovesSlotAndAllowsNameReuse(t *testing.T) {
	c := NewCache(2)
	h, _ := c.Load([]float32{1, 2}, 1, "a")
	require.True(t, c.Unload(h))
	c.Free(h)

	assert.Equal(t, 0, c.Len())
	assert.Nil(t, c.Get(h))

	h2, ok := c.Load([]float32{3, 4}, 1, "a")
	require.True(t, ok)
	assert.NotEqual(t, h, h2)
}

func TestCacheFreeCompactsSlotsCorrectly(t *testing.T) {
	c := NewCache(3)
	ha, _ := c.Load([]float32{1}, 1, "a")
	hb, _ := c.Load([]float32{2}, 1, "b")
	hc, _ := c.Load([]float32{3}, 1, "c")

	c.Unload(ha)
	c.Free(ha)

	assert.NotNil(t, c.Get(hb))
	assert.NotNil(t, c.Get(hc))
	assert.Equal(t, 2, c.Len())
}

func TestReferencesSetGetClear(t *testing.T) {
	r := NewReferences(4)
	h := redfish.Handle{Kind: redfish.KindAudioData, Value: 7}
	ad := NewAudioData("x", []float32{1, 2}, 1)

	assert.Nil(t, r.Get(h))
	r.Set(h, ad)
	assert.Same(t, ad, r.Get(h))

	r.Clear(h)
	assert.Nil(t, r.Get(h))
}

func TestReferencesDistinctHandlesDoNotCollide(t *testing.T) {
	r := NewReferences(2)
	h1 := redfish.Handle{Kind: redfish.KindAudioData, Value: 2}
	h2 := redfish.Handle{Kind: redfish.KindAudioData, Value: 1002} // would collide under naive modulo indexing
	a1 := NewAudioData("a1", []float32{1}, 1)
	a2 := NewAudioData("a2", []float32{2}, 1)

	r.Set(h1, a1)
	r.Set(h2, a2)

	assert.Same(t, a1, r.Get(h1))
	assert.Same(t, a2, r.Get(h2))
}
