package datacache

import (
	"sync"

	"github.com/z-e-chan/redfish"
)

// slot holds one AudioData plus its bookkeeping. A zero refCount with a
// non-nil data means the slot is pending deletion: stopped from new
// lookups but still physically present until the control thread
// receives the AssetDelete message for its handle.
type slot struct {
	data     *AudioData
	handle   redfish.Handle
	refCount int
}

// Cache is the fixed-capacity (spec MAX_AUDIO_DATA) slot array of
// AudioData, with load-by-name dedup and reference counting (spec
// §4.3). All methods run on the control thread; the audio thread never
// touches a Cache directly, it only reads the per-callback reference
// snapshot populated by LoadAudioDataCommand (see References below).
type Cache struct {
	mu        sync.Mutex
	slots     []slot
	byName    map[string]int
	byHandle  map[uint32]int
	allocator *redfish.HandleAllocator
}

// NewCache allocates a Cache with room for capacity AudioData entries.
func NewCache(capacity int) *Cache {
	return &Cache{
		slots:     make([]slot, 0, capacity),
		byName:    make(map[string]int, capacity),
		byHandle:  make(map[uint32]int, capacity),
		allocator: redfish.NewHandleAllocator(redfish.KindAudioData),
	}
}

// Load deinterleaves samples into a channel-major AudioData and returns
// its handle. If name already names a live entry, its reference count is
// incremented and the existing handle is returned instead of decoding
// again (spec §4.3 "searches for an existing entry by name").
func (c *Cache) Load(samples []float32, channelCount int, name string) (redfish.Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx, ok := c.byName[name]; ok && c.slots[idx].refCount > 0 {
		c.slots[idx].refCount++
		return c.slots[idx].handle, true
	}

	if len(c.slots) >= cap(c.slots) {
		return redfish.InvalidHandle, false
	}

	data := NewAudioData(name, samples, channelCount)
	h := c.allocator.Next()
	c.slots = append(c.slots, slot{data: data, handle: h, refCount: 1})
	idx := len(c.slots) - 1
	c.byName[name] = idx
	c.byHandle[h.Value] = idx
	return h, true
}

// Unload decrements the reference count for handle. It returns true if
// the count reached zero, meaning the caller must stop any voices that
// reference handle and enqueue an unload command (spec §4.3, §4.5
// deferred delete).
func (c *Cache) Unload(h redfish.Handle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, ok := c.byHandle[h.Value]
	if !ok {
		return false
	}
	c.slots[idx].refCount--
	return c.slots[idx].refCount <= 0
}

// Free physically removes handle's slot. Called only after the control
// thread receives the AssetDelete message confirming the audio thread
// holds no remaining reference (spec §4.3 "freeing the slot happens on
// the control thread upon receipt of the delete message").
func (c *Cache) Free(h redfish.Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, ok := c.byHandle[h.Value]
	if !ok {
		return
	}
	delete(c.byName, c.slots[idx].data.Name)
	delete(c.byHandle, h.Value)

	last := len(c.slots) - 1
	if idx != last {
		c.slots[idx] = c.slots[last]
		c.byHandle[c.slots[idx].handle.Value] = idx
		c.byName[c.slots[idx].data.Name] = idx
	}
	c.slots = c.slots[:last]
}

// Get returns the AudioData for handle, or nil if it doesn't exist or
// has already been freed.
func (c *Cache) Get(h redfish.Handle) *AudioData {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, ok := c.byHandle[h.Value]
	if !ok {
		return nil
	}
	return c.slots[idx].data
}

// Len reports how many live entries the cache currently holds.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}

// Capacity returns the cache's fixed capacity.
func (c *Cache) Capacity() int { return cap(c.slots) }

// referenceSlot pairs a handle with the AudioData the audio thread has
// cached for it; a zero handle marks a free slot.
type referenceSlot struct {
	handle redfish.Handle
	data   *AudioData
}

// References is the audio thread's own fixed-size slot array of
// AudioData pointers, populated by LoadAudioDataCommand and cleared by
// ClearAudioDataReferenceCommand, never by a direct Cache call: the
// audio thread must never touch Cache's mutex (spec §4.3 final
// sentence). Lookup is a bounded linear scan over a small fixed array,
// not a map, so it stays allocation-free.
type References struct {
	slots []referenceSlot
}

// NewReferences allocates a References table sized for capacity
// concurrent handles (spec MAX_AUDIO_DATA).
func NewReferences(capacity int) *References {
	return &References{slots: make([]referenceSlot, capacity)}
}

// Set installs data for handle h, applying LoadAudioDataCommand's
// effect on the audio thread. It reuses an existing slot for h if one
// exists, otherwise claims the first free slot.
func (r *References) Set(h redfish.Handle, data *AudioData) {
	free := -1
	for i, s := range r.slots {
		if s.handle == h {
			r.slots[i].data = data
			return
		}
		if free == -1 && !s.handle.Valid() {
			free = i
		}
	}
	if free != -1 {
		r.slots[free] = referenceSlot{handle: h, data: data}
	}
}

// Clear removes the reference for handle h, applying
// ClearAudioDataReferenceCommand's effect on the audio thread.
func (r *References) Clear(h redfish.Handle) {
	for i, s := range r.slots {
		if s.handle == h {
			r.slots[i] = referenceSlot{}
			return
		}
	}
}

// Get returns the AudioData the audio thread currently has cached for
// handle h, or nil if none is loaded.
func (r *References) Get(h redfish.Handle) *AudioData {
	for _, s := range r.slots {
		if s.handle == h {
			return s.data
		}
	}
	return nil
}
