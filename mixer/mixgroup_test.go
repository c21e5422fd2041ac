package mixer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/z-e-chan/redfish"
)

func testHandle(v uint32) redfish.Handle {
	return redfish.Handle{Kind: redfish.KindMixGroup, Value: v}
}

func TestNewMixGroupSlotsStartFree(t *testing.T) {
	g := newMixGroup(testHandle(1), false, 2, 16)
	for _, s := range g.sends {
		assert.Equal(t, -1, s)
	}
	for _, p := range g.plugins {
		assert.Equal(t, -1, p)
	}
	assert.Equal(t, float32(0), g.Peak())
	assert.Equal(t, float32(0), g.Level())
}
