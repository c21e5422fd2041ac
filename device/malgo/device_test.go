package malgo

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/z-e-chan/redfish/config"
)

type fakeEngine struct {
	calls int
	fill  float32
}

func (f *fakeEngine) Process(out []float32) {
	f.calls++
	for i := range out {
		out[i] = f.fill
	}
}

func testConfig() config.EngineConfig {
	cfg := config.Default()
	cfg.BlockSize = 4
	cfg.Channels = 2
	return cfg
}

func TestOnDataEncodesEngineOutputAsLittleEndianFloat32(t *testing.T) {
	fe := &fakeEngine{fill: 0.5}
	d := New(fe, testConfig())

	out := make([]byte, 4*2*4)
	d.onData(out, nil, 4)

	assert.Equal(t, 1, fe.calls)
	r := readFloat32LE(out, 0)
	assert.InDelta(t, 0.5, r, 1e-6)
}

func TestOnDataMismatchedFrameCountEmitsSilenceWithoutCallingEngine(t *testing.T) {
	fe := &fakeEngine{fill: 1}
	d := New(fe, testConfig())

	out := make([]byte, 1*2*4)
	for i := range out {
		out[i] = 0xFF
	}
	d.onData(out, nil, 1)

	assert.Equal(t, 0, fe.calls)
	for _, b := range out {
		assert.Equal(t, byte(0), b)
	}
}

func TestBackendForPlatformReturnsAnswerForKnownOS(t *testing.T) {
	_, err := backendForPlatform()
	// Only linux/windows/darwin are resolved; other platforms error. The
	// test environment is one of the three, so this should not error.
	assert.NoError(t, err)
}

func readFloat32LE(b []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[offset : offset+4]))
}
