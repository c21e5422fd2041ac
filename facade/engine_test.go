package facade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z-e-chan/redfish/bridge"
	"github.com/z-e-chan/redfish/config"
)

func testConfig() config.EngineConfig {
	cfg := config.Default()
	cfg.MaxVoices = 4
	cfg.MaxMixGroups = 4
	cfg.MaxAudioData = 4
	cfg.BlockSize = 8
	cfg.Channels = 2
	cfg.CommandQueueCapacity = 32
	cfg.MessageQueueCapacity = 64
	return cfg
}

func TestProcessAdvancesPlayhead(t *testing.T) {
	e := New(testConfig())
	out := make([]float32, 8*2)
	e.Process(out)
	assert.Equal(t, int64(8), e.estimatedPlayheadValue())
}

func TestShutdownReturnsTrueOncePollObservesComplete(t *testing.T) {
	e := New(testConfig())
	out := make([]float32, 8*2)

	done := make(chan bool, 1)
	go func() { done <- e.Shutdown(time.Second) }()

	// The audio thread needs two Process calls to walk Stop -> Stopping
	// -> Complete; the control side needs a Poll after each to observe
	// the eventual ContextShutdownComplete message.
	for i := 0; i < 3; i++ {
		e.Process(out)
		e.Poll()
	}

	assert.True(t, <-done)
}

func TestShutdownTimesOutWithoutProcessOrPoll(t *testing.T) {
	e := New(testConfig())
	assert.False(t, e.Shutdown(20*time.Millisecond))
}

func TestStartAndCloseDrainsMessagesInBackground(t *testing.T) {
	e := New(testConfig())
	e.Start(5 * time.Millisecond)
	defer e.Close()

	h, err := e.Asset.Load([]float32{0, 0}, 1, "blip")
	require.NoError(t, err)
	e.Asset.Unload(h)

	// Simulate the audio thread draining the load-then-unload commands
	// and emitting the AssetDelete message the background Poll pump
	// (started above) picks up and frees the slot from.
	out := make([]float32, 8*2)
	for i := 0; i < 2; i++ {
		e.Process(out)
	}

	assert.Eventually(t, func() bool {
		return e.Asset.Len() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestDispatchMessageUpdatesActiveVoices(t *testing.T) {
	e := New(testConfig())
	var buf [bridge.MessagePayloadSize]byte
	bridge.NewPayloadWriter(buf[:]).PutUint32(3)
	e.dispatchMessage(bridge.Message{Tag: bridge.MessageContextNumVoices, Payload: buf})
	assert.Equal(t, 3, e.ActiveVoices())
}
