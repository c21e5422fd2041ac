package bridge

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestCommandQueueCapacityRoundsUpToPowerOfTwo(t *testing.T) {
	q := NewCommandQueue(100)
	assert.Equal(t, 128, q.Capacity())
}

func TestCommandQueuePushPopFIFO(t *testing.T) {
	q := NewCommandQueue(4)
	for i := 0; i < 4; i++ {
		ok := q.Push(Command{Tag: CommandPlayVoice, Payload: [CommandPayloadSize]byte{byte(i)}})
		require.True(t, ok)
	}
	for i := 0; i < 4; i++ {
		cmd, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, byte(i), cmd.Payload[0])
	}
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestCommandQueuePushFailsWhenFull(t *testing.T) {
	q := NewCommandQueue(2)
	require.True(t, q.Push(Command{}))
	require.True(t, q.Push(Command{}))
	assert.False(t, q.Push(Command{}))
	assert.Equal(t, 2, q.Len())
}

func TestCommandQueueDrainAllInvokesInOrder(t *testing.T) {
	q := NewCommandQueue(8)
	for i := 0; i < 5; i++ {
		require.True(t, q.Push(Command{Tag: CommandTag(i)}))
	}
	var seen []CommandTag
	q.DrainAll(func(c Command) { seen = append(seen, c.Tag) })
	assert.Equal(t, []CommandTag{0, 1, 2, 3, 4}, seen)
	assert.Equal(t, 0, q.Len())
}

func TestCommandQueueSPSCConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("testing.(*T).Run"),
	)

	q := NewCommandQueue(16)
	const n = 10000
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			cmd := Command{Tag: CommandPlayVoice}
			NewPayloadWriter(cmd.Payload[:]).PutUint32(uint32(i))
			for !q.Push(cmd) {
			}
		}
	}()

	received := make([]uint32, 0, n)
	go func() {
		defer wg.Done()
		for len(received) < n {
			cmd, ok := q.Pop()
			if !ok {
				continue
			}
			received = append(received, NewPayloadReader(cmd.Payload[:]).Uint32())
		}
	}()

	wg.Wait()
	require.Len(t, received, n)
	for i, v := range received {
		assert.Equal(t, uint32(i), v)
	}
}

func TestCommandTagString(t *testing.T) {
	assert.Equal(t, "play-voice", CommandPlayVoice.String())
	assert.Equal(t, "shutdown", CommandShutdown.String())
	assert.Equal(t, "none", CommandNone.String())
}
