// Package bridge implements the lock-free single-producer/single-consumer
// queues that carry Commands (control thread → audio thread) and Messages
// (audio thread → control thread), per spec §4.2. Both queues are fixed
// capacity ring buffers over preallocated arrays of fixed-size tagged
// records: no payload here is ever heap-allocated per enqueue, and no
// lock is ever taken on the audio-thread side of either queue.
package bridge

import "sync/atomic"

// CommandTag identifies which handler a Command dispatches to. Tags are
// dispatched by table lookup, never through an indirect function pointer
// stored in shared memory (spec §4.2 "thread-of-execution for commands").
type CommandTag uint8

const (
	CommandNone CommandTag = iota
	CommandLoadAudioData
	CommandUnloadAudioData
	CommandClearAudioDataReference
	CommandCreateMixGroup
	CommandDestroyMixGroup
	CommandSetMixGroupOutput
	CommandCreateSend
	CommandDestroySend
	CommandCreatePlugin
	CommandDestroyPlugin
	CommandSetMixGroupVolume
	CommandFadeMixGroups
	CommandPlayVoice
	CommandStopVoice
	CommandFadeVoice
	CommandCreateCue
	CommandDestroyCue
	CommandCreateTransition
	CommandDestroyTransition
	CommandCreateStinger
	CommandDestroyStinger
	CommandPlayTransition
	CommandPlayStinger
	CommandStopMusic
	CommandFadeOutAndStopMusic
	CommandShutdown
)

func (t CommandTag) String() string {
	switch t {
	case CommandLoadAudioData:
		return "load-audio-data"
	case CommandUnloadAudioData:
		return "unload-audio-data"
	case CommandClearAudioDataReference:
		return "clear-audio-data-reference"
	case CommandCreateMixGroup:
		return "create-mix-group"
	case CommandDestroyMixGroup:
		return "destroy-mix-group"
	case CommandSetMixGroupOutput:
		return "set-mix-group-output"
	case CommandCreateSend:
		return "create-send"
	case CommandDestroySend:
		return "destroy-send"
	case CommandCreatePlugin:
		return "create-plugin"
	case CommandDestroyPlugin:
		return "destroy-plugin"
	case CommandSetMixGroupVolume:
		return "set-mix-group-volume"
	case CommandFadeMixGroups:
		return "fade-mix-groups"
	case CommandCreateCue:
		return "create-cue"
	case CommandDestroyCue:
		return "destroy-cue"
	case CommandCreateTransition:
		return "create-transition"
	case CommandDestroyTransition:
		return "destroy-transition"
	case CommandCreateStinger:
		return "create-stinger"
	case CommandDestroyStinger:
		return "destroy-stinger"
	case CommandPlayVoice:
		return "play-voice"
	case CommandStopVoice:
		return "stop-voice"
	case CommandFadeVoice:
		return "fade-voice"
	case CommandPlayTransition:
		return "play-transition"
	case CommandPlayStinger:
		return "play-stinger"
	case CommandStopMusic:
		return "stop-music"
	case CommandFadeOutAndStopMusic:
		return "fade-out-and-stop-music"
	case CommandShutdown:
		return "shutdown"
	default:
		return "none"
	}
}

// CommandPayloadSize is the inline payload capacity in bytes (spec §4.2:
// an 88-byte record is an 8-byte tag plus an 80-byte payload).
const CommandPayloadSize = 80

// Command is a single fixed-size tagged record enqueued by the control
// thread and drained by the audio thread. Payload holds the
// tag-specific fields packed by the caller; handlers know their own
// layout and reinterpret the bytes directly, avoiding any interface
// dispatch in the hot path.
//
// Ref carries the rare payload that does not fit in 80 packed bytes: a
// decoded *datacache.AudioData for CommandLoadAudioData, or a
// constructed dsp.Block for CommandCreatePlugin. The original C++
// record stores a raw pointer inline; Go has no safe way to hide a
// pointer inside a byte array from the garbage collector, so Ref is an
// ordinary Go-typed field instead. It costs the struct nothing on tags
// that don't use it (nil interface), and since Command is still copied
// by value through the ring buffer, this stays allocation-free on the
// caller's side beyond whatever already allocated the referenced value.
type Command struct {
	Tag     CommandTag
	Payload [CommandPayloadSize]byte
	Ref     any
}

// CommandQueue is a bounded SPSC ring buffer of Commands. One goroutine
// (any control thread caller, serialized by the caller) pushes; exactly
// one goroutine (the audio callback) pops. The head/tail indices are
// plain atomics so neither side ever blocks on a mutex.
type CommandQueue struct {
	buf  []Command
	mask uint64
	head atomic.Uint64 // next slot to write
	tail atomic.Uint64 // next slot to read
}

// NewCommandQueue allocates a queue whose capacity is rounded up to the
// next power of two so index wrapping can use a mask instead of a
// modulo.
func NewCommandQueue(capacity int) *CommandQueue {
	cap := nextPowerOfTwo(capacity)
	return &CommandQueue{
		buf:  make([]Command, cap),
		mask: uint64(cap - 1),
	}
}

// Push enqueues cmd. It reports false without blocking if the queue is
// full; the caller is responsible for counting the drop (spec §4.2:
// commands are dispatched by tag, drops are observable via
// metrics.RecordCommandQueueDrop).
func (q *CommandQueue) Push(cmd Command) bool {
	head := q.head.Load()
	tail := q.tail.Load()
	if head-tail >= uint64(len(q.buf)) {
		return false
	}
	q.buf[head&q.mask] = cmd
	q.head.Store(head + 1)
	return true
}

// Pop dequeues the next Command in FIFO order. ok is false if the queue
// is empty.
func (q *CommandQueue) Pop() (cmd Command, ok bool) {
	tail := q.tail.Load()
	head := q.head.Load()
	if tail >= head {
		return Command{}, false
	}
	cmd = q.buf[tail&q.mask]
	q.tail.Store(tail + 1)
	return cmd, true
}

// Len reports the number of Commands currently queued. It is advisory
// only: the producer may be mid-push by the time the caller reads it.
func (q *CommandQueue) Len() int {
	return int(q.head.Load() - q.tail.Load())
}

// Capacity returns the queue's fixed capacity.
func (q *CommandQueue) Capacity() int { return len(q.buf) }

// DrainAll pops every currently queued Command in enqueue order and
// invokes handle on each, matching the audio thread's "drain to empty
// at the top of each callback" contract (spec §4.2, §4.5).
func (q *CommandQueue) DrainAll(handle func(Command)) {
	for {
		cmd, ok := q.Pop()
		if !ok {
			return
		}
		handle(cmd)
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
