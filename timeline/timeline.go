// Package timeline implements AudioTimeline, the audio-thread root
// state (spec §4.8). Process is the entire per-callback pipeline: drain
// commands, advance music, advance voices, sum the mix graph, flush
// deferred asset deletes, advance the shutdown handshake. Nothing here
// ever runs on the control thread, and nothing here ever allocates or
// takes a lock.
package timeline

import (
	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/bridge"
	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/config"
	"github.com/z-e-chan/redfish/datacache"
	"github.com/z-e-chan/redfish/internal/metrics"
	"github.com/z-e-chan/redfish/mixer"
	"github.com/z-e-chan/redfish/music"
	"github.com/z-e-chan/redfish/voice"
)

// ShutdownState is the four-state sequence a CommandShutdown drives the
// timeline through (spec §4.8 "Shutdown"): Stop → Stopping (one
// callback later) → the shutdown-complete message is sent → Complete.
type ShutdownState uint8

const (
	ShutdownNone ShutdownState = iota
	ShutdownStop
	ShutdownStopping
	ShutdownComplete
)

// maxPendingDeletes bounds the to-delete set the deferred-delete
// protocol accumulates between callbacks (spec §4.2 "a bounded to-delete
// set"). It is sized generously against MaxAudioData since every entry
// is cleared the same callback it is recorded in.
const maxPendingDeletes = 64

// AudioTimeline is the audio thread's entire root: it owns every
// audio-thread-exclusive component (spec §5 "Ownership partition") and
// is driven by exactly one caller, the host device callback, through
// Process.
type AudioTimeline struct {
	cfg      config.EngineConfig
	commands *bridge.CommandQueue
	messages *bridge.MessageQueue

	refs   *datacache.References
	pool   *buffer.Pool
	voices *voice.VoiceSet
	music  *music.MusicManager
	mixer  *mixer.SummingMixer

	playhead int64
	toDelete []redfish.Handle
	shutdown ShutdownState

	metrics *metrics.EngineMetrics
}

// NewAudioTimeline constructs the audio-thread root, sizing every pool
// from cfg. commands and messages are the SPSC bridge queues the control
// side already holds the other end of. em may be metrics.NoopEngineMetrics()
// if the caller does not want Prometheus collectors.
func NewAudioTimeline(cfg config.EngineConfig, commands *bridge.CommandQueue, messages *bridge.MessageQueue, em *metrics.EngineMetrics) *AudioTimeline {
	return &AudioTimeline{
		cfg:      cfg,
		commands: commands,
		messages: messages,
		refs:     datacache.NewReferences(cfg.MaxAudioData),
		pool:     buffer.NewPool(cfg.MaxVoices+cfg.MaxCueLayers+cfg.MaxCueLayers*cfg.MaxStingers, cfg.Channels, cfg.BlockSize),
		voices:   voice.NewVoiceSet(cfg.MaxVoices, cfg.PanLaw),
		music:    music.NewMusicManager(cfg),
		mixer:    mixer.NewSummingMixer(cfg, cfg.Channels, cfg.BlockSize),
		toDelete: make([]redfish.Handle, 0, maxPendingDeletes),
		metrics:  em,
	}
}

// Playhead reports the current absolute sample position.
func (t *AudioTimeline) Playhead() int64 { return t.playhead }

// ShutdownState reports the current phase of the shutdown handshake.
func (t *AudioTimeline) ShutdownStateValue() ShutdownState { return t.shutdown }

// Process renders one callback's worth of interleaved output into out,
// which must be sized BlockSize*Channels, per spec §4.8's seven steps.
func (t *AudioTimeline) Process(out []float32) {
	t.commands.DrainAll(t.applyCommand)

	for i := range out {
		out[i] = 0
	}

	if t.shutdown == ShutdownStopping || t.shutdown == ShutdownComplete {
		t.advanceShutdown()
		return
	}

	t.pool.Reset()
	t.music.Process(t.playhead, t.cfg.BlockSize, t.refs, t.pool, t.messages)
	t.voices.Process(t.playhead, t.cfg.BlockSize, t.refs, t.pool, t.messages)
	t.mixer.Sum(t.playhead, out, t.pool.Items(), t.messages)

	t.playhead += int64(t.cfg.BlockSize)
	if t.metrics != nil {
		t.metrics.SetVoicesActive(t.voices.ActiveCount())
		t.metrics.RecordCallbackProcessed()
	}

	t.flushPendingDeletes()
	t.advanceShutdown()
}

// applyCommand dispatches one drained Command to its owning component.
// datacache's three tags are handled inline since the deferred-delete
// to-delete bookkeeping lives on the timeline, not inside References;
// every other tag is forwarded to the component that owns it.
func (t *AudioTimeline) applyCommand(cmd bridge.Command) {
	switch cmd.Tag {
	case bridge.CommandLoadAudioData, bridge.CommandClearAudioDataReference:
		t.refs.ApplyCommand(cmd)
	case bridge.CommandUnloadAudioData:
		t.applyUnloadAudioData(cmd)
	case bridge.CommandShutdown:
		if t.shutdown == ShutdownNone {
			t.shutdown = ShutdownStop
		}
	case bridge.CommandCreateMixGroup, bridge.CommandDestroyMixGroup, bridge.CommandSetMixGroupOutput,
		bridge.CommandCreateSend, bridge.CommandDestroySend,
		bridge.CommandCreatePlugin, bridge.CommandDestroyPlugin,
		bridge.CommandSetMixGroupVolume, bridge.CommandFadeMixGroups:
		t.mixer.ApplyCommand(cmd)
	case bridge.CommandPlayVoice, bridge.CommandStopVoice, bridge.CommandFadeVoice:
		t.voices.ApplyCommand(cmd, float64(t.cfg.SampleRate), t.cfg.Channels)
	case bridge.CommandCreateCue, bridge.CommandDestroyCue,
		bridge.CommandCreateTransition, bridge.CommandDestroyTransition,
		bridge.CommandCreateStinger, bridge.CommandDestroyStinger,
		bridge.CommandPlayTransition, bridge.CommandPlayStinger,
		bridge.CommandStopMusic, bridge.CommandFadeOutAndStopMusic:
		t.music.ApplyCommand(cmd, t.playhead)
	}
}

// applyUnloadAudioData implements spec §4.2's deferred delete: stop
// every voice (sound-effect and music) still reading the handle, clear
// the audio thread's own reference to it, and record it for one
// AssetDelete message this callback so the control thread can free the
// slot knowing nothing still touches it.
func (t *AudioTimeline) applyUnloadAudioData(cmd bridge.Command) {
	h := datacache.DecodeHandle(cmd)
	if !h.Valid() {
		return
	}
	t.voices.StopByAudioHandle(h)
	t.music.ResetIfPlayingAudioHandle(h)
	t.refs.Clear(h)
	t.markForDelete(h)
}

// markForDelete appends h to the to-delete set, deduplicating so a
// handle unloaded twice in one callback only produces one message.
func (t *AudioTimeline) markForDelete(h redfish.Handle) {
	for _, existing := range t.toDelete {
		if existing == h {
			return
		}
	}
	if len(t.toDelete) >= cap(t.toDelete) {
		return
	}
	t.toDelete = append(t.toDelete, h)
}

// flushPendingDeletes emits one AssetDelete message per handle recorded
// this callback and clears the set (spec §4.2 "at the end of each
// callback emits one AssetDelete message per entry").
func (t *AudioTimeline) flushPendingDeletes() {
	for _, h := range t.toDelete {
		var buf [bridge.MessagePayloadSize]byte
		bridge.NewPayloadWriter(buf[:]).PutUint32(h.Value)
		t.messages.Push(bridge.Message{Tag: bridge.MessageAssetDelete, Payload: buf})
	}
	t.toDelete = t.toDelete[:0]
}

// advanceShutdown steps the shutdown state machine (spec §4.8 "Stop →
// Stopping → SendShutdownCompleteMessage → Complete"). Stop transitions
// to Stopping immediately so the next callback renders one more silent
// block before the complete message goes out, matching "one callback
// later".
func (t *AudioTimeline) advanceShutdown() {
	switch t.shutdown {
	case ShutdownStop:
		t.shutdown = ShutdownStopping
	case ShutdownStopping:
		var buf [bridge.MessagePayloadSize]byte
		t.messages.Push(bridge.Message{Tag: bridge.MessageContextShutdownComplete, Payload: buf})
		t.shutdown = ShutdownComplete
	}
}
