// Package facade is the control-side API surface spec §6 names:
// Engine composes Asset, Mixer, Music, and Event behind one type a game
// constructs once and calls from any thread other than the audio
// callback. Every mutating method here ends by pushing a bridge.Command;
// every read-out is served from state this package mirrors out of
// bridge.Message drained from the audio thread, never by reaching into
// audio-thread state directly (spec §5 "Ownership partition").
package facade

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/asset"
	"github.com/z-e-chan/redfish/bridge"
	"github.com/z-e-chan/redfish/config"
	enginerrors "github.com/z-e-chan/redfish/internal/errors"
	"github.com/z-e-chan/redfish/internal/logging"
	"github.com/z-e-chan/redfish/internal/metrics"
	"github.com/z-e-chan/redfish/music"
	"github.com/z-e-chan/redfish/timeline"
)

func init() {
	enginerrors.RegisterComponent("facade", "facade")
}

// Engine is the top-level control-side object. Construct one per audio
// device instance; its Process method is the function the host callback
// (or device/malgo's data callback) must invoke once per block.
type Engine struct {
	cfg      config.EngineConfig
	commands *bridge.CommandQueue
	messages *bridge.MessageQueue
	timeline *timeline.AudioTimeline
	metrics  *metrics.EngineMetrics
	logger   *slog.Logger

	Asset *asset.Asset
	Mixer *Mixer
	Music *Music
	Event *Event

	soundEffects *redfish.HandleAllocator

	estimatedPlayhead atomic.Int64
	activeVoices      atomic.Int32

	pumpCancel context.CancelFunc
	pumpDone   chan struct{}

	shutdownOnce sync.Once
	shutdownAck  chan struct{}
}

// New constructs an Engine and every audio-thread component it drives,
// sized from cfg (spec §6 "Constants"), reporting no metrics.
func New(cfg config.EngineConfig) *Engine {
	return NewWithMetrics(cfg, metrics.NoopEngineMetrics())
}

// NewWithMetrics is New, reporting through em instead of a no-op sink;
// pass metrics.NewEngineMetrics(registry) to export to Prometheus.
func NewWithMetrics(cfg config.EngineConfig, em *metrics.EngineMetrics) *Engine {
	commands := bridge.NewCommandQueue(cfg.CommandQueueCapacity)
	messages := bridge.NewMessageQueue(cfg.MessageQueueCapacity)

	e := &Engine{
		cfg:          cfg,
		commands:     commands,
		messages:     messages,
		timeline:     timeline.NewAudioTimeline(cfg, commands, messages, em),
		metrics:      em,
		logger:       logging.ForService("facade"),
		Asset:        asset.New(cfg.MaxAudioData, commands),
		soundEffects: redfish.NewHandleAllocator(redfish.KindSoundEffect),
		shutdownAck:  make(chan struct{}),
	}
	e.Mixer = newMixer(e)
	e.Music = newMusic(e)
	e.Event = newEvent()
	return e
}

// NewSoundEffect mints a new sound-effect handle and returns its
// builder facade (spec §6 "SoundEffect: builder-style with
// variations ...").
func (e *Engine) NewSoundEffect() *SoundEffect {
	return newSoundEffect(e, e.soundEffects.Next())
}

// Process renders one callback's worth of interleaved samples into out
// (spec §6 "Host callback"). This is the only method on Engine (or
// anything it holds) that may be called from the audio thread.
func (e *Engine) Process(out []float32) {
	e.timeline.Process(out)
	e.estimatedPlayhead.Store(e.timeline.Playhead())
}

// Start launches a background goroutine that drains the message queue
// every pollInterval, dispatching each message to the facade state it
// updates (spec §4.2 "the control thread drains opportunistically").
// Games that already poll on their own frame loop should call Poll
// directly instead and skip Start.
func (e *Engine) Start(pollInterval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	e.pumpCancel = cancel
	e.pumpDone = make(chan struct{})

	go func() {
		defer close(e.pumpDone)
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				e.Poll()
				return
			case <-ticker.C:
				e.Poll()
			}
		}
	}()
}

// Poll drains every currently queued Message and dispatches it.
func (e *Engine) Poll() {
	e.messages.DrainAll(e.dispatchMessage)
}

// Close stops the background poll goroutine started by Start, if any,
// and waits for it to exit. It does not shut down the audio thread; call
// Shutdown for that.
func (e *Engine) Close() {
	if e.pumpCancel == nil {
		return
	}
	e.pumpCancel()
	<-e.pumpDone
}

// Shutdown pushes CommandShutdown and blocks until the audio thread's
// ContextShutdownComplete message is observed (via Poll, which must
// still be driven by the caller or the Start goroutine) or timeout
// elapses. The host must not free its audio device or destroy this
// Engine until Shutdown returns true (spec §4.8 "The control side blocks
// on receipt of ContextShutdownComplete before destroying audio-thread
// state").
func (e *Engine) Shutdown(timeout time.Duration) bool {
	if !e.commands.Push(bridge.Command{Tag: bridge.CommandShutdown}) {
		e.warn("command queue full, dropping command", "command", "shutdown")
	}
	select {
	case <-e.shutdownAck:
		return true
	case <-time.After(timeout):
		return false
	}
}

// estimatedPlayheadValue returns the best-effort current playhead the
// control thread can read without crossing into audio-thread state: the
// value observed the last time Process ran, which may be one block
// stale by the time a facade method reads it.
func (e *Engine) estimatedPlayheadValue() int64 { return e.estimatedPlayhead.Load() }

// resolveSyncStart estimates the absolute sample time sync resolves to
// if scheduled right now, using the control side's best-effort cached
// tempo/meter/bar state (spec §4.6 Conductor.CalculateStartTime runs
// this exactly on the audio thread; this is a read-only approximation
// for callers that want to display or log a predicted time, not a
// substitute for the audio thread's own resolution of the command).
func (e *Engine) resolveSyncStart(sync music.Sync) int64 {
	playhead := e.estimatedPlayheadValue()
	if sync.Mode == music.SyncTime {
		return playhead + int64(sync.TimeSeconds*float64(e.cfg.SampleRate))
	}
	return playhead + int64(e.resolveSyncDuration(sync))
}

// resolveSyncDuration estimates sync's duration in samples from the
// facade's cached tempo/meter, via the already-exported
// music.GetSyncSamples.
func (e *Engine) resolveSyncDuration(sync music.Sync) int {
	tempo, meter := e.Music.cachedTempoMeter()
	if tempo <= 0 || !meter.Valid() {
		return 0
	}
	return music.GetSyncSamples(sync, tempo, meter, float64(e.cfg.SampleRate))
}

// dispatchMessage routes one drained Message to whichever facade state
// it updates.
func (e *Engine) dispatchMessage(msg bridge.Message) {
	switch msg.Tag {
	case bridge.MessageAssetDelete:
		e.Asset.HandleAssetDeleteMessage(msg)
	case bridge.MessageVoiceStarted, bridge.MessageVoiceStopped:
		e.Event.dispatchVoiceMessage(msg)
	case bridge.MessageContextNumVoices:
		r := bridge.NewPayloadReader(msg.Payload[:])
		e.activeVoices.Store(int32(r.Uint32()))
	case bridge.MessageMixGroupPeak, bridge.MessageMixGroupLevel:
		e.Mixer.dispatchMeterMessage(msg)
	case bridge.MessageMusicTransitioned, bridge.MessageMusicFinished,
		bridge.MessageBarChanged, bridge.MessageBeatChanged,
		bridge.MessageTempoChanged, bridge.MessageMeterChanged:
		e.Music.dispatchMessage(msg, e.Event)
	case bridge.MessageContextShutdownComplete:
		e.shutdownOnce.Do(func() { close(e.shutdownAck) })
	}
}

// ActiveVoices reports the most recently observed active-voice count
// (spec §4.5 ContextNumVoices).
func (e *Engine) ActiveVoices() int { return int(e.activeVoices.Load()) }

func (e *Engine) pushCommand(cmd bridge.Command, name string) bool {
	if e.commands.Push(cmd) {
		return true
	}
	e.warn("command queue full, dropping command", "command", name)
	if e.metrics != nil {
		e.metrics.RecordCommandQueueDrop()
	}
	return false
}

func (e *Engine) warn(msg string, args ...any) {
	if e.logger == nil {
		return
	}
	e.logger.Warn(msg, args...)
}
