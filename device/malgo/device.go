// Package malgo is the concrete host audio device adapter: it owns the
// cross-platform malgo playback device and drives facade.Engine.Process
// from its data callback, the one goroutine in this repo that actually
// plays the role of spec's "audio thread" (everything under
// timeline/voice/music/mixer only assumes one exists). Grounded on the
// teacher's own audiocore/sources/malgo package, adapted from capture to
// playback and from int16 PCM to interleaved float32.
package malgo

import (
	"encoding/binary"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"

	"github.com/z-e-chan/redfish/config"
	enginerrors "github.com/z-e-chan/redfish/internal/errors"
	"github.com/z-e-chan/redfish/internal/logging"
)

func init() {
	enginerrors.RegisterComponent("device/malgo", "device")
}

// Engine is the subset of facade.Engine the device drives; it is an
// interface rather than a direct *facade.Engine dependency so tests can
// exercise Device without a real audio-thread component tree behind it.
type Engine interface {
	Process(out []float32)
}

// Device owns one malgo playback device and pumps Engine.Process from
// its data callback. Construct one per facade.Engine, call Start once
// the engine's handle-producing setup (mix groups, cues, sound effects)
// is ready to receive commands, and Stop before destroying the Engine
// (spec §4.8 requires the control side to have observed
// ContextShutdownComplete before the host is allowed to tear down the
// device that drives the callback).
type Device struct {
	engine Engine
	cfg    config.EngineConfig
	logger *slog.Logger

	mu      sync.Mutex
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	running atomic.Bool

	// scratch is reused by every callback invocation: the audio thread
	// must not allocate (spec §5 "No allocation occurs inside the audio
	// callback").
	scratch []float32
}

// New constructs a Device for engine, sized from cfg's sample rate,
// channel count, and block size.
func New(engine Engine, cfg config.EngineConfig) *Device {
	return &Device{
		engine:  engine,
		cfg:     cfg,
		logger:  logging.ForService("device"),
		scratch: make([]float32, cfg.BlockSize*cfg.Channels),
	}
}

// Start initializes the platform backend, opens a playback device at
// the configured sample rate/channels/block size, and begins calling
// Engine.Process from malgo's data callback.
func (d *Device) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running.Load() {
		return enginerrors.New(nil).
			Category(enginerrors.CategoryState).
			Context("error", "device already running").
			Build()
	}

	backend, err := backendForPlatform()
	if err != nil {
		return err
	}

	ctx, err := malgo.InitContext([]malgo.Backend{backend}, malgo.ContextConfig{}, nil)
	if err != nil {
		return enginerrors.New(err).
			Category(enginerrors.CategoryIO).
			Context("operation", "init-context").
			Context("backend", runtime.GOOS).
			Build()
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(d.cfg.Channels)
	deviceConfig.SampleRate = uint32(d.cfg.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(d.cfg.BlockSize)
	deviceConfig.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{Data: d.onData}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = ctx.Uninit()
		return enginerrors.New(err).
			Category(enginerrors.CategoryIO).
			Context("operation", "init-device").
			Build()
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = ctx.Uninit()
		return enginerrors.New(err).
			Category(enginerrors.CategoryIO).
			Context("operation", "start-device").
			Build()
	}

	d.ctx = ctx
	d.device = device
	d.running.Store(true)
	return nil
}

// Stop halts and tears down the device. It does not shut down the
// engine itself; callers should drive facade.Engine.Shutdown to
// completion before calling Stop so no voice is mid-render when the
// callback is torn down.
func (d *Device) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running.Load() {
		return enginerrors.New(nil).
			Category(enginerrors.CategoryState).
			Context("error", "device not running").
			Build()
	}

	d.device.Uninit()
	_ = d.ctx.Uninit()
	d.device = nil
	d.ctx = nil
	d.running.Store(false)
	return nil
}

// IsRunning reports whether the device is currently open.
func (d *Device) IsRunning() bool { return d.running.Load() }

// onData is malgo's playback data callback: it must fill pOutput with
// frameCount frames of interleaved samples and must never allocate or
// block (spec §5). A frameCount mismatch against the configured block
// size is logged and produces silence rather than a partial Process
// call, since AudioTimeline.Process assumes exactly BlockSize frames
// per call (spec §6 "frames_requested must equal the configured block
// size; the engine does not handle mismatches").
func (d *Device) onData(pOutput, _ []byte, frameCount uint32) {
	if int(frameCount) != d.cfg.BlockSize {
		d.warn("frame count mismatch, emitting silence", "got", frameCount, "want", d.cfg.BlockSize)
		for i := range pOutput {
			pOutput[i] = 0
		}
		return
	}

	d.engine.Process(d.scratch)
	for i, sample := range d.scratch {
		binary.LittleEndian.PutUint32(pOutput[i*4:i*4+4], math.Float32bits(sample))
	}
}

func (d *Device) warn(msg string, args ...any) {
	if d.logger == nil {
		return
	}
	d.logger.Warn(msg, args...)
}

// backendForPlatform returns the malgo backend to use for runtime.GOOS,
// the same per-OS mapping the teacher's device enumeration uses.
func backendForPlatform() (malgo.Backend, error) {
	switch runtime.GOOS {
	case "linux":
		return malgo.BackendAlsa, nil
	case "windows":
		return malgo.BackendWasapi, nil
	case "darwin":
		return malgo.BackendCoreaudio, nil
	default:
		return malgo.BackendNull, enginerrors.New(nil).
			Category(enginerrors.CategoryValidation).
			Context("os", runtime.GOOS).
			Context("error", "unsupported operating system").
			Build()
	}
}
