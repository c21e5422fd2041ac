// Package asset is the control-side facade over datacache.Cache (spec
// §6 "Asset: load(path) -> AudioHandle, load(samples, frames, channels,
// name) -> AudioHandle, unload(handle)"). It owns file decoding, which
// spec §1 explicitly keeps outside the engine's hard core, and the
// memoization that keeps repeat LoadFile calls for the same path from
// re-decoding.
package asset

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/bridge"
	"github.com/z-e-chan/redfish/datacache"
	enginerrors "github.com/z-e-chan/redfish/internal/errors"
	"github.com/z-e-chan/redfish/internal/logging"
)

func init() {
	enginerrors.RegisterComponent("asset", "asset")
}

// decodeMemoExpiration and decodeMemoCleanup tune the go-cache instance
// that remembers a file path's decoded samples and channel count so a
// second LoadFile for the same path skips re-decoding; a repeat load of
// a still-live asset is also deduped inside datacache.Cache itself, but
// that path still re-decodes the file first unless this memo catches it.
const (
	decodeMemoExpiration = 10 * time.Minute
	decodeMemoCleanup    = 2 * time.Minute
)

// decodeMemo is the cached result of decoding one file: the interleaved
// samples and channel count LoadFile needs to call Load again if the
// cache's own entry was freed and recreated since.
type decodeMemo struct {
	samples  []float32
	channels int
}

// Asset wraps a datacache.Cache (control-side bookkeeping) and the
// command queue used to mirror every mutation onto the audio thread's
// own datacache.References table (spec §4.3).
type Asset struct {
	cache    *datacache.Cache
	commands *bridge.CommandQueue
	decoded  *gocache.Cache
	logger   *slog.Logger
}

// New constructs an Asset facade backed by a cache sized for capacity
// entries, dispatching Load/Unload commands through commands.
func New(capacity int, commands *bridge.CommandQueue) *Asset {
	return &Asset{
		cache:    datacache.NewCache(capacity),
		commands: commands,
		decoded:  gocache.New(decodeMemoExpiration, decodeMemoCleanup),
		logger:   logging.ForService("asset"),
	}
}

// Load registers already-decoded interleaved float samples under name
// and pushes a LoadAudioDataCommand so the audio thread installs its own
// reference (spec §6 "load(samples, frames, channels, name)").
func (a *Asset) Load(samples []float32, channels int, name string) (redfish.Handle, error) {
	h, ok := a.cache.Load(samples, channels, name)
	if !ok {
		return redfish.InvalidHandle, enginerrors.Newf("audio data cache is full (capacity %d)", a.cache.Capacity()).
			Category(enginerrors.CategoryLimit).
			Context("name", name).
			Build()
	}
	data := a.cache.Get(h)
	if !a.commands.Push(datacache.NewLoadAudioDataCommand(h, data)) {
		a.warnDropped("load-audio-data", name)
	}
	return h, nil
}

// LoadFile decodes path (WAV or FLAC, by extension) and loads the
// result under path as its name, skipping the decode step entirely if
// this path was already decoded and memoized (spec §6 "load(path) ->
// AudioHandle"; §1 "File decoding of WAV/FLAC ... external
// collaborator" names the format, the memoization is this facade's own
// addition on top of it).
func (a *Asset) LoadFile(path string) (redfish.Handle, error) {
	if cached, ok := a.decoded.Get(path); ok {
		memo := cached.(decodeMemo)
		return a.Load(memo.samples, memo.channels, path)
	}

	samples, channels, err := decodeFile(path)
	if err != nil {
		return redfish.InvalidHandle, enginerrors.New(err).
			Category(enginerrors.CategoryIO).
			Context("path", path).
			Build()
	}

	a.decoded.SetDefault(path, decodeMemo{samples: samples, channels: channels})
	return a.Load(samples, channels, path)
}

// Unload decrements handle's reference count and, once it reaches zero,
// pushes an UnloadAudioDataCommand so the audio thread stops any voice
// still reading it and records the handle for deferred deletion (spec
// §4.2, §4.3, §6 "unload(handle)").
func (a *Asset) Unload(h redfish.Handle) {
	if !a.cache.Unload(h) {
		return
	}
	if !a.commands.Push(datacache.NewUnloadAudioDataCommand(h)) {
		a.warnDroppedHandle("unload-audio-data", h)
	}
}

// HandleAssetDeleteMessage frees the cache slot for the handle carried
// in msg. The control thread must call this for every drained
// MessageAssetDelete (spec §4.3 "freeing the slot happens on the control
// thread upon receipt of the delete message").
func (a *Asset) HandleAssetDeleteMessage(msg bridge.Message) {
	if msg.Tag != bridge.MessageAssetDelete {
		return
	}
	r := bridge.NewPayloadReader(msg.Payload[:])
	v := r.Uint32()
	if v == 0 {
		return
	}
	a.cache.Free(redfish.Handle{Kind: redfish.KindAudioData, Value: v})
}

// Len reports how many assets are currently live.
func (a *Asset) Len() int { return a.cache.Len() }

func (a *Asset) warnDropped(command, name string) {
	if a.logger == nil {
		return
	}
	a.logger.Warn("command queue full, dropping command", "command", command, "name", name)
}

func (a *Asset) warnDroppedHandle(command string, h redfish.Handle) {
	if a.logger == nil {
		return
	}
	a.logger.Warn("command queue full, dropping command", "command", command, "handle", h.Value)
}

func decodeFile(path string) ([]float32, int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decodeWAV(path)
	case ".flac":
		return decodeFLAC(path)
	default:
		return nil, 0, enginerrors.Newf("unsupported audio file extension %q", filepath.Ext(path)).Category(enginerrors.CategoryValidation).Build()
	}
}
