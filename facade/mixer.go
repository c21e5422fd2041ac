package facade

import (
	"sync"

	"github.com/google/uuid"

	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/bridge"
	"github.com/z-e-chan/redfish/mixer"
	"github.com/z-e-chan/redfish/music"
)

// Mixer is the control-side facade over the mix graph (spec §6 "Mixer:
// create_mix_group(name), destroy_mix_group, get_master,
// fade_mix_groups"). Handles are minted here, on the control thread
// (spec §3 "Handles are created only on the control thread"); the
// actual MixGroupState lives on the audio thread inside
// mixer.SummingMixer and is installed by the commands this facade
// pushes.
type Mixer struct {
	engine    *Engine
	allocator *redfish.HandleAllocator

	mu     sync.RWMutex
	groups map[uint32]*MixGroup
	master redfish.Handle
}

func newMixer(e *Engine) *Mixer {
	return &Mixer{
		engine:    e,
		allocator: redfish.NewHandleAllocator(redfish.KindMixGroup),
		groups:    make(map[uint32]*MixGroup),
	}
}

// CreateMixGroup mints a new handle and pushes CommandCreateMixGroup.
// The first group created with isMaster=true becomes the engine's
// master bus; later attempts are rejected by the audio thread (spec §6
// "get_master"). An empty name mints a UUID-based default, so callers
// that only care about the handle don't have to invent one.
func (m *Mixer) CreateMixGroup(name string, isMaster bool) *MixGroup {
	if name == "" {
		name = "mixgroup-" + uuid.New().String()
	}
	h := m.allocator.Next()
	g := &MixGroup{engine: m.engine, handle: h, name: name, isMaster: isMaster}

	m.mu.Lock()
	m.groups[h.Value] = g
	if isMaster && !m.master.Valid() {
		m.master = h
	}
	m.mu.Unlock()

	m.engine.pushCommand(mixer.NewCreateMixGroupCommand(h, isMaster), "create-mix-group")
	return g
}

// DestroyMixGroup removes a mix group by handle.
func (m *Mixer) DestroyMixGroup(h redfish.Handle) {
	m.mu.Lock()
	delete(m.groups, h.Value)
	if m.master == h {
		m.master = redfish.InvalidHandle
	}
	m.mu.Unlock()
	m.engine.pushCommand(mixer.NewDestroyMixGroupCommand(h), "destroy-mix-group")
}

// Get returns the MixGroup facade for handle h, if it was created
// through this Mixer.
func (m *Mixer) Get(h redfish.Handle) (*MixGroup, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[h.Value]
	return g, ok
}

// GetMaster returns the facade for the master mix group, if one has
// been created.
func (m *Mixer) GetMaster() (*MixGroup, bool) {
	m.mu.RLock()
	master := m.master
	m.mu.RUnlock()
	if !master.Valid() {
		return nil, false
	}
	return m.Get(master)
}

// FadeMixGroups schedules a fade-to-dB on every handle in handles,
// using scheduleSync to resolve a start time and durationSync to
// resolve the fade's length (spec §6 "fade_mix_groups(handles,
// target_dB, schedule_sync, duration_sync, optional stinger)"). If
// stinger is valid, it is played concurrently in the voice set so it
// lands alongside the ducking fade.
func (m *Mixer) FadeMixGroups(handles []redfish.Handle, targetDB float64, scheduleSync, durationSync music.Sync, stinger redfish.Handle) {
	start := m.engine.resolveSyncStart(scheduleSync)
	duration := m.engine.resolveSyncDuration(durationSync)
	m.engine.pushCommand(mixer.NewFadeMixGroupsCommand(handles, targetDB, start, duration), "fade-mix-groups")
	if stinger.Valid() {
		m.engine.pushCommand(music.NewPlayStingerCommand(stinger), "play-stinger")
	}
}

// dispatchMeterMessage updates a MixGroup's cached peak/level read-out
// from a drained MessageMixGroupPeak/MessageMixGroupLevel.
func (m *Mixer) dispatchMeterMessage(msg bridge.Message) {
	r := bridge.NewPayloadReader(msg.Payload[:])
	v := r.Uint32()
	value := r.Float32()

	m.mu.RLock()
	g, ok := m.groups[v]
	m.mu.RUnlock()
	if !ok {
		return
	}
	switch msg.Tag {
	case bridge.MessageMixGroupPeak:
		g.meterMu.Lock()
		g.peak = value
		g.meterMu.Unlock()
	case bridge.MessageMixGroupLevel:
		g.meterMu.Lock()
		g.level = value
		g.meterMu.Unlock()
	}
}

// MixGroup is the control-side handle to one mix group, mirroring spec
// §6's per-group surface ("set/get volume dB, set output, create/destroy
// send, create/destroy plug-in by type, get plug-in by slot, peak
// amplitude read-out").
type MixGroup struct {
	engine   *Engine
	handle   redfish.Handle
	name     string
	isMaster bool
	volumeDB float64

	meterMu sync.RWMutex
	peak    float32
	level   float32
}

// Handle returns the opaque handle identifying this mix group.
func (g *MixGroup) Handle() redfish.Handle { return g.handle }

// Name returns the name this mix group was created with.
func (g *MixGroup) Name() string { return g.name }

// IsMaster reports whether this is the engine's master bus.
func (g *MixGroup) IsMaster() bool { return g.isMaster }

// SetVolumeDB schedules a ramp of this group's volume to db.
func (g *MixGroup) SetVolumeDB(db float64) {
	g.volumeDB = db
	g.engine.pushCommand(mixer.NewSetMixGroupVolumeCommand(g.handle, db), "set-mix-group-volume")
}

// VolumeDB returns the last dB value SetVolumeDB was called with.
func (g *MixGroup) VolumeDB() float64 { return g.volumeDB }

// SetOutput retargets which mix group this one sums into.
func (g *MixGroup) SetOutput(output redfish.Handle) {
	g.engine.pushCommand(mixer.NewSetMixGroupOutputCommand(g.handle, output), "set-mix-group-output")
}

// CreateSend installs a send from this group into slot.
func (g *MixGroup) CreateSend(slot int, dest redfish.Handle, amplitude float64) {
	g.engine.pushCommand(mixer.NewCreateSendCommand(g.handle, slot, dest, amplitude), "create-send")
}

// DestroySend removes the send in slot.
func (g *MixGroup) DestroySend(slot int) {
	g.engine.pushCommand(mixer.NewDestroySendCommand(g.handle, slot), "destroy-send")
}

// CreatePlugin installs a plug-in of type t into slot.
func (g *MixGroup) CreatePlugin(slot int, t mixer.PluginType) {
	g.engine.pushCommand(mixer.NewCreatePluginCommand(g.handle, slot, t, g.engine.cfg), "create-plugin")
}

// DestroyPlugin removes the plug-in in slot.
func (g *MixGroup) DestroyPlugin(slot int) {
	g.engine.pushCommand(mixer.NewDestroyPluginCommand(g.handle, slot), "destroy-plugin")
}

// Peak returns the most recently reported peak amplitude for this
// group (spec §6 "peak amplitude read-out").
func (g *MixGroup) Peak() float32 {
	g.meterMu.RLock()
	defer g.meterMu.RUnlock()
	return g.peak
}

// Level returns the most recently reported smoothed level for this
// group, for UI meters.
func (g *MixGroup) Level() float32 {
	g.meterMu.RLock()
	defer g.meterMu.RUnlock()
	return g.level
}
