package mixer

import (
	"sort"

	"github.com/z-e-chan/redfish"
	"github.com/z-e-chan/redfish/bridge"
	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/config"
	"github.com/z-e-chan/redfish/dsp"
)

// SummingMixer owns every MixGroup, the pooled Send and plug-in arrays
// they index into, and the priority order processing visits them in
// (spec §4.7). All of it is audio-thread-exclusive state: groups,
// sends, and plug-ins are installed by command handlers, never touched
// directly by a control-side facade call.
type SummingMixer struct {
	groups   []*MixGroup // fixed slot array, nil entries are free slots
	order    []*MixGroup // groups sorted by Priority, descending (leaves before roots)
	master   *MixGroup
	channels int
	frames   int

	sendPool []Send
	plugPool []dsp.Block

	cfg config.EngineConfig
}

// NewSummingMixer allocates a SummingMixer sized for cfg's
// MaxMixGroups/MaxMixGroupSends/MaxMixGroupPlugins, with accumulator
// MixItems sized for channels/frames.
func NewSummingMixer(cfg config.EngineConfig, channels, frames int) *SummingMixer {
	return &SummingMixer{
		groups:   make([]*MixGroup, cfg.MaxMixGroups),
		channels: channels,
		frames:   frames,
		sendPool: make([]Send, cfg.MaxMixGroups*cfg.MaxMixGroupSends),
		plugPool: make([]dsp.Block, cfg.MaxMixGroups*cfg.MaxMixGroupPlugins),
		cfg:      cfg,
	}
}

func (sm *SummingMixer) slotOf(h redfish.Handle) int {
	for i, g := range sm.groups {
		if g != nil && g.Handle == h {
			return i
		}
	}
	return -1
}

// Group returns the MixGroup for handle h, if any.
func (sm *SummingMixer) Group(h redfish.Handle) (*MixGroup, bool) {
	if i := sm.slotOf(h); i >= 0 {
		return sm.groups[i], true
	}
	return nil, false
}

// CreateGroup installs a new MixGroup under handle h, claiming the
// first free slot. Returns false if the pool is exhausted (spec §7
// "attempts to create more than MAX_* entities") or h already exists.
// The first master group created becomes THE master; later ones are
// rejected (only one master per engine instance).
func (sm *SummingMixer) CreateGroup(h redfish.Handle, isMaster bool) bool {
	if sm.slotOf(h) >= 0 {
		return false
	}
	if isMaster && sm.master != nil {
		return false
	}
	free := -1
	for i, g := range sm.groups {
		if g == nil {
			free = i
			break
		}
	}
	if free == -1 {
		return false
	}
	g := newMixGroup(h, isMaster, sm.channels, sm.frames)
	sm.groups[free] = g
	if isMaster {
		sm.master = g
	}
	sm.recomputePriorities()
	return true
}

// DestroyGroup removes the group at handle h, along with any sends
// that reference it as source or destination.
func (sm *SummingMixer) DestroyGroup(h redfish.Handle) {
	i := sm.slotOf(h)
	if i == -1 {
		return
	}
	if sm.groups[i] == sm.master {
		sm.master = nil
	}
	sm.groups[i] = nil
	for idx := range sm.sendPool {
		if sm.sendPool[idx].active && (sm.sendPool[idx].Source == h || sm.sendPool[idx].Dest == h) {
			sm.sendPool[idx] = Send{}
		}
	}
	sm.recomputePriorities()
}

// SetOutput retargets h's output mix group. If the new topology would
// introduce a cycle, the change is reverted and false is returned (spec
// §4 "Graph misuse prevented by construction ... implementations must
// detect and refuse").
func (sm *SummingMixer) SetOutput(h, output redfish.Handle) bool {
	g, ok := sm.Group(h)
	if !ok {
		return false
	}
	prev := g.Output
	g.Output = output
	if !sm.recomputePriorities() {
		g.Output = prev
		sm.recomputePriorities()
		return false
	}
	return true
}

// CreateSend installs a send from source to dest at the given amplitude
// into source's slot-th send slot (the caller, not the mixer, picks the
// slot — spec §6 exposes sends as a fixed per-group array the control
// side addresses directly, the same way it already addresses plug-in
// slots, so no reply channel is needed to learn an auto-picked index).
// Returns false on a dangling handle, an out-of-range or occupied slot,
// pool exhaustion, or a topology that would cycle.
func (sm *SummingMixer) CreateSend(source redfish.Handle, slot int, dest redfish.Handle, amplitude float64) bool {
	g, ok := sm.Group(source)
	if !ok || slot < 0 || slot >= len(g.sends) || g.sends[slot] != -1 {
		return false
	}
	poolIdx := -1
	for i, s := range sm.sendPool {
		if !s.active {
			poolIdx = i
			break
		}
	}
	if poolIdx == -1 {
		return false
	}
	sm.sendPool[poolIdx] = Send{Source: source, Dest: dest, Amplitude: amplitude, active: true}
	g.sends[slot] = poolIdx
	if !sm.recomputePriorities() {
		sm.sendPool[poolIdx] = Send{}
		g.sends[slot] = -1
		sm.recomputePriorities()
		return false
	}
	return true
}

// DestroySend removes the send in source's slot-th send slot.
func (sm *SummingMixer) DestroySend(source redfish.Handle, slot int) {
	g, ok := sm.Group(source)
	if !ok || slot < 0 || slot >= len(g.sends) || g.sends[slot] == -1 {
		return
	}
	sm.sendPool[g.sends[slot]] = Send{}
	g.sends[slot] = -1
	sm.recomputePriorities()
}

// CreatePlugin installs block into h's slot-th plug-in slot (caller-
// addressed the same way CreateSend is, spec §6 "create/destroy plug-in
// by slot"). Returns false on a dangling handle, an out-of-range or
// occupied slot, or pool exhaustion.
func (sm *SummingMixer) CreatePlugin(h redfish.Handle, slot int, block dsp.Block) bool {
	g, ok := sm.Group(h)
	if !ok || slot < 0 || slot >= len(g.plugins) || g.plugins[slot] != -1 {
		return false
	}
	poolIdx := -1
	for i, p := range sm.plugPool {
		if p == nil {
			poolIdx = i
			break
		}
	}
	if poolIdx == -1 {
		return false
	}
	sm.plugPool[poolIdx] = block
	g.plugins[slot] = poolIdx
	return true
}

// DestroyPlugin removes the plug-in in h's slot-th plug-in slot.
func (sm *SummingMixer) DestroyPlugin(h redfish.Handle, slot int) {
	g, ok := sm.Group(h)
	if !ok || slot < 0 || slot >= len(g.plugins) || g.plugins[slot] == -1 {
		return
	}
	sm.plugPool[g.plugins[slot]] = nil
	g.plugins[slot] = -1
}

// Plugin returns the dsp.Block installed in h's slot-th plug-in slot,
// or nil (spec §6 "get plug-in by slot").
func (sm *SummingMixer) Plugin(h redfish.Handle, slot int) dsp.Block {
	g, ok := sm.Group(h)
	if !ok || slot < 0 || slot >= len(g.plugins) || g.plugins[slot] == -1 {
		return nil
	}
	return sm.plugPool[g.plugins[slot]]
}

// SetVolumeDB schedules a ramp of h's volume gain to the linear
// equivalent of db.
func (sm *SummingMixer) SetVolumeDB(h redfish.Handle, db float64) {
	g, ok := sm.Group(h)
	if !ok {
		return
	}
	g.VolumeDB = db
	g.volumeGain.SetTarget(dsp.DBToAmp(db))
}

// FadeGroups arms the scheduled fade-to-dB fader on every handle in
// handles, starting at startTime and lasting durationSamples (spec §4.7
// "Fades across mix groups (used for musical ducking)").
func (sm *SummingMixer) FadeGroups(handles []redfish.Handle, targetDB float64, startTime int64, durationSamples int) {
	target := dsp.DBToAmp(targetDB)
	for _, h := range handles {
		g, ok := sm.Group(h)
		if !ok {
			continue
		}
		g.fader.ScheduleFade(startTime, durationSamples, g.fadeGain.Current(), target, false)
	}
}

// recomputePriorities assigns every group a priority via the longest
// path to the master (spec §4.7: a group's priority exceeds its output
// and every send target's priority), then re-sorts the processing
// order. Returns false (leaving the prior order untouched) if the
// induced graph has a cycle (spec §4 "a cycle would manifest as
// infinite priority growth ... implementations must detect and
// refuse"). This walks the graph with a plain map rather than a fixed
// array: it only runs when topology actually changes (group/send/output
// commands), not on the steady-state per-callback path, so it is exempt
// from the no-allocation rule that governs Sum.
func (sm *SummingMixer) recomputePriorities() bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[redfish.Handle]int, len(sm.groups))
	priority := make(map[redfish.Handle]int, len(sm.groups))

	var visit func(h redfish.Handle) (int, bool)
	visit = func(h redfish.Handle) (int, bool) {
		g, ok := sm.Group(h)
		if !ok {
			return 0, true
		}
		if g.IsMaster {
			priority[h] = 0
			return 0, true
		}
		switch color[h] {
		case gray:
			return 0, false
		case black:
			return priority[h], true
		}
		color[h] = gray
		best := 0
		if g.Output.Valid() {
			p, ok := visit(g.Output)
			if !ok {
				return 0, false
			}
			if p+1 > best {
				best = p + 1
			}
		}
		for _, idx := range g.sends {
			if idx == -1 {
				continue
			}
			p, ok := visit(sm.sendPool[idx].Dest)
			if !ok {
				return 0, false
			}
			if p+1 > best {
				best = p + 1
			}
		}
		color[h] = black
		priority[h] = best
		return best, true
	}

	for _, g := range sm.groups {
		if g == nil {
			continue
		}
		if _, ok := visit(g.Handle); !ok {
			return false
		}
	}

	order := make([]*MixGroup, 0, len(sm.groups))
	for _, g := range sm.groups {
		if g == nil {
			continue
		}
		g.Priority = priority[g.Handle]
		order = append(order, g)
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].Priority > order[j].Priority })
	sm.order = order
	return true
}

// Sum performs one callback's worth of mixing (spec §4.7 steps 1-5):
// groups are visited leaves-first, items are summed by destination,
// the group's own DSP chain runs, sends fan out to their targets, and
// finally the master's accumulator is interleaved into out.
func (sm *SummingMixer) Sum(playhead int64, out []float32, items []*buffer.MixItem, messages *bridge.MessageQueue) {
	for _, g := range sm.order {
		g.accumulator.Reset()
	}

	for _, mi := range items {
		for _, g := range sm.order {
			if g.Handle.Value == mi.Destination {
				g.accumulator.Sum(mi, 1)
				break
			}
		}
	}

	for _, g := range sm.order {
		g.volumeGain.Process(g.accumulator)

		if amp, done, _ := g.fader.Value(playhead); g.fader.Active() || done {
			g.fadeGain.SetTarget(amp)
		}
		g.fadeGain.Process(g.accumulator)

		for _, idx := range g.plugins {
			if idx == -1 {
				continue
			}
			block := sm.plugPool[idx]
			if block == nil || block.Bypassed() {
				continue
			}
			block.Process(g.accumulator)
		}

		peak := g.accumulator.AbsoluteMax()
		g.peak = peak
		g.level = g.level*levelSmoothing + peak*(1-levelSmoothing)
		pushMixGroupPeak(messages, g.Handle, g.peak)
		pushMixGroupLevel(messages, g.Handle, g.level)

		for _, idx := range g.sends {
			if idx == -1 {
				continue
			}
			send := sm.sendPool[idx]
			dest, ok := sm.Group(send.Dest)
			if !ok {
				continue
			}
			dest.accumulator.Sum(g.accumulator, float32(send.Amplitude))
		}

		if !g.IsMaster && g.Output.Valid() {
			dest, ok := sm.Group(g.Output)
			if ok {
				dest.accumulator.Sum(g.accumulator, 1)
			}
		}
	}

	if sm.master != nil {
		sm.master.accumulator.ToInterleaved(out)
	}
}

func pushMixGroupPeak(messages *bridge.MessageQueue, h redfish.Handle, peak float32) {
	var buf [bridge.MessagePayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutUint32(h.Value)
	w.PutFloat32(peak)
	messages.Push(bridge.Message{Tag: bridge.MessageMixGroupPeak, Payload: buf})
}

func pushMixGroupLevel(messages *bridge.MessageQueue, h redfish.Handle, level float32) {
	var buf [bridge.MessagePayloadSize]byte
	w := bridge.NewPayloadWriter(buf[:])
	w.PutUint32(h.Value)
	w.PutFloat32(level)
	messages.Push(bridge.Message{Tag: bridge.MessageMixGroupLevel, Payload: buf})
}
