package mixer

import (
	"github.com/z-e-chan/redfish/config"
	"github.com/z-e-chan/redfish/dsp"
)

// PluginType selects which concrete dsp.Block a CommandCreatePlugin
// installs into a mix group's plug-in chain (spec §6 "create/destroy
// plug-in by type"). The DSP source uses a virtual base with a process
// hook (spec §9 "Inheritance of DSP blocks"); here that's a closed sum
// type dispatched once at construction time rather than through a vtable
// on every Process call.
type PluginType int

const (
	PluginGain PluginType = iota
	PluginPan
	PluginBiquadLowPass
	PluginBiquadHighPass
	PluginButterworthLowPass
	PluginButterworthHighPass
	PluginDelay
	PluginCompressor
	PluginLimiter
	PluginConvolver
)

// NewPlugin constructs the dsp.Block for t at sensible defaults, sized
// for cfg's sample rate and channel count. Callers adjust the returned
// block's parameters afterward (SetTarget, LoadIR, threshold fields,
// etc.) via its own typed setters.
func NewPlugin(t PluginType, cfg config.EngineConfig) dsp.Block {
	sampleRate := float64(cfg.SampleRate)
	nyquist := sampleRate / 2

	switch t {
	case PluginGain:
		return dsp.NewGain()
	case PluginPan:
		return dsp.NewPan(cfg.PanLaw)
	case PluginBiquadLowPass:
		return dsp.NewBiquad(dsp.BiquadLowPass, sampleRate, cfg.Channels, nyquist, 0.707)
	case PluginBiquadHighPass:
		return dsp.NewBiquad(dsp.BiquadHighPass, sampleRate, cfg.Channels, 0, 0.707)
	case PluginButterworthLowPass:
		return dsp.NewButterworth(dsp.ButterworthLowPass, 2, sampleRate, cfg.Channels, nyquist)
	case PluginButterworthHighPass:
		return dsp.NewButterworth(dsp.ButterworthHighPass, 2, sampleRate, cfg.Channels, 0)
	case PluginDelay:
		return dsp.NewDelay(sampleRate, float64(cfg.MaxDelayMS), cfg.Channels)
	case PluginCompressor:
		return dsp.NewCompressor(sampleRate)
	case PluginLimiter:
		return dsp.NewLimiter(0)
	case PluginConvolver:
		return dsp.NewConvolver(cfg.BlockSize)
	default:
		return nil
	}
}
