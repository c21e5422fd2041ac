// Package config holds the engine's fixed-size pool limits and runtime
// tunables (spec §6 Constants), loadable from YAML via viper so a host
// game can override defaults without recompiling.
package config

import (
	"bytes"
	"time"

	"github.com/spf13/viper"
)

// PanLaw selects the constant-power pan law used by the Pan DSP block
// (spec §4.4, §9: compile-time in the source, made runtime-selectable
// here).
type PanLaw int

const (
	PanLawMinus3dB PanLaw = iota
	PanLawMinus4_5dB
	PanLawMinus6dB
)

// DistanceCurve shapes how positional DSP normalizes distance to [0,1]
// (spec §4.4 Positioning).
type DistanceCurve int

const (
	DistanceLinear DistanceCurve = iota
	DistanceEqualPower
	DistanceQuadratic
)

// Fixed pool sizes, spec §6.
const (
	MaxVoices           = 256
	MaxAudioData        = 256
	MaxMixGroups        = 64
	MaxMixGroupSends    = 5
	MaxMixGroupPlugins  = 5
	MaxCueLayers        = 4
	MaxCues             = 64
	MaxStingers         = 64
	MaxTransitions      = 64
	MaxConvolverIRs     = 3
	MaxDelayMS          = 5000
	MinDB               = -60.0
	StopFadeSamples     = 32
	GainRampSamples     = 32
	DefaultCommandQueue = 1024
	DefaultMessageQueue = 1024
)

// Allocator is the engine-wide allocation shim (spec §9 "Global
// allocator"). EngineConfig carries one, and Default and LoadYAML set
// DefaultAllocator when none is given, but no pool in this module calls
// it: every fixed pool allocates its backing storage with make.
type Allocator func(size int) []byte

// DefaultAllocator allocates with make, matching Go's ordinary GC'd heap.
func DefaultAllocator(size int) []byte { return make([]byte, size) }

// EngineConfig is the full set of engine construction parameters.
type EngineConfig struct {
	SampleRate int `yaml:"sample_rate" mapstructure:"sample_rate"`
	Channels   int `yaml:"channels" mapstructure:"channels"`
	BlockSize  int `yaml:"block_size" mapstructure:"block_size"`

	MaxVoices          int `yaml:"max_voices" mapstructure:"max_voices"`
	MaxAudioData       int `yaml:"max_audio_data" mapstructure:"max_audio_data"`
	MaxMixGroups       int `yaml:"max_mix_groups" mapstructure:"max_mix_groups"`
	MaxMixGroupSends   int `yaml:"max_mix_group_sends" mapstructure:"max_mix_group_sends"`
	MaxMixGroupPlugins int `yaml:"max_mix_group_plugins" mapstructure:"max_mix_group_plugins"`
	MaxCueLayers       int `yaml:"max_cue_layers" mapstructure:"max_cue_layers"`
	MaxCues            int `yaml:"max_cues" mapstructure:"max_cues"`
	MaxStingers        int `yaml:"max_stingers" mapstructure:"max_stingers"`
	MaxTransitions     int `yaml:"max_transitions" mapstructure:"max_transitions"`
	MaxConvolverIRs    int `yaml:"max_convolver_irs" mapstructure:"max_convolver_irs"`
	MaxDelayMS         int `yaml:"max_delay_ms" mapstructure:"max_delay_ms"`

	CommandQueueCapacity int `yaml:"command_queue_capacity" mapstructure:"command_queue_capacity"`
	MessageQueueCapacity int `yaml:"message_queue_capacity" mapstructure:"message_queue_capacity"`

	PanLaw PanLaw `yaml:"-" mapstructure:"-"`

	Allocator Allocator `yaml:"-" mapstructure:"-"`
}

// Default returns the spec-mandated defaults (48kHz stereo, the §6
// constants, 1024-entry queues).
func Default() EngineConfig {
	return EngineConfig{
		SampleRate: 48000,
		Channels:   2,
		BlockSize:  1024,

		MaxVoices:          MaxVoices,
		MaxAudioData:       MaxAudioData,
		MaxMixGroups:       MaxMixGroups,
		MaxMixGroupSends:   MaxMixGroupSends,
		MaxMixGroupPlugins: MaxMixGroupPlugins,
		MaxCueLayers:       MaxCueLayers,
		MaxCues:            MaxCues,
		MaxStingers:        MaxStingers,
		MaxTransitions:     MaxTransitions,
		MaxConvolverIRs:    MaxConvolverIRs,
		MaxDelayMS:         MaxDelayMS,

		CommandQueueCapacity: DefaultCommandQueue,
		MessageQueueCapacity: DefaultMessageQueue,

		PanLaw:    PanLawMinus3dB,
		Allocator: DefaultAllocator,
	}
}

// LoadYAML overlays YAML configuration (read through viper, so a host
// can also supply overrides via environment variables prefixed
// REDFISH_) onto the spec defaults and returns the merged result.
func LoadYAML(yamlDoc []byte) (EngineConfig, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("REDFISH")
	v.AutomaticEnv()

	if err := v.ReadConfig(bytes.NewReader(yamlDoc)); err != nil {
		return cfg, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if cfg.Allocator == nil {
		cfg.Allocator = DefaultAllocator
	}
	return cfg, nil
}

// BlockDuration returns the wall-clock duration of one callback block at
// the configured sample rate.
func (c EngineConfig) BlockDuration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.BlockSize) * time.Second / time.Duration(c.SampleRate)
}
