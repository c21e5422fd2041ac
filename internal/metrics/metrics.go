// Package metrics exports engine runtime counters and gauges as
// Prometheus collectors, following the constructor-plus-Record-methods
// shape the teacher's internal/observability/metrics package uses.
// AudioTimeline.Process calls SetVoicesActive and RecordCallbackProcessed
// from the audio thread once per callback (plain collector updates; the
// registry is not touched there); the facade Engine calls
// RecordCommandQueueDrop on the control thread.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// EngineMetrics holds every Prometheus collector the engine reports.
type EngineMetrics struct {
	voicesActive       prometheus.Gauge
	voicesStarted      prometheus.Counter
	voicesStopped      prometheus.Counter
	mixGroupPeak       *prometheus.GaugeVec
	mixGroupLevel      *prometheus.GaugeVec
	commandQueueDrops  prometheus.Counter
	messageQueueDrops  prometheus.Counter
	callbacksProcessed prometheus.Counter
	transitionsPlayed  prometheus.Counter
}

// NewEngineMetrics registers and returns a new EngineMetrics against
// registry. Pass prometheus.NewRegistry() in tests to avoid colliding
// with the default global registry.
func NewEngineMetrics(registry prometheus.Registerer) (*EngineMetrics, error) {
	m := &EngineMetrics{
		voicesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "redfish",
			Subsystem: "voice",
			Name:      "active",
			Help:      "Number of currently active playback voices.",
		}),
		voicesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "redfish",
			Subsystem: "voice",
			Name:      "started_total",
			Help:      "Total number of voices that began playback.",
		}),
		voicesStopped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "redfish",
			Subsystem: "voice",
			Name:      "stopped_total",
			Help:      "Total number of voices that finished or were stopped.",
		}),
		mixGroupPeak: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "redfish",
			Subsystem: "mixer",
			Name:      "group_peak_amplitude",
			Help:      "Most recent peak amplitude reported by a mix group.",
		}, []string{"mix_group"}),
		mixGroupLevel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "redfish",
			Subsystem: "mixer",
			Name:      "group_level",
			Help:      "Smoothed level reported by a mix group, for UI meters.",
		}, []string{"mix_group"}),
		commandQueueDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "redfish",
			Subsystem: "bridge",
			Name:      "command_queue_drops_total",
			Help:      "Commands silently dropped because the command queue was full.",
		}),
		messageQueueDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "redfish",
			Subsystem: "bridge",
			Name:      "message_queue_drops_total",
			Help:      "Messages silently dropped because the message queue was full.",
		}),
		callbacksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "redfish",
			Subsystem: "timeline",
			Name:      "callbacks_total",
			Help:      "Total number of audio callback blocks processed.",
		}),
		transitionsPlayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "redfish",
			Subsystem: "music",
			Name:      "transitions_total",
			Help:      "Total number of music transitions that started playing.",
		}),
	}

	collectors := []prometheus.Collector{
		m.voicesActive, m.voicesStarted, m.voicesStopped,
		m.mixGroupPeak, m.mixGroupLevel,
		m.commandQueueDrops, m.messageQueueDrops,
		m.callbacksProcessed, m.transitionsPlayed,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *EngineMetrics) SetVoicesActive(n int)       { m.voicesActive.Set(float64(n)) }
func (m *EngineMetrics) RecordVoiceStarted()          { m.voicesStarted.Inc() }
func (m *EngineMetrics) RecordVoiceStopped()           { m.voicesStopped.Inc() }
func (m *EngineMetrics) RecordCommandQueueDrop()       { m.commandQueueDrops.Inc() }
func (m *EngineMetrics) RecordMessageQueueDrop()       { m.messageQueueDrops.Inc() }
func (m *EngineMetrics) RecordCallbackProcessed()      { m.callbacksProcessed.Inc() }
func (m *EngineMetrics) RecordTransitionPlayed()       { m.transitionsPlayed.Inc() }

func (m *EngineMetrics) SetMixGroupPeak(name string, peak float32) {
	m.mixGroupPeak.WithLabelValues(name).Set(float64(peak))
}

func (m *EngineMetrics) SetMixGroupLevel(name string, level float32) {
	m.mixGroupLevel.WithLabelValues(name).Set(float64(level))
}

// NoopEngineMetrics returns a non-nil EngineMetrics backed by a private
// registry, so callers that don't care about metrics can skip the nil
// check everywhere Record* is called.
func NoopEngineMetrics() *EngineMetrics {
	m, err := NewEngineMetrics(prometheus.NewRegistry())
	if err != nil {
		panic(err)
	}
	return m
}
