package dsp

import "github.com/z-e-chan/redfish/buffer"

// delayLine is a per-channel circular buffer sized to the maximum delay
// in samples.
type delayLine struct {
	buf      []float32
	writePos int
}

// Delay is a feedback circular-buffer delay effect (spec §4.4 "Delay").
type Delay struct {
	sampleRate float64
	maxSamples int
	delayMS    float64
	feedback   float64
	lines      []delayLine
	bypass     bool
}

// NewDelay constructs a Delay sized for maxDelayMS of history at
// sampleRate, across channels channels.
func NewDelay(sampleRate float64, maxDelayMS float64, channels int) *Delay {
	maxSamples := int(sampleRate * maxDelayMS / 1000)
	if maxSamples < 1 {
		maxSamples = 1
	}
	d := &Delay{
		sampleRate: sampleRate,
		maxSamples: maxSamples,
		delayMS:    maxDelayMS,
		lines:      make([]delayLine, channels),
	}
	for c := range d.lines {
		d.lines[c] = delayLine{buf: make([]float32, maxSamples)}
	}
	return d
}

// SetDelayMS sets the read-head offset behind the write head, clamped
// to the buffer's maximum size.
func (d *Delay) SetDelayMS(ms float64) {
	if ms < 0 {
		ms = 0
	}
	d.delayMS = ms
}

// SetFeedback sets the feedback coefficient, clamped to [0, 1] (spec
// §4.4: "Feedback clamped to [0,1]").
func (d *Delay) SetFeedback(fb float64) {
	if fb < 0 {
		fb = 0
	}
	if fb > 1 {
		fb = 1
	}
	d.feedback = fb
}

// SetBypass implements Block.
func (d *Delay) SetBypass(bypass bool) { d.bypass = bypass }

// Bypassed implements Block.
func (d *Delay) Bypassed() bool { return d.bypass }

func (d *Delay) delaySamples() int {
	n := int(d.sampleRate * d.delayMS / 1000)
	if n < 1 {
		n = 1
	}
	if n > d.maxSamples {
		n = d.maxSamples
	}
	return n
}

// Process implements Block. Delay must keep running even on silent
// input so any feedback tail still drains (spec §4.4 common contract).
func (d *Delay) Process(item *buffer.MixItem) {
	if d.bypass {
		return
	}
	if len(d.lines) != len(item.Channels) {
		lines := make([]delayLine, len(item.Channels))
		for c := range lines {
			lines[c] = delayLine{buf: make([]float32, d.maxSamples)}
		}
		d.lines = lines
	}

	delaySamples := d.delaySamples()
	feedback := float32(d.feedback)

	for c, ch := range item.Channels {
		data := ch.Data()
		line := &d.lines[c]
		n := len(line.buf)

		for i := range data {
			readPos := (line.writePos - delaySamples + n) % n
			tapped := line.buf[readPos]

			line.buf[line.writePos] = data[i] + tapped*feedback
			out := tapped

			line.writePos = (line.writePos + 1) % n
			data[i] = out
		}
	}
}
