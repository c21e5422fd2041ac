package dsp

import (
	"github.com/mjibson/go-dsp/fft"

	"github.com/z-e-chan/redfish/buffer"
	"github.com/z-e-chan/redfish/config"
)

// impulseResponse is one loaded IR, deep-copied so a later asset unload
// is safe (spec §4.4: "Loading an IR deep-copies its sample data").
type impulseResponse struct {
	samples   []float32
	amplitude float64
}

// partitionedState is the per-channel overlap-add bookkeeping for a
// uniformly partitioned FFT convolution.
type partitionedState struct {
	history   [][]complex128 // FFT'd input blocks, one per partition, ring buffer
	historyAt int
	tail      []float64 // saved overlap tail, length blockSize
}

// Convolver is a partitioned FFT convolution engine shared by both
// channels: up to config.MaxConvolverIRs independently amplitude-scaled
// impulse responses are summed into one effective IR before
// partitioning (spec §4.4 "Convolver").
type Convolver struct {
	blockSize int
	fftSize   int

	irs        []impulseResponse
	partitions []complex128 // flattened: numPartitions * fftSize, one FFT spectrum per partition

	states []partitionedState

	wetStart, wetTarget float64
	bypass              bool

	dirty bool // effective IR changed, partitions need recomputation
}

// NewConvolver constructs a Convolver for the given block size. The
// effective IR (and its partition spectra) is empty until LoadIR is
// called at least once.
func NewConvolver(blockSize int) *Convolver {
	return &Convolver{
		blockSize: blockSize,
		fftSize:   nextPow2(2 * blockSize),
		wetTarget: 1,
		wetStart:  1,
	}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// LoadIR installs or replaces the IR at slot (0..config.MaxConvolverIRs-1)
// with a deep copy of samples at the given amplitude.
func (c *Convolver) LoadIR(slot int, samples []float32, amplitude float64) {
	if slot < 0 || slot >= config.MaxConvolverIRs {
		return
	}
	for len(c.irs) <= slot {
		c.irs = append(c.irs, impulseResponse{})
	}
	cp := make([]float32, len(samples))
	copy(cp, samples)
	c.irs[slot] = impulseResponse{samples: cp, amplitude: amplitude}
	c.dirty = true
}

// ClearIR removes the IR at slot.
func (c *Convolver) ClearIR(slot int) {
	if slot < 0 || slot >= len(c.irs) {
		return
	}
	c.irs[slot] = impulseResponse{}
	c.dirty = true
}

// SetWet schedules the wet/dry mix target in [0, 1], ramped linearly
// across the next block (spec §4.4: "wet/dry crossfade runs linearly
// across the block").
func (c *Convolver) SetWet(wet float64) {
	c.wetStart = c.wetTarget
	c.wetTarget = wet
}

// SetBypass implements Block.
func (c *Convolver) SetBypass(bypass bool) { c.bypass = bypass }

// Bypassed implements Block.
func (c *Convolver) Bypassed() bool { return c.bypass }

// hasIR reports whether any IR slot currently holds samples.
func (c *Convolver) hasIR() bool {
	for _, ir := range c.irs {
		if len(ir.samples) > 0 {
			return true
		}
	}
	return false
}

// rebuildPartitions sums every loaded IR (scaled by its amplitude) into
// one effective IR of length max(IR lengths), then FFTs each
// blockSize-length partition of it, zero-padded to fftSize (spec §4.4:
// "sums the scaled IRs into a single effective IR of length
// max(IR lengths)").
func (c *Convolver) rebuildPartitions() {
	c.dirty = false

	maxLen := 0
	for _, ir := range c.irs {
		if len(ir.samples) > maxLen {
			maxLen = len(ir.samples)
		}
	}
	if maxLen == 0 {
		c.partitions = nil
		return
	}

	effective := make([]float64, maxLen)
	for _, ir := range c.irs {
		for i, s := range ir.samples {
			effective[i] += float64(s) * ir.amplitude
		}
	}

	numPartitions := (maxLen + c.blockSize - 1) / c.blockSize
	c.partitions = make([]complex128, numPartitions*c.fftSize)

	for p := 0; p < numPartitions; p++ {
		padded := make([]complex128, c.fftSize)
		start := p * c.blockSize
		end := start + c.blockSize
		if end > len(effective) {
			end = len(effective)
		}
		for i := start; i < end; i++ {
			padded[i-start] = complex(effective[i], 0)
		}
		spectrum := fft.FFT(padded)
		copy(c.partitions[p*c.fftSize:(p+1)*c.fftSize], spectrum)
	}

	for i := range c.states {
		c.states[i] = partitionedState{}
	}
}

func (c *Convolver) numPartitions() int {
	if c.fftSize == 0 {
		return 0
	}
	return len(c.partitions) / c.fftSize
}

// Process implements Block.
func (c *Convolver) Process(item *buffer.MixItem) {
	if c.bypass {
		return
	}
	if c.dirty {
		c.rebuildPartitions()
	}
	if !c.hasIR() || len(c.partitions) == 0 {
		return
	}
	if len(c.states) != len(item.Channels) {
		c.states = make([]partitionedState, len(item.Channels))
	}

	numPartitions := c.numPartitions()
	frames := 0
	if len(item.Channels) > 0 {
		frames = item.Channels[0].Len()
	}

	for ci, ch := range item.Channels {
		data := ch.Data()
		st := &c.states[ci]
		if len(st.history) != numPartitions {
			st.history = make([][]complex128, numPartitions)
			for p := range st.history {
				st.history[p] = make([]complex128, c.fftSize)
			}
			st.tail = make([]float64, c.blockSize)
			st.historyAt = 0
		}

		padded := make([]complex128, c.fftSize)
		for i := 0; i < frames && i < c.blockSize; i++ {
			padded[i] = complex(float64(data[i]), 0)
		}
		st.history[st.historyAt] = fft.FFT(padded)

		sum := make([]complex128, c.fftSize)
		for p := 0; p < numPartitions; p++ {
			histIdx := (st.historyAt - p + numPartitions) % numPartitions
			spectrum := c.partitions[p*c.fftSize : (p+1)*c.fftSize]
			hist := st.history[histIdx]
			for k := 0; k < c.fftSize; k++ {
				sum[k] += spectrum[k] * hist[k]
			}
		}
		st.historyAt = (st.historyAt + 1) % numPartitions

		convolved := fft.IFFT(sum)

		wet := make([]float64, frames)
		for i := 0; i < c.blockSize && i < frames; i++ {
			wet[i] = real(convolved[i]) + st.tail[i]
		}
		for i := c.blockSize; i < c.fftSize; i++ {
			tailIdx := i - c.blockSize
			if tailIdx < len(st.tail) {
				st.tail[tailIdx] = real(convolved[i])
			}
		}

		for i := 0; i < frames; i++ {
			wetAmt := linearRamp(c.wetStart, c.wetTarget, i, frames)
			dry := float64(data[i])
			data[i] = float32(dry*(1-wetAmt) + wet[i]*wetAmt)
		}
	}
	c.wetStart = c.wetTarget
}
