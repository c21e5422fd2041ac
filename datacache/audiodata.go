// Package datacache owns decoded audio assets. AudioData lives in a
// fixed-capacity slot array on the control side (spec §4.3); the audio
// thread never allocates or frees one, it only reads through a handle
// it was told about via a LoadAudioDataCommand.
package datacache

// AudioData is a decoded asset: channel-major contiguous float arrays,
// one per channel, all the same frame length.
type AudioData struct {
	Name     string
	Channels [][]float32
	Frames   int
}

// NewAudioData deinterleaves samples (frame-major, the shape a decoder
// or a host hands over) into channel-major storage.
func NewAudioData(name string, samples []float32, channelCount int) *AudioData {
	if channelCount <= 0 {
		channelCount = 1
	}
	frames := len(samples) / channelCount
	channels := make([][]float32, channelCount)
	for c := range channels {
		channels[c] = make([]float32, frames)
	}
	for f := 0; f < frames; f++ {
		base := f * channelCount
		for c := 0; c < channelCount; c++ {
			channels[c][f] = samples[base+c]
		}
	}
	return &AudioData{Name: name, Channels: channels, Frames: frames}
}

// ChannelCount returns the number of channels in the decoded asset.
func (a *AudioData) ChannelCount() int { return len(a.Channels) }
