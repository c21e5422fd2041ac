package asset

import (
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tphakala/flac"

	enginerrors "github.com/z-e-chan/redfish/internal/errors"
)

// decodeWAV reads path as a WAV file and returns its samples
// interleaved frame-major, plus its channel count, following the same
// wav.NewDecoder/ReadInfo/PCMBuffer shape and int-to-float32
// bit-depth scaling the rest of this codebase's WAV reading uses.
func decodeWAV(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return nil, 0, enginerrors.Newf("%q is not a valid WAV file", path).Build()
	}

	channels := int(decoder.NumChans)
	var divisor float32
	switch decoder.BitDepth {
	case 8:
		divisor = 128.0
	case 16:
		divisor = 32768.0
	case 24:
		divisor = 8388608.0
	case 32:
		divisor = 2147483648.0
	default:
		return nil, 0, enginerrors.Newf("%q has unsupported bit depth %d", path, decoder.BitDepth).Build()
	}

	buf := &goaudio.IntBuffer{
		Data:   make([]int, 4096),
		Format: &goaudio.Format{SampleRate: int(decoder.SampleRate), NumChannels: channels},
	}

	samples := make([]float32, 0, 4096)
	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil {
			return nil, 0, err
		}
		if n == 0 {
			break
		}
		for _, s := range buf.Data[:n] {
			samples = append(samples, float32(s)/divisor)
		}
	}
	return samples, channels, nil
}

// decodeFLAC reads path as a FLAC file and returns its samples
// interleaved frame-major, plus its channel count.
func decodeFLAC(path string) ([]float32, int, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	divisor := float32(int64(1) << (stream.Info.BitsPerSample - 1))

	samples := make([]float32, 0, stream.Info.NSamples*uint64(channels))
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		frames := len(frame.Subframes[0].Samples)
		for i := 0; i < frames; i++ {
			for c := 0; c < channels; c++ {
				samples = append(samples, float32(frame.Subframes[c].Samples[i])/divisor)
			}
		}
	}
	return samples, channels, nil
}
