// Package audio bridges the raw PCM produced by the speech model to the
// playback side: sample decoding, WAV packaging, a singleton player, and
// the capture state machine feeding transcription.
package audio

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"

	"docent/internal/logging"
)

// DefaultSampleRate is the rate of PCM returned by the speech model.
const DefaultSampleRate = 24000

// DecodePCM16 interprets data as signed 16-bit little-endian mono samples
// and rescales each to [-1, 1] by dividing by 32768.
func DecodePCM16(data []byte) ([]float32, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("PCM buffer has odd length %d", len(data))
	}
	samples := make([]float32, len(data)/2)
	for i := range samples {
		s := int16(uint16(data[2*i]) | uint16(data[2*i+1])<<8)
		samples[i] = float32(s) / 32768.0
	}
	return samples, nil
}

// EncodeWAV wraps raw s16le mono PCM in a WAV container and returns the
// container bytes.
func EncodeWAV(pcm []byte, sampleRate int) ([]byte, error) {
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("PCM buffer has odd length %d", len(pcm))
	}

	ws := &writerseeker.WriterSeeker{}
	enc := wav.NewEncoder(ws, sampleRate, 16, 1, 1)

	ints := make([]int, len(pcm)/2)
	for i := range ints {
		ints[i] = int(int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8))
	}
	buf := &goaudio.IntBuffer{
		Data:           ints,
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to write WAV samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize WAV container: %w", err)
	}

	out, err := io.ReadAll(ws.Reader())
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV container: %w", err)
	}
	logging.AudioDebug("EncodeWAV: %d PCM bytes -> %d container bytes", len(pcm), len(out))
	return out, nil
}

// WriteWAV encodes pcm and writes the container to path.
func WriteWAV(path string, pcm []byte, sampleRate int) error {
	data, err := EncodeWAV(pcm, sampleRate)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logging.Audio("WriteWAV: wrote %d bytes to %s", len(data), path)
	return nil
}
