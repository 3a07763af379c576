// Package audio loads, slices, and writes WAV files. It wraps the go-audio
// decoder/encoder; slicing is pure sub-range extraction with no resampling or
// amplitude transformation.
package audio

import (
	"fmt"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// defaultBitDepth is used when the decoder does not report a source bit
// depth.
const defaultBitDepth = 16

// Buffer holds decoded PCM audio. Samples are interleaved across channels.
type Buffer struct {
	Samples     []int
	SampleRate  int
	NumChannels int
	BitDepth    int
}

// Frames returns the number of sample frames (samples per channel).
func (b *Buffer) Frames() int {
	if b.NumChannels == 0 {
		return 0
	}
	return len(b.Samples) / b.NumChannels
}

// Duration returns the realized duration in seconds: frames divided by the
// sample rate. This is authoritative for sliced segments, which may differ
// from the annotated span by up to one sample.
func (b *Buffer) Duration() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Slice extracts the sub-buffer between start and end seconds. Sample
// offsets are computed by truncation (floor), matching segment boundaries to
// the sample just before each time bound. Offsets are clamped to the buffer,
// so an out-of-range interval yields an empty slice rather than an error.
func (b *Buffer) Slice(start, end float64) *Buffer {
	frames := b.Frames()

	startFrame := int(start * float64(b.SampleRate))
	endFrame := int(end * float64(b.SampleRate))

	if startFrame < 0 {
		startFrame = 0
	}
	if endFrame > frames {
		endFrame = frames
	}
	if startFrame > endFrame {
		startFrame = endFrame
	}

	return &Buffer{
		Samples:     b.Samples[startFrame*b.NumChannels : endFrame*b.NumChannels],
		SampleRate:  b.SampleRate,
		NumChannels: b.NumChannels,
		BitDepth:    b.BitDepth,
	}
}

// Load reads and fully decodes one WAV file.
func Load(path string) (*Buffer, error) {
	f, err := os.Open(path) // #nosec G304 -- path comes from directory discovery
	if err != nil {
		return nil, fmt.Errorf("cannot open audio file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	bitDepth := pcm.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = defaultBitDepth
	}

	return &Buffer{
		Samples:     pcm.Data,
		SampleRate:  pcm.Format.SampleRate,
		NumChannels: pcm.Format.NumChannels,
		BitDepth:    bitDepth,
	}, nil
}

// Write encodes b as a WAV file at path, preserving the source sample rate,
// channel count, and bit depth. On encode failure the partial file is
// removed.
func Write(path string, b *Buffer) error {
	if len(b.Samples) == 0 {
		return ErrEmptyBuffer
	}

	// #nosec G302 G304 -- segment file under the user-chosen output root
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot create audio file: %w", err)
	}

	writeErr := func() error {
		enc := wav.NewEncoder(f, b.SampleRate, b.BitDepth, b.NumChannels, 1)
		if err := enc.Write(&gaudio.IntBuffer{
			Format: &gaudio.Format{
				NumChannels: b.NumChannels,
				SampleRate:  b.SampleRate,
			},
			Data:           b.Samples,
			SourceBitDepth: b.BitDepth,
		}); err != nil {
			_ = enc.Close()
			return fmt.Errorf("failed to write audio: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to finalize audio: %w", err)
		}
		return nil
	}()

	if closeErr := f.Close(); writeErr == nil && closeErr != nil {
		writeErr = fmt.Errorf("failed to close audio file: %w", closeErr)
	}

	if writeErr != nil {
		_ = os.Remove(path)
		return writeErr
	}
	return nil
}
