// Package pcm reads and writes integer PCM WAV files without any float
// round trip, so 16-bit samples pass through bit-exactly.
package pcm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var (
	ErrUnsupportedFormat = errors.New("pcm: only 16-bit integer PCM is supported")
	ErrNotMono           = errors.New("pcm: input is not mono")
	ErrLengthMismatch    = errors.New("pcm: left/right length mismatch")
)

// WAVE format tags.
const (
	formatPCM        = 1
	formatFloat      = 3
	formatExtensible = 0xFFFE
)

// Format describes a decoded stream.
type Format struct {
	SampleRate  int
	NumChannels int
	BitDepth    int
}

// ReadMono16 decodes a 16-bit PCM WAV file. Multi-channel input is
// rejected with ErrNotMono unless downmix is set, in which case channels
// are averaged per frame and truncated toward zero.
func ReadMono16(path string, downmix bool) ([]int16, Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Format{}, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, Format{}, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, Format{}, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, Format{}, fmt.Errorf("invalid wav buffer: %s", path)
	}

	format := Format{
		SampleRate:  buf.Format.SampleRate,
		NumChannels: buf.Format.NumChannels,
		BitDepth:    int(dec.BitDepth),
	}
	// The extensible sub-format is not exposed by the decoder; at 16 bits
	// it can only be integer PCM.
	tag := int(dec.WavAudioFormat)
	if (tag != formatPCM && tag != formatExtensible) || format.BitDepth != 16 {
		return nil, format, fmt.Errorf("%s: format %d, %d bits: %w", path, dec.WavAudioFormat, format.BitDepth, ErrUnsupportedFormat)
	}

	ch := format.NumChannels
	if ch != 1 && !downmix {
		return nil, format, fmt.Errorf("%s has %d channels: %w", path, ch, ErrNotMono)
	}
	frames := len(buf.Data) / ch
	out := make([]int16, frames)
	for i := 0; i < frames; i++ {
		sum := 0
		for c := 0; c < ch; c++ {
			sum += buf.Data[i*ch+c]
		}
		out[i] = int16(sum / ch)
	}
	return out, format, nil
}

// WriteStereo16 writes left/right as an interleaved 16-bit stereo WAV.
func WriteStereo16(path string, left []int16, right []int16, sampleRate int) error {
	if len(left) != len(right) {
		return fmt.Errorf("left=%d right=%d: %w", len(left), len(right), ErrLengthMismatch)
	}
	data := make([]int, len(left)*2)
	for i := 0; i < len(left); i++ {
		data[i*2] = int(left[i])
		data[i*2+1] = int(right[i])
	}
	return write16(path, data, 2, sampleRate, formatPCM)
}

// WriteMono16 writes samples as a 16-bit mono WAV.
func WriteMono16(path string, samples []int16, sampleRate int) error {
	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(v)
	}
	return write16(path, data, 1, sampleRate, formatPCM)
}

func write16(path string, data []int, numChannels int, sampleRate int, formatTag int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, numChannels, formatTag)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: numChannels,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
