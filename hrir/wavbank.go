package hrir

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-binaural/spatial"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// Manifest describes a dataset stored as one stereo IR WAV per measurement.
type Manifest struct {
	SampleRate   int             `json:"sample_rate"`
	Listener     []float64       `json:"listener"`
	Delay        []int           `json:"delay"`
	Measurements []ManifestEntry `json:"measurements"`
}

// ManifestEntry is one measurement of a WAV bank. Delay overrides the
// manifest-wide delay when present.
type ManifestEntry struct {
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
	Radius    float64 `json:"radius"`
	WAV       string  `json:"wav"`
	Delay     []int   `json:"delay,omitempty"`
}

// LoadWAVBank reads a manifest and the IR WAV files it references.
// Relative WAV paths are resolved against the manifest directory. Files
// recorded at another rate are resampled to the manifest rate; when the
// manifest has no rate the first file's rate is used.
func LoadWAVBank(path string) (*Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var mf Manifest
	if err := json.Unmarshal(b, &mf); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	d := &Dataset{SampleRate: mf.SampleRate}
	switch len(mf.Listener) {
	case 0:
	case 3:
		d.Listener = spatial.Vec3{X: mf.Listener[0], Y: mf.Listener[1], Z: mf.Listener[2]}
	default:
		return nil, fmt.Errorf("%s: listener must have 3 values: %w", path, ErrShapeMismatch)
	}
	defaultDelay, err := delayPair(mf.Delay)
	if err != nil {
		return nil, fmt.Errorf("%s: delay: %w", path, err)
	}

	base := filepath.Dir(path)
	for i, e := range mf.Measurements {
		wavPath := strings.TrimSpace(e.WAV)
		if wavPath == "" {
			return nil, fmt.Errorf("%s: measurement %d has no wav path", path, i)
		}
		if !filepath.IsAbs(wavPath) {
			wavPath = filepath.Clean(filepath.Join(base, wavPath))
		}
		left, right, rate, err := ReadPairWAV(wavPath)
		if err != nil {
			return nil, fmt.Errorf("measurement %d: %w", i, err)
		}
		if d.SampleRate == 0 {
			d.SampleRate = rate
		}
		p, err := Pair{Left: left, Right: right}.Resample(rate, d.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("measurement %d: %w", i, err)
		}

		delay := defaultDelay
		if e.Delay != nil {
			if delay, err = delayPair(e.Delay); err != nil {
				return nil, fmt.Errorf("measurement %d delay: %w", i, err)
			}
		}
		d.Measurements = append(d.Measurements, Measurement{
			Position: spatial.Spherical{Azimuth: e.Azimuth, Elevation: e.Elevation, Radius: e.Radius},
			Delay:    delay,
			Left:     p.Left,
			Right:    p.Right,
		})
	}

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func delayPair(v []int) ([2]int, error) {
	switch len(v) {
	case 0:
		return [2]int{}, nil
	case 2:
		if v[0] < 0 || v[1] < 0 {
			return [2]int{}, ErrNegativeDelay
		}
		return [2]int{v[0], v[1]}, nil
	default:
		return [2]int{}, ErrChannelMismatch
	}
}

// ReadPairWAV loads a mono or stereo IR WAV. Mono files are duplicated to
// both ears; files with more than two channels are rejected.
func ReadPairWAV(path string) ([]float64, []float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, nil, 0, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}

	numCh := buf.Format.NumChannels
	if numCh > 2 {
		return nil, nil, 0, fmt.Errorf("%s has %d channels: %w", path, numCh, ErrChannelMismatch)
	}
	rate := buf.Format.SampleRate
	if rate <= 0 {
		return nil, nil, 0, fmt.Errorf("%s: %d Hz: %w", path, rate, ErrInvalidSampleRate)
	}
	frames := len(buf.Data) / numCh
	if frames == 0 {
		return nil, nil, 0, fmt.Errorf("%s: %w", path, ErrEmptyResponse)
	}

	left := make([]float64, frames)
	right := make([]float64, frames)
	for i := range frames {
		if numCh == 1 {
			left[i] = float64(buf.Data[i])
			right[i] = left[i]
			continue
		}
		left[i] = float64(buf.Data[i*2])
		right[i] = float64(buf.Data[i*2+1])
	}
	return left, right, rate, nil
}

// WritePairWAV writes p as a 16-bit stereo WAV for inspection. The shorter
// ear is zero-padded to the longer one.
func WritePairWAV(path string, p Pair, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%d Hz: %w", sampleRate, ErrInvalidSampleRate)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	n := p.Len()
	data := make([]float32, n*2)
	for i := 0; i < n; i++ {
		if i < len(p.Left) {
			data[i*2] = float32(p.Left[i])
		}
		if i < len(p.Right) {
			data[i*2+1] = float32(p.Right[i])
		}
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 2, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: 2,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
