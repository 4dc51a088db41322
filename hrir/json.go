package hrir

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-binaural/spatial"
)

// File is the JSON container schema. Field names follow the SOFA
// SimpleFreeFieldHRIR variables so converted datasets keep their layout:
// ListenerPosition is [I][3], SourcePosition [M][3] as (azimuth, elevation,
// radius), Data.Delay [1][2] or [M][2], Data.IR [M][2][N].
type File struct {
	Title            string        `json:"Title,omitempty"`
	ListenerPosition [][]float64   `json:"ListenerPosition"`
	SourcePosition   [][]float64   `json:"SourcePosition"`
	SamplingRate     []float64     `json:"Data.SamplingRate"`
	Delay            [][]int       `json:"Data.Delay"`
	IR               [][][]float64 `json:"Data.IR"`
}

// LoadJSON reads a dataset container from path.
func LoadJSON(path string) (*Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d, err := FromFile(&f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// FromFile converts a parsed container into a validated dataset.
func FromFile(f *File) (*Dataset, error) {
	if f == nil {
		return nil, fmt.Errorf("nil dataset file")
	}
	if len(f.ListenerPosition) == 0 || len(f.ListenerPosition[0]) != 3 {
		return nil, fmt.Errorf("ListenerPosition must be [I][3]: %w", ErrShapeMismatch)
	}
	if len(f.SamplingRate) == 0 {
		return nil, fmt.Errorf("missing Data.SamplingRate: %w", ErrInvalidSampleRate)
	}
	rate := f.SamplingRate[0]
	if rate <= 0 || rate != float64(int(rate)) {
		return nil, fmt.Errorf("Data.SamplingRate %g: %w", rate, ErrInvalidSampleRate)
	}

	m := len(f.SourcePosition)
	if len(f.IR) != m {
		return nil, fmt.Errorf("SourcePosition has %d rows, Data.IR has %d: %w", m, len(f.IR), ErrShapeMismatch)
	}
	if len(f.Delay) != 1 && len(f.Delay) != m {
		return nil, fmt.Errorf("Data.Delay must have 1 or %d rows, got %d: %w", m, len(f.Delay), ErrShapeMismatch)
	}
	for i, row := range f.Delay {
		if len(row) != 2 {
			return nil, fmt.Errorf("Data.Delay row %d has %d receivers: %w", i, len(row), ErrChannelMismatch)
		}
	}

	lp := f.ListenerPosition[0]
	d := &Dataset{
		Listener:     spatial.Vec3{X: lp[0], Y: lp[1], Z: lp[2]},
		SampleRate:   int(rate),
		Measurements: make([]Measurement, m),
	}
	for i := 0; i < m; i++ {
		src := f.SourcePosition[i]
		if len(src) != 3 {
			return nil, fmt.Errorf("SourcePosition row %d has %d values: %w", i, len(src), ErrShapeMismatch)
		}
		if len(f.IR[i]) != 2 {
			return nil, fmt.Errorf("Data.IR row %d has %d receivers: %w", i, len(f.IR[i]), ErrChannelMismatch)
		}
		delay := f.Delay[0]
		if len(f.Delay) == m {
			delay = f.Delay[i]
		}
		d.Measurements[i] = Measurement{
			Position: spatial.Spherical{Azimuth: src[0], Elevation: src[1], Radius: src[2]},
			Delay:    [2]int{delay[Left], delay[Right]},
			Left:     append([]float64(nil), f.IR[i][Left]...),
			Right:    append([]float64(nil), f.IR[i][Right]...),
		}
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// ToFile converts d into the container schema. A single delay row is
// written when every measurement shares the same delays.
func ToFile(d *Dataset) *File {
	f := &File{
		ListenerPosition: [][]float64{{d.Listener.X, d.Listener.Y, d.Listener.Z}},
		SourcePosition:   make([][]float64, len(d.Measurements)),
		SamplingRate:     []float64{float64(d.SampleRate)},
		IR:               make([][][]float64, len(d.Measurements)),
	}
	shared := true
	for i, m := range d.Measurements {
		f.SourcePosition[i] = []float64{m.Position.Azimuth, m.Position.Elevation, m.Position.Radius}
		f.IR[i] = [][]float64{m.Left, m.Right}
		if m.Delay != d.Measurements[0].Delay {
			shared = false
		}
	}
	if shared && len(d.Measurements) > 0 {
		dl := d.Measurements[0].Delay
		f.Delay = [][]int{{dl[Left], dl[Right]}}
	} else {
		f.Delay = make([][]int, len(d.Measurements))
		for i, m := range d.Measurements {
			f.Delay[i] = []int{m.Delay[Left], m.Delay[Right]}
		}
	}
	return f
}

// WriteJSON writes d to path, creating parent directories.
func WriteJSON(path string, d *Dataset) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return WriteFileJSON(path, ToFile(d))
}

// WriteFileJSON writes an already converted container, for callers that
// set metadata such as Title.
func WriteFileJSON(path string, f *File) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
