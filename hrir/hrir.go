// Package hrir holds measured head-related impulse response datasets and
// reconstructs the delay-padded per-ear responses of a single measurement.
package hrir

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-binaural/spatial"
)

// Ear indices into per-ear arrays.
const (
	Left  = 0
	Right = 1
)

// Errors returned by dataset validation and response building.
var (
	ErrEmptyResponse     = errors.New("hrir: empty impulse response")
	ErrNegativeDelay     = errors.New("hrir: negative onset delay")
	ErrChannelMismatch   = errors.New("hrir: expected exactly two receiver channels")
	ErrShapeMismatch     = errors.New("hrir: dataset array shapes disagree")
	ErrIndexOutOfRange   = errors.New("hrir: measurement index out of range")
	ErrInvalidSampleRate = errors.New("hrir: invalid sampling rate")
)

// Measurement is one measured source position with its raw left/right
// responses and onset delays in samples.
type Measurement struct {
	Position spatial.Spherical
	Delay    [2]int
	Left     []float64
	Right    []float64
}

// Dataset is a set of measurements sharing a listener position and
// sampling rate. Measurement order is the container's native order.
type Dataset struct {
	Listener     spatial.Vec3
	SampleRate   int
	Measurements []Measurement
}

// Pair is the delay-padded impulse response for each ear.
type Pair struct {
	Left  []float64
	Right []float64
}

// Len returns the longer of the two response lengths.
func (p Pair) Len() int {
	if len(p.Right) > len(p.Left) {
		return len(p.Right)
	}
	return len(p.Left)
}

// Build prepends each ear's onset delay in zeros to its raw response.
// The returned slices never alias m.
func Build(m Measurement) (Pair, error) {
	left, err := padDelay(m.Left, m.Delay[Left])
	if err != nil {
		return Pair{}, fmt.Errorf("left ear: %w", err)
	}
	right, err := padDelay(m.Right, m.Delay[Right])
	if err != nil {
		return Pair{}, fmt.Errorf("right ear: %w", err)
	}
	return Pair{Left: left, Right: right}, nil
}

func padDelay(raw []float64, delay int) ([]float64, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyResponse
	}
	if delay < 0 {
		return nil, fmt.Errorf("%d samples: %w", delay, ErrNegativeDelay)
	}
	out := make([]float64, delay+len(raw))
	copy(out[delay:], raw)
	return out, nil
}

// Validate checks the invariants every loader must establish.
func (d *Dataset) Validate() error {
	if d == nil {
		return fmt.Errorf("nil dataset")
	}
	if d.SampleRate <= 0 {
		return fmt.Errorf("%d Hz: %w", d.SampleRate, ErrInvalidSampleRate)
	}
	if len(d.Measurements) == 0 {
		return spatial.ErrEmptyDataset
	}
	if !d.Listener.IsFinite() {
		return fmt.Errorf("listener %+v: %w", d.Listener, spatial.ErrInvalidPosition)
	}
	for i, m := range d.Measurements {
		if !m.Position.IsFinite() {
			return fmt.Errorf("measurement %d position %+v: %w", i, m.Position, spatial.ErrInvalidPosition)
		}
		if m.Delay[Left] < 0 || m.Delay[Right] < 0 {
			return fmt.Errorf("measurement %d delay %v: %w", i, m.Delay, ErrNegativeDelay)
		}
	}
	return nil
}

// Positions returns the measurement positions converted to cartesian.
func (d *Dataset) Positions() []spatial.Vec3 {
	out := make([]spatial.Vec3, len(d.Measurements))
	for i, m := range d.Measurements {
		out[i] = spatial.ToCartesian(m.Position)
	}
	return out
}

// Select returns the index of the measurement nearest to src, which is
// interpreted relative to the listener.
func (d *Dataset) Select(src spatial.Spherical) (int, error) {
	if len(d.Measurements) == 0 {
		return -1, spatial.ErrEmptyDataset
	}
	return spatial.Nearest(spatial.ToCartesian(src), d.Positions(), d.Listener)
}

// Pair builds the delay-padded responses of measurement i.
func (d *Dataset) Pair(i int) (Pair, error) {
	if i < 0 || i >= len(d.Measurements) {
		return Pair{}, fmt.Errorf("index %d of %d: %w", i, len(d.Measurements), ErrIndexOutOfRange)
	}
	p, err := Build(d.Measurements[i])
	if err != nil {
		return Pair{}, fmt.Errorf("measurement %d: %w", i, err)
	}
	return p, nil
}
