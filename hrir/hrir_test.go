package hrir

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-binaural/spatial"
)

func TestBuildPrependsDelay(t *testing.T) {
	m := Measurement{
		Delay: [2]int{3, 0},
		Left:  []float64{1.0, 0.5},
		Right: []float64{0.25},
	}
	p, err := Build(m)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	wantL := []float64{0, 0, 0, 1.0, 0.5}
	if len(p.Left) != len(wantL) {
		t.Fatalf("left length: got=%d want=%d", len(p.Left), len(wantL))
	}
	for i := range wantL {
		if p.Left[i] != wantL[i] {
			t.Fatalf("left[%d]: got=%g want=%g", i, p.Left[i], wantL[i])
		}
	}
	if len(p.Right) != 1 || p.Right[0] != 0.25 {
		t.Fatalf("right: got=%v want=[0.25]", p.Right)
	}
	if p.Len() != 5 {
		t.Fatalf("pair length: got=%d want=5", p.Len())
	}
}

func TestBuildDoesNotAliasMeasurement(t *testing.T) {
	m := Measurement{Left: []float64{1}, Right: []float64{2}}
	p, err := Build(m)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p.Left[0] = 99
	if m.Left[0] != 1 {
		t.Fatal("Build result aliases the measurement")
	}
}

func TestBuildErrors(t *testing.T) {
	if _, err := Build(Measurement{Left: nil, Right: []float64{1}}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if _, err := Build(Measurement{Left: []float64{1}, Right: []float64{}}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse for right ear, got %v", err)
	}
	if _, err := Build(Measurement{Delay: [2]int{0, -1}, Left: []float64{1}, Right: []float64{1}}); !errors.Is(err, ErrNegativeDelay) {
		t.Fatalf("expected ErrNegativeDelay, got %v", err)
	}
}

func testDataset() *Dataset {
	return &Dataset{
		SampleRate: 48000,
		Measurements: []Measurement{
			{Position: spatial.Spherical{Azimuth: 0, Radius: 1}, Left: []float64{1}, Right: []float64{1}},
			{Position: spatial.Spherical{Azimuth: 90, Radius: 1}, Delay: [2]int{0, 2}, Left: []float64{1}, Right: []float64{0.5}},
			{Position: spatial.Spherical{Azimuth: -90, Radius: 1}, Delay: [2]int{2, 0}, Left: []float64{0.5}, Right: []float64{1}},
		},
	}
}

func TestDatasetSelectAndPair(t *testing.T) {
	d := testDataset()
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	idx, err := d.Select(spatial.Spherical{Azimuth: -75, Elevation: 10, Radius: 1.5})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if idx != 2 {
		t.Fatalf("unexpected selection: got=%d want=2", idx)
	}
	p, err := d.Pair(idx)
	if err != nil {
		t.Fatalf("Pair: %v", err)
	}
	if len(p.Left) != 3 || len(p.Right) != 1 {
		t.Fatalf("unexpected pair lengths: L=%d R=%d", len(p.Left), len(p.Right))
	}
	if _, err := d.Pair(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestDatasetValidateErrors(t *testing.T) {
	d := testDataset()
	d.SampleRate = 0
	if err := d.Validate(); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("expected ErrInvalidSampleRate, got %v", err)
	}

	empty := &Dataset{SampleRate: 48000}
	if err := empty.Validate(); !errors.Is(err, spatial.ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
	if _, err := empty.Select(spatial.Spherical{}); !errors.Is(err, spatial.ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset from Select, got %v", err)
	}

	d = testDataset()
	d.Measurements[1].Delay[0] = -4
	if err := d.Validate(); !errors.Is(err, ErrNegativeDelay) {
		t.Fatalf("expected ErrNegativeDelay, got %v", err)
	}
}

func TestPairResampleKeepsEqualRate(t *testing.T) {
	p := Pair{Left: []float64{1, 2}, Right: []float64{3}}
	got, err := p.Resample(44100, 44100)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if &got.Left[0] != &p.Left[0] {
		t.Fatal("equal-rate resample should return the pair unchanged")
	}
	if _, err := p.Resample(0, 44100); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("expected ErrInvalidSampleRate, got %v", err)
	}
}

func TestPairResampleChangesLength(t *testing.T) {
	ir := make([]float64, 480)
	ir[10] = 1
	p := Pair{Left: ir, Right: ir}
	got, err := p.Resample(96000, 48000)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if len(got.Left) == 0 || len(got.Left) >= len(ir) {
		t.Fatalf("unexpected downsampled length: %d", len(got.Left))
	}
}
