package hrir

import (
	"fmt"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
)

// Resample converts both responses from rate `from` to rate `to`. Equal
// rates return p unchanged.
func (p Pair) Resample(from, to int) (Pair, error) {
	if from <= 0 || to <= 0 {
		return Pair{}, fmt.Errorf("%d -> %d Hz: %w", from, to, ErrInvalidSampleRate)
	}
	if from == to {
		return p, nil
	}
	left, err := resampleIfNeeded(p.Left, from, to)
	if err != nil {
		return Pair{}, err
	}
	right, err := resampleIfNeeded(p.Right, from, to)
	if err != nil {
		return Pair{}, err
	}
	if len(left) == 0 || len(right) == 0 {
		return Pair{}, fmt.Errorf("resampled %d -> %d Hz: %w", from, to, ErrEmptyResponse)
	}
	return Pair{Left: left, Right: right}, nil
}

func resampleIfNeeded(in []float64, fromRate int, toRate int) ([]float64, error) {
	if fromRate == toRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	return r.Process(in), nil
}
