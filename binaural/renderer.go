package binaural

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-binaural/hrir"
	"github.com/cwbudde/algo-binaural/spatial"
)

// RatePolicy decides what happens when the input signal and the dataset
// were sampled at different rates.
type RatePolicy int

const (
	// RateResampleIR resamples the selected HRIR pair to the input rate.
	RateResampleIR RatePolicy = iota
	// RateStrict fails with ErrSampleRateMismatch.
	RateStrict
)

func (p RatePolicy) String() string {
	switch p {
	case RateResampleIR:
		return "resample"
	case RateStrict:
		return "strict"
	}
	return fmt.Sprintf("RatePolicy(%d)", int(p))
}

// ParseRatePolicy parses "resample" or "strict".
func ParseRatePolicy(s string) (RatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "resample":
		return RateResampleIR, nil
	case "strict":
		return RateStrict, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownRatePolicy)
}

// Renderer runs select -> build -> rate alignment -> convolve against one
// dataset.
type Renderer struct {
	dataset *hrir.Dataset
	policy  RatePolicy
	opts    []Option
}

// NewRenderer validates ds and returns a renderer using the given
// convolution options.
func NewRenderer(ds *hrir.Dataset, policy RatePolicy, opts ...Option) (*Renderer, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if policy != RateResampleIR && policy != RateStrict {
		return nil, fmt.Errorf("%v: %w", policy, ErrUnknownRatePolicy)
	}
	return &Renderer{dataset: ds, policy: policy, opts: opts}, nil
}

// Result is the outcome of one render.
type Result struct {
	Index      int
	Position   spatial.Spherical
	Pair       hrir.Pair
	Output     Stereo
	SampleRate int
	Resampled  bool
}

// Resolve selects the measurement nearest to src and returns its response
// pair aligned to sampleRate. The returned Result has no Output yet.
func (r *Renderer) Resolve(src spatial.Spherical, sampleRate int) (*Result, error) {
	if !src.IsFinite() {
		return nil, fmt.Errorf("source %+v: %w", src, spatial.ErrInvalidPosition)
	}

	idx, err := r.dataset.Select(src)
	if err != nil {
		return nil, fmt.Errorf("select measurement: %w", err)
	}
	pair, err := r.dataset.Pair(idx)
	if err != nil {
		return nil, fmt.Errorf("build responses: %w", err)
	}

	res := &Result{
		Index:      idx,
		Position:   r.dataset.Measurements[idx].Position,
		SampleRate: sampleRate,
	}
	if sampleRate != r.dataset.SampleRate {
		if r.policy == RateStrict || sampleRate <= 0 {
			return nil, fmt.Errorf("input %d Hz, dataset %d Hz: %w", sampleRate, r.dataset.SampleRate, ErrSampleRateMismatch)
		}
		if pair, err = pair.Resample(r.dataset.SampleRate, sampleRate); err != nil {
			return nil, fmt.Errorf("resample responses: %w", err)
		}
		res.Resampled = true
	}
	res.Pair = pair
	return res, nil
}

// Render spatializes sig at src. src is relative to the listener.
func (r *Renderer) Render(sig Signal, src spatial.Spherical) (*Result, error) {
	if len(sig.Samples) == 0 {
		return nil, fmt.Errorf("input signal: %w", ErrEmptyInput)
	}
	res, err := r.Resolve(src, sig.SampleRate)
	if err != nil {
		return nil, err
	}
	out, err := Convolve(sig.Samples, res.Pair, r.opts...)
	if err != nil {
		return nil, err
	}
	res.Output = out
	return res, nil
}
