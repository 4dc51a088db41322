// Package binaural renders a mono PCM signal to binaural stereo by
// convolving it with the HRIR pair of the dataset measurement nearest to a
// virtual source position.
//
// The direct kernel is the reference: out[j+k] += in[j]*ir[k], accumulated
// in float64 and truncated to signed 16-bit with saturation. FFT-based
// kernels produce the same values within floating-point tolerance.
package binaural

import "errors"

// Errors returned by the convolution engine and renderer.
var (
	ErrEmptyInput         = errors.New("binaural: empty input")
	ErrLengthMismatch     = errors.New("binaural: channel length mismatch")
	ErrNonFinite          = errors.New("binaural: non-finite sample")
	ErrSampleRateMismatch = errors.New("binaural: input and dataset sample rates differ")
	ErrUnknownKernel      = errors.New("binaural: unknown convolution kernel")
	ErrUnknownRatePolicy  = errors.New("binaural: unknown sample-rate policy")
	ErrNilDataset         = errors.New("binaural: nil dataset")
)

// Signal is a mono 16-bit PCM signal.
type Signal struct {
	Samples    []int16
	SampleRate int
}

// Stereo is a rendered left/right pair of equal length. Clipped counts the
// samples per ear that saturated during quantization.
type Stereo struct {
	Left    []int16
	Right   []int16
	Clipped [2]int
}

// Len returns the per-channel length.
func (s Stereo) Len() int {
	return len(s.Left)
}

// Interleave returns L,R,L,R,... frames.
func (s Stereo) Interleave() []int16 {
	out := make([]int16, len(s.Left)*2)
	for i := range s.Left {
		out[i*2] = s.Left[i]
		out[i*2+1] = s.Right[i]
	}
	return out
}
