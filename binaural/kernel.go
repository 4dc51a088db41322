package binaural

import (
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Kernel selects the convolution algorithm.
type Kernel int

const (
	// KernelDirect is the O(N*M) time-domain reference.
	KernelDirect Kernel = iota
	// KernelOverlapAdd uses block FFT overlap-add.
	KernelOverlapAdd
	// KernelFFT uses one zero-padded FFT of the whole signal.
	KernelFFT
	// KernelAuto uses direct convolution for short responses and
	// overlap-add otherwise.
	KernelAuto
)

// autoDirectMaxLen is the longest response KernelAuto convolves directly.
const autoDirectMaxLen = 64

var kernelNames = map[Kernel]string{
	KernelDirect:     "direct",
	KernelOverlapAdd: "overlap-add",
	KernelFFT:        "fft",
	KernelAuto:       "auto",
}

func (k Kernel) String() string {
	if s, ok := kernelNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kernel(%d)", int(k))
}

// ParseKernel parses a kernel name as accepted by the CLI and config files.
func ParseKernel(s string) (Kernel, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "", "direct":
		return KernelDirect, nil
	case "overlap-add", "ola":
		return KernelOverlapAdd, nil
	case "fft":
		return KernelFFT, nil
	case "auto":
		return KernelAuto, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownKernel)
}

// convolveChannel returns the full linear convolution of in and ir, of
// length len(in)+len(ir)-1.
func convolveChannel(in, ir []float64, kernel Kernel, workers int) ([]float64, error) {
	if len(in) == 0 || len(ir) == 0 {
		return nil, ErrEmptyInput
	}
	if kernel == KernelAuto {
		kernel = KernelOverlapAdd
		if len(ir) <= autoDirectMaxLen {
			kernel = KernelDirect
		}
	}

	switch kernel {
	case KernelDirect:
		out := make([]float64, len(in)+len(ir)-1)
		if workers > 1 {
			directGather(out, in, ir, workers)
		} else {
			directScatter(out, in, ir)
		}
		return out, nil
	case KernelOverlapAdd:
		out, err := dspconv.OverlapAddConvolve(in, ir)
		if err != nil {
			return nil, err
		}
		snapIntegers(out)
		return out, nil
	case KernelFFT:
		out, err := fftConvolve(in, ir)
		if err != nil {
			return nil, err
		}
		snapIntegers(out)
		return out, nil
	}
	return nil, fmt.Errorf("%v: %w", kernel, ErrUnknownKernel)
}

// snapTolerance is the distance from an integer below which FFT kernel
// output is treated as that integer. Transform round-off stays well below
// it for 16-bit input.
const snapTolerance = 1e-9

// snapIntegers rounds samples lying within snapTolerance of an integer onto
// it, so that truncation matches the direct kernel on exact results.
func snapIntegers(x []float64) {
	for i, v := range x {
		r := math.Round(v)
		if math.Abs(v-r) <= snapTolerance {
			x[i] = r
		}
	}
}

// directScatter accumulates in[j]*ir into dst[j:], j ascending. dst must be
// zeroed and have length len(in)+len(ir)-1.
func directScatter(dst, in, ir []float64) {
	m := len(ir)
	temp := make([]float64, m)
	for j, x := range in {
		vecmath.ScaleBlock(temp, ir, x)
		vecmath.AddBlockInPlace(dst[j:j+m], temp)
	}
}

// directGather splits the output index range into contiguous chunks, one
// per worker. Each output sample sums in[j]*ir[n-j] with j ascending, the
// same order directScatter adds into it, so both produce identical values.
func directGather(dst, in, ir []float64, workers int) {
	if workers > runtime.NumCPU()*4 {
		workers = runtime.NumCPU() * 4
	}
	n := len(dst)
	chunk := (n + workers - 1) / workers
	if chunk < 1 {
		chunk = 1
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			gatherRange(dst, in, ir, start, end)
		}(start, end)
	}
	wg.Wait()
}

func gatherRange(dst, in, ir []float64, start, end int) {
	m := len(ir)
	for i := start; i < end; i++ {
		lo := i - m + 1
		if lo < 0 {
			lo = 0
		}
		hi := i
		if hi > len(in)-1 {
			hi = len(in) - 1
		}
		var acc float64
		for j := lo; j <= hi; j++ {
			acc += in[j] * ir[i-j]
		}
		dst[i] = acc
	}
}

func fftConvolve(in, ir []float64) ([]float64, error) {
	n := len(in) + len(ir) - 1
	fftSize := nextPowerOf2(n)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("binaural: failed to create FFT plan: %w", err)
	}

	inPadded := make([]complex128, fftSize)
	for i, v := range in {
		inPadded[i] = complex(v, 0)
	}
	irPadded := make([]complex128, fftSize)
	for i, v := range ir {
		irPadded[i] = complex(v, 0)
	}

	inFreq := make([]complex128, fftSize)
	if err := plan.Forward(inFreq, inPadded); err != nil {
		return nil, fmt.Errorf("binaural: forward FFT failed: %w", err)
	}
	irFreq := make([]complex128, fftSize)
	if err := plan.Forward(irFreq, irPadded); err != nil {
		return nil, fmt.Errorf("binaural: forward FFT failed: %w", err)
	}
	for i := range inFreq {
		inFreq[i] *= irFreq[i]
	}

	resultTime := make([]complex128, fftSize)
	if err := plan.Inverse(resultTime, inFreq); err != nil {
		return nil, fmt.Errorf("binaural: inverse FFT failed: %w", err)
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = real(resultTime[i])
	}
	return out, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
