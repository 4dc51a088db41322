package binaural

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-binaural/hrir"
)

type options struct {
	kernel  Kernel
	workers int
}

// Option configures Convolve and Renderer.
type Option func(*options)

// WithKernel selects the convolution algorithm. The default is KernelDirect.
func WithKernel(k Kernel) Option {
	return func(o *options) {
		o.kernel = k
	}
}

// WithWorkers sets how many goroutines split the output range of each ear
// in the direct kernel. Values below 2 keep each ear on a single goroutine.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

func defaultOptions() options {
	return options{kernel: KernelDirect, workers: 1}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Convolve renders input through both ears of pair. Both output channels
// share the length len(input)+pair.Len()-1; the shorter ear's tail is zero.
// The ears are convolved concurrently into private buffers.
func Convolve(input []int16, pair hrir.Pair, opts ...Option) (Stereo, error) {
	o := applyOptions(opts)
	if len(input) == 0 {
		return Stereo{}, fmt.Errorf("input signal: %w", ErrEmptyInput)
	}
	if len(pair.Left) == 0 || len(pair.Right) == 0 {
		return Stereo{}, fmt.Errorf("impulse response: %w", ErrEmptyInput)
	}
	if _, ok := kernelNames[o.kernel]; !ok {
		return Stereo{}, fmt.Errorf("%v: %w", o.kernel, ErrUnknownKernel)
	}

	in := make([]float64, len(input))
	for i, v := range input {
		in[i] = float64(v)
	}
	outLen := len(input) + pair.Len() - 1

	irs := [2][]float64{pair.Left, pair.Right}
	var acc [2][]float64
	var errs [2]error
	var wg sync.WaitGroup
	for ear := range irs {
		wg.Add(1)
		go func(ear int) {
			defer wg.Done()
			full, err := convolveChannel(in, irs[ear], o.kernel, o.workers)
			if err != nil {
				errs[ear] = err
				return
			}
			buf := make([]float64, outLen)
			copy(buf, full)
			acc[ear] = buf
		}(ear)
	}
	wg.Wait()

	for ear, err := range errs {
		if err != nil {
			return Stereo{}, fmt.Errorf("%s ear: %w", earName(ear), err)
		}
	}
	if len(acc[hrir.Left]) != len(acc[hrir.Right]) {
		return Stereo{}, fmt.Errorf("left=%d right=%d: %w", len(acc[hrir.Left]), len(acc[hrir.Right]), ErrLengthMismatch)
	}

	var out Stereo
	var err error
	if out.Left, out.Clipped[hrir.Left], err = Quantize16(acc[hrir.Left]); err != nil {
		return Stereo{}, fmt.Errorf("left ear: %w", err)
	}
	if out.Right, out.Clipped[hrir.Right], err = Quantize16(acc[hrir.Right]); err != nil {
		return Stereo{}, fmt.Errorf("right ear: %w", err)
	}
	return out, nil
}

// ConvolveFloat returns the unquantized full convolution of in and ir with
// the given options. It is the per-ear building block of Convolve.
func ConvolveFloat(in, ir []float64, opts ...Option) ([]float64, error) {
	o := applyOptions(opts)
	return convolveChannel(in, ir, o.kernel, o.workers)
}

func earName(ear int) string {
	if ear == hrir.Left {
		return "left"
	}
	return "right"
}
