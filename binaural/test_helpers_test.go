package binaural

import (
	"math"
)

// directConvolve is a plain scalar reference independent of the kernels.
func directConvolve(a []float64, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i := range a {
		for j := range b {
			out[i+j] += a[i] * b[j]
		}
	}
	return out
}

func maxAbsDiff(a []float64, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	d := 0.0
	for i := 0; i < n; i++ {
		if v := math.Abs(a[i] - b[i]); v > d {
			d = v
		}
	}
	return d
}

func sineInt16(n int, amp float64, step float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(amp * math.Sin(float64(i)*step))
	}
	return out
}

func toFloat(in []int16) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func decayingIR(n int, seed float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Exp(-float64(i)/float64(n)*4) * math.Cos(float64(i)*seed)
	}
	return out
}
