package binaural

import (
	"fmt"
	"math"
)

// Quantize16 truncates each sample toward zero and saturates it to the
// signed 16-bit range. It returns the number of saturated samples and fails
// on NaN or infinite input.
func Quantize16(in []float64) ([]int16, int, error) {
	out := make([]int16, len(in))
	clipped := 0
	for i, v := range in {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, 0, fmt.Errorf("sample %d: %w", i, ErrNonFinite)
		}
		t := math.Trunc(v)
		switch {
		case t > math.MaxInt16:
			t = math.MaxInt16
			clipped++
		case t < math.MinInt16:
			t = math.MinInt16
			clipped++
		}
		out[i] = int16(t)
	}
	return out, clipped, nil
}
