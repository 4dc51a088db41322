// Package dsp holds the head shadow filter design used to synthesize head
// responses. Filtering runs on algo-dsp biquad sections.
package dsp

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-vecmath"
)

// Head shadow defaults of the spherical head model.
const (
	ShadowAlphaMin = 0.1
	ShadowThetaMin = 150.0 // degrees
)

// ShadowAlpha returns the high-frequency gain of the head shadow filter for
// an ear at incidence degrees from the source direction (0 = facing).
func ShadowAlpha(incidence float64, alphaMin float64) float64 {
	return (1 + alphaMin/2) + (1-alphaMin/2)*math.Cos(incidence/ShadowThetaMin*math.Pi)
}

// HeadShadow returns the one-pole one-zero head shadow filter of a rigid
// sphere of radius headRadius metres, discretized with the bilinear
// transform. DC gain is 1 and the gain at high frequencies tends to
// ShadowAlpha(incidence, alphaMin).
func HeadShadow(incidence float64, headRadius float64, sampleRate int, alphaMin float64) biquad.Coefficients {
	const c = 343.0
	w0 := c / headRadius
	k := 2.0 * float64(sampleRate)
	alpha := ShadowAlpha(incidence, alphaMin)

	a0 := 2*w0 + k
	return biquad.Coefficients{
		B0: (2*w0 + alpha*k) / a0,
		B1: (2*w0 - alpha*k) / a0,
		A1: (2*w0 - k) / a0,
	}
}

// ImpulseResponse returns the first n samples of the response of c to an
// impulse of height gain.
func ImpulseResponse(c biquad.Coefficients, n int, gain float64) []float64 {
	out := biquad.NewSection(c).ImpulseResponse(n)
	vecmath.ScaleBlockInPlace(out, gain)
	return out
}

// Gain returns the magnitude response of c at freq Hz.
func Gain(c biquad.Coefficients, freq float64, sampleRate float64) float64 {
	return math.Sqrt(c.MagnitudeSquared(freq, sampleRate))
}
