package dsp

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

func TestImpulseResponseFIR(t *testing.T) {
	c := biquad.Coefficients{B0: 0.5, B1: 0.25, B2: 0.125}
	got := ImpulseResponse(c, 5, 2)
	want := []float64{1, 0.5, 0.25, 0, 0}
	if len(got) != len(want) {
		t.Fatalf("len got=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: got=%g want=%g", i, got[i], want[i])
		}
	}
}

func TestImpulseResponseMatchesRecursion(t *testing.T) {
	c := HeadShadow(120, 0.0875, 48000, ShadowAlphaMin)
	got := ImpulseResponse(c, 32, 0.5)

	// y[n] = b0 x[n] + b1 x[n-1] - a1 y[n-1]
	prevX, prevY := 0.0, 0.0
	for i := range got {
		x := 0.0
		if i == 0 {
			x = 0.5
		}
		y := c.B0*x + c.B1*prevX - c.A1*prevY
		if math.Abs(got[i]-y) > 1e-12 {
			t.Fatalf("sample %d: got=%g want=%g", i, got[i], y)
		}
		prevX, prevY = x, y
	}
}

func TestHeadShadowGains(t *testing.T) {
	const rate = 48000
	for _, inc := range []float64{0, 90, 150, 180} {
		c := HeadShadow(inc, 0.0875, rate, ShadowAlphaMin)
		if c.B2 != 0 || c.A2 != 0 {
			t.Fatalf("incidence %g: expected first-order section, got=%+v", inc, c)
		}
		if dc := Gain(c, 0, rate); math.Abs(dc-1) > 1e-12 {
			t.Fatalf("incidence %g: DC gain=%g want 1", inc, dc)
		}
		alpha := ShadowAlpha(inc, ShadowAlphaMin)
		if hf := Gain(c, rate/2, rate); math.Abs(hf-alpha) > 1e-9 {
			t.Fatalf("incidence %g: Nyquist gain=%g want %g", inc, hf, alpha)
		}
	}
}

func TestShadowAlphaRange(t *testing.T) {
	if a := ShadowAlpha(0, ShadowAlphaMin); math.Abs(a-2) > 1e-12 {
		t.Fatalf("facing ear alpha=%g want 2", a)
	}
	if a := ShadowAlpha(ShadowThetaMin, ShadowAlphaMin); math.Abs(a-ShadowAlphaMin) > 1e-12 {
		t.Fatalf("alpha at theta_min=%g want %g", a, ShadowAlphaMin)
	}
	near := Gain(HeadShadow(0, 0.0875, 48000, ShadowAlphaMin), 8000, 48000)
	far := Gain(HeadShadow(180, 0.0875, 48000, ShadowAlphaMin), 8000, 48000)
	if near <= 1 || far >= 1 {
		t.Fatalf("expected near ear boost and far ear cut at 8 kHz: near=%g far=%g", near, far)
	}
}
