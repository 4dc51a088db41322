package spatial

import (
	"math"
	"testing"
)

func TestToCartesianAxes(t *testing.T) {
	cases := []struct {
		name string
		in   Spherical
		want Vec3
	}{
		{"front", Spherical{Azimuth: 0, Elevation: 0, Radius: 1}, Vec3{0, 1, 0}},
		{"left", Spherical{Azimuth: 90, Elevation: 0, Radius: 1}, Vec3{-1, 0, 0}},
		{"right", Spherical{Azimuth: -90, Elevation: 0, Radius: 2}, Vec3{2, 0, 0}},
		{"back", Spherical{Azimuth: 180, Elevation: 0, Radius: 1}, Vec3{0, -1, 0}},
		{"above", Spherical{Azimuth: 37, Elevation: 90, Radius: 1.5}, Vec3{0, 0, 1.5}},
		{"below", Spherical{Azimuth: 0, Elevation: -90, Radius: 1}, Vec3{0, 0, -1}},
	}
	for _, tc := range cases {
		got := ToCartesian(tc.in)
		if got.Dist(tc.want) > 1e-12 {
			t.Fatalf("%s: got=%+v want=%+v", tc.name, got, tc.want)
		}
	}
}

func TestToCartesianPreservesRadius(t *testing.T) {
	for az := -180.0; az <= 180; az += 15 {
		for el := -90.0; el <= 90; el += 10 {
			v := ToCartesian(Spherical{Azimuth: az, Elevation: el, Radius: 1.5})
			if r := v.Dist(Vec3{}); math.Abs(r-1.5) > 1e-12 {
				t.Fatalf("radius not preserved at az=%g el=%g: %g", az, el, r)
			}
		}
	}
}

func TestToCartesianDeterministic(t *testing.T) {
	p := Spherical{Azimuth: -90, Elevation: 0, Radius: 1.5}
	a := ToCartesian(p)
	for i := 0; i < 100; i++ {
		b := ToCartesian(p)
		if math.Float64bits(a.X) != math.Float64bits(b.X) ||
			math.Float64bits(a.Y) != math.Float64bits(b.Y) ||
			math.Float64bits(a.Z) != math.Float64bits(b.Z) {
			t.Fatalf("non-deterministic conversion: %+v vs %+v", a, b)
		}
	}
}

func TestIsFinite(t *testing.T) {
	if !(Vec3{1, 2, 3}).IsFinite() {
		t.Fatal("expected finite vector")
	}
	if (Vec3{1, math.NaN(), 3}).IsFinite() {
		t.Fatal("NaN vector reported finite")
	}
	if (Spherical{Azimuth: math.Inf(1)}).IsFinite() {
		t.Fatal("Inf position reported finite")
	}
}
