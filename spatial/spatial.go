// Package spatial converts source positions between the spherical frame used
// by HRIR datasets and a cartesian frame, and selects the measured position
// nearest to a requested source.
//
// Convention: azimuth 0° is straight ahead (+Y), positive azimuth turns to
// the listener's left (-X), elevation 0° is the horizontal plane and +Z is up.
package spatial

import "math"

// Spherical is a source position in degrees (azimuth, elevation) and a
// radius in the dataset's linear unit.
type Spherical struct {
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
	Radius    float64 `json:"radius"`
}

// Vec3 is a cartesian position.
type Vec3 struct {
	X, Y, Z float64
}

// ToCartesian converts a spherical position to cartesian coordinates.
func ToCartesian(p Spherical) Vec3 {
	az := p.Azimuth * (math.Pi / 180.0)
	el := p.Elevation * (math.Pi / 180.0)
	return Vec3{
		X: p.Radius * math.Cos(el) * -math.Sin(az),
		Y: p.Radius * math.Cos(el) * math.Cos(az),
		Z: p.Radius * math.Sin(el),
	}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Dist2 returns the squared Euclidean distance between v and o.
func (v Vec3) Dist2(o Vec3) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	dz := v.Z - o.Z
	return dx*dx + dy*dy + dz*dz
}

// Dist returns the Euclidean distance between v and o.
func (v Vec3) Dist(o Vec3) float64 {
	return math.Sqrt(v.Dist2(o))
}

// IsFinite reports whether all coordinates are finite.
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// IsFinite reports whether all components are finite.
func (p Spherical) IsFinite() bool {
	return isFinite(p.Azimuth) && isFinite(p.Elevation) && isFinite(p.Radius)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
