// Package irsynth generates synthetic HRIR datasets from a rigid spherical
// head model. The output is deterministic for a given Config and is used for
// demos and tests where no measured dataset is at hand.
package irsynth

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-approx"
	"github.com/cwbudde/algo-binaural/dsp"
	"github.com/cwbudde/algo-binaural/hrir"
	"github.com/cwbudde/algo-binaural/spatial"
	"github.com/cwbudde/algo-vecmath"
)

// SpeedOfSound in m/s.
const SpeedOfSound = 343.0

// Config controls synthetic dataset generation.
type Config struct {
	SampleRate int
	Seed       int64

	AzimuthStep   float64 // degrees
	ElevationStep float64 // degrees
	MinElevation  float64
	MaxElevation  float64
	Radius        float64 // source distance in metres

	HeadRadius  float64 // metres
	IRLength    int     // samples per ear, excluding onset delay
	BaseDelay   int     // samples before the near-ear onset
	ShadowDepth float64 // 0..1 broadband attenuation of the far ear
	AlphaMin    float64 // high-frequency head shadow gain at its deepest

	PinnaLevel    float64
	TailLevel     float64
	NormalizePeak float64
}

func DefaultConfig() Config {
	return Config{
		SampleRate:    48000,
		Seed:          1,
		AzimuthStep:   15,
		ElevationStep: 15,
		MinElevation:  -45,
		MaxElevation:  90,
		Radius:        1.5,
		HeadRadius:    0.0875,
		IRLength:      256,
		BaseDelay:     8,
		ShadowDepth:   0.6,
		AlphaMin:      dsp.ShadowAlphaMin,
		PinnaLevel:    0.15,
		TailLevel:     0.01,
		NormalizePeak: 0.9,
	}
}

func (c *Config) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.AzimuthStep <= 0 || c.AzimuthStep > 360 {
		return fmt.Errorf("azimuth step must be in (0, 360]")
	}
	if c.ElevationStep <= 0 {
		return fmt.Errorf("elevation step must be > 0")
	}
	if c.MinElevation < -90 || c.MaxElevation > 90 || c.MinElevation > c.MaxElevation {
		return fmt.Errorf("elevation range [%g, %g] invalid", c.MinElevation, c.MaxElevation)
	}
	if c.Radius <= 0 {
		return fmt.Errorf("radius must be > 0")
	}
	if c.HeadRadius <= 0 {
		return fmt.Errorf("head radius must be > 0")
	}
	if c.IRLength < 8 {
		return fmt.Errorf("ir length must be >= 8")
	}
	if c.BaseDelay < 0 {
		return fmt.Errorf("base delay must be >= 0")
	}
	if c.ShadowDepth < 0 || c.ShadowDepth > 1 {
		return fmt.Errorf("shadow depth must be in [0, 1]")
	}
	if c.AlphaMin <= 0 || c.AlphaMin > 1 {
		return fmt.Errorf("alpha min must be in (0, 1]")
	}
	if c.PinnaLevel < 0 || c.TailLevel < 0 {
		return fmt.Errorf("levels must be >= 0")
	}
	if c.NormalizePeak <= 0 {
		return fmt.Errorf("normalize peak must be > 0")
	}
	return nil
}

// WoodworthITD returns the interaural time difference in seconds for a
// spherical head of radius headRadius and a lateral angle in radians.
func WoodworthITD(headRadius, lateral float64) float64 {
	th := math.Abs(lateral)
	if th > math.Pi/2 {
		th = math.Pi / 2
	}
	return headRadius / SpeedOfSound * (th + math.Sin(th))
}

// GenerateDataset synthesizes one measurement per grid position. Positions
// are ordered by elevation, then azimuth. The listener sits at the origin.
func GenerateDataset(cfg Config) (*hrir.Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	nAz := int(math.Ceil(360.0/cfg.AzimuthStep - 1e-9))
	nEl := int(math.Floor((cfg.MaxElevation-cfg.MinElevation)/cfg.ElevationStep+1e-9)) + 1

	ds := &hrir.Dataset{
		SampleRate:   cfg.SampleRate,
		Measurements: make([]hrir.Measurement, 0, nAz*nEl),
	}
	for e := 0; e < nEl; e++ {
		el := cfg.MinElevation + float64(e)*cfg.ElevationStep
		for a := 0; a < nAz; a++ {
			az := float64(a) * cfg.AzimuthStep
			pos := spatial.Spherical{Azimuth: az, Elevation: el, Radius: cfg.Radius}
			ds.Measurements = append(ds.Measurements, synthMeasurement(cfg, pos, rng))
		}
	}

	peak := 0.0
	for _, m := range ds.Measurements {
		peak = math.Max(peak, math.Max(vecmath.MaxAbs(m.Left), vecmath.MaxAbs(m.Right)))
	}
	if peak < 1e-12 {
		peak = 1e-12
	}
	s := cfg.NormalizePeak / peak
	for _, m := range ds.Measurements {
		vecmath.ScaleBlockInPlace(m.Left, s)
		vecmath.ScaleBlockInPlace(m.Right, s)
	}
	return ds, nil
}

func synthMeasurement(cfg Config, pos spatial.Spherical, rng *rand.Rand) hrir.Measurement {
	u := spatial.ToCartesian(spatial.Spherical{Azimuth: pos.Azimuth, Elevation: pos.Elevation, Radius: 1})

	// +X points to the listener's right.
	cosL := clamp(-u.X, -1, 1)
	cosR := clamp(u.X, -1, 1)
	lateral := math.Asin(cosL) // positive toward the left ear

	itd := int(math.Round(WoodworthITD(cfg.HeadRadius, lateral) * float64(cfg.SampleRate)))
	delay := [2]int{cfg.BaseDelay, cfg.BaseDelay}
	if lateral > 0 {
		delay[hrir.Right] += itd
	} else {
		delay[hrir.Left] += itd
	}

	pinnaHz := 7000.0 + 40.0*pos.Elevation
	if maxF := 0.45 * float64(cfg.SampleRate); pinnaHz > maxF {
		pinnaHz = maxF
	}

	return hrir.Measurement{
		Position: pos,
		Delay:    delay,
		Left:     synthEar(cfg, cosL, pinnaHz, rng),
		Right:    synthEar(cfg, cosR, pinnaHz, rng),
	}
}

// synthEar builds one ear's response for a source at incidence cosine
// cosInc relative to the ear axis (1 facing, -1 opposite).
func synthEar(cfg Config, cosInc float64, pinnaHz float64, rng *rand.Rand) []float64 {
	n := cfg.IRLength
	incidence := math.Acos(cosInc) * 180 / math.Pi
	gain := 1 - cfg.ShadowDepth*0.5*(1-cosInc)

	shadow := dsp.HeadShadow(incidence, cfg.HeadRadius, cfg.SampleRate, cfg.AlphaMin)
	out := dsp.ImpulseResponse(shadow, n, gain)

	if cfg.PinnaLevel > 0 {
		decay := fastExp(-1.0 / (0.0003 * float64(cfg.SampleRate)))
		addModeRec(out, cfg.PinnaLevel*gain, pinnaHz, 0, decay, cfg.SampleRate)
	}

	if cfg.TailLevel > 0 {
		tau := float64(n) / 4
		for i := 1; i < n; i++ {
			out[i] += cfg.TailLevel * gain * fastExp(-float64(i)/tau) * rng.NormFloat64()
		}
	}
	applyFadeOut(out, n/8)
	return out
}

func addModeRec(out []float64, amp float64, freq float64, phase float64, decay float64, sampleRate int) {
	if len(out) == 0 {
		return
	}
	w := 2.0 * math.Pi * freq / float64(sampleRate)
	cw := math.Cos(w)
	x0 := math.Cos(phase)
	x1 := math.Cos(phase + w)
	env := 1.0

	out[0] += amp * env * x0
	env *= decay
	if len(out) == 1 {
		return
	}
	out[1] += amp * env * x1
	env *= decay
	for i := 2; i < len(out); i++ {
		x2 := 2.0*cw*x1 - x0
		x0 = x1
		x1 = x2
		out[i] += amp * env * x2
		env *= decay
	}
}

// applyFadeOut applies a cosine fade-out to the last fadeSamples of buf.
func applyFadeOut(buf []float64, fadeSamples int) {
	if fadeSamples <= 0 || len(buf) == 0 {
		return
	}
	if fadeSamples > len(buf) {
		fadeSamples = len(buf)
	}
	start := len(buf) - fadeSamples
	for i := 0; i < fadeSamples; i++ {
		t := float64(i) / float64(fadeSamples)
		buf[start+i] *= 0.5 * (1.0 + math.Cos(t*math.Pi))
	}
}

// fastExp evaluates the decay envelopes in single precision.
func fastExp(x float64) float64 {
	return float64(approx.FastExp(float32(x)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
