// Package analysis measures rendered binaural output: level statistics per
// ear, interaural level and time differences, and the distance between two
// renderings of the same input.
package analysis

import (
	"math"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
	"github.com/cwbudde/algo-vecmath"
	"github.com/google/uuid"
)

// fullScale16 is the magnitude of the most negative 16-bit sample.
const fullScale16 = 32768.0

// Channel holds level statistics of one ear.
type Channel struct {
	PeakDBFS float64 `json:"peak_dbfs"`
	RMSDBFS  float64 `json:"rms_dbfs"`
	Clipped  int     `json:"clipped"`
}

// Report summarizes one render.
type Report struct {
	RunID      string `json:"run_id"`
	SampleRate int    `json:"sample_rate"`
	Frames     int    `json:"frames"`

	Measurement int     `json:"measurement"`
	Azimuth     float64 `json:"azimuth"`
	Elevation   float64 `json:"elevation"`
	Radius      float64 `json:"radius"`
	Kernel      string  `json:"kernel"`
	Resampled   bool    `json:"resampled"`

	Left  Channel `json:"left"`
	Right Channel `json:"right"`

	// ILDDB is left RMS over right RMS in dB.
	ILDDB float64 `json:"ild_db"`
	// ITDSamples is positive when the left ear lags the right ear.
	ITDSamples      int     `json:"itd_samples"`
	ITDMicroseconds float64 `json:"itd_us"`
	IRITDSamples    int     `json:"ir_itd_samples"`

	ElapsedMS     float64 `json:"elapsed_ms"`
	ReferenceDiff float64 `json:"reference_max_diff,omitempty"`
}

// NewReport fills the level and interaural fields for a rendered stereo
// signal. irLeft/irRight are the responses used for the render and may be
// nil. The ITD search is limited to ±1 ms.
func NewReport(left, right []int16, irLeft, irRight []float64, sampleRate int) Report {
	r := Report{
		RunID:      uuid.NewString(),
		SampleRate: sampleRate,
		Frames:     len(left),
	}
	l := toFloat64(left)
	rt := toFloat64(right)
	r.Left = channelStats(l)
	r.Right = channelStats(rt)
	r.ILDDB = linToDB(rms1(l)) - linToDB(rms1(rt))

	maxLag := sampleRate / 1000
	if maxLag < 1 {
		maxLag = 1
	}
	r.ITDSamples = InterauralLag(l, rt, maxLag)
	if sampleRate > 0 {
		r.ITDMicroseconds = float64(r.ITDSamples) * 1e6 / float64(sampleRate)
	}
	if len(irLeft) > 0 && len(irRight) > 0 {
		r.IRITDSamples = InterauralLag(irLeft, irRight, maxLag)
	}
	return r
}

func channelStats(x []float64) Channel {
	c := Channel{
		PeakDBFS: linToDB(vecmath.MaxAbs(x) / fullScale16),
		RMSDBFS:  linToDB(rms1(x) / fullScale16),
	}
	for _, v := range x {
		if v >= math.MaxInt16 || v <= math.MinInt16 {
			c.Clipped++
		}
	}
	return c
}

// InterauralLag returns the lag in [-maxLag, maxLag] at which right best
// matches left, positive when left is a delayed copy of right. Silent or
// empty input yields 0.
func InterauralLag(left, right []float64, maxLag int) int {
	if len(left) == 0 || len(right) == 0 || vecmath.MaxAbs(left) == 0 || vecmath.MaxAbs(right) == 0 {
		return 0
	}
	corr, err := dspconv.Correlate(left, right)
	if err != nil {
		return 0
	}
	lo := dspconv.IndexFromLag(-maxLag, len(right))
	hi := dspconv.IndexFromLag(maxLag, len(right))
	if lo < 0 {
		lo = 0
	}
	if hi > len(corr)-1 {
		hi = len(corr) - 1
	}
	if lo > hi {
		return 0
	}
	idx, _ := dspconv.FindPeak(corr[lo : hi+1])
	return dspconv.LagFromIndex(lo+idx, len(right))
}

// MaxAbsDiff returns the largest absolute sample difference over the common
// length of a and b.
func MaxAbsDiff(a []float64, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	var m float64
	for i := 0; i < n; i++ {
		if d := math.Abs(a[i] - b[i]); d > m {
			m = d
		}
	}
	return m
}

// RMSE returns the root-mean-square difference over the common length.
func RMSE(a []float64, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

func rms1(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(vecmath.DotProduct(x, x) / float64(len(x)))
}

func linToDB(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20.0 * math.Log10(x)
}

func toFloat64(in []int16) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
