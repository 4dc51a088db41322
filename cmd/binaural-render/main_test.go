package main

import (
	"errors"
	"flag"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/cwbudde/algo-binaural/binaural"
	"github.com/cwbudde/algo-binaural/hrir"
	"github.com/cwbudde/algo-binaural/internal/pcm"
	"github.com/cwbudde/algo-binaural/irsynth"
	"github.com/cwbudde/algo-binaural/preset"
)

// setup writes a synthetic dataset without pinna or tail components so
// interaural cues are exact, plus a noise input at inputRate.
func setup(t *testing.T, inputRate int) *preset.Config {
	t.Helper()
	dir := t.TempDir()

	scfg := irsynth.DefaultConfig()
	scfg.AzimuthStep = 30
	scfg.ElevationStep = 30
	scfg.MinElevation = 0
	scfg.MaxElevation = 60
	scfg.IRLength = 64
	scfg.PinnaLevel = 0
	scfg.TailLevel = 0
	ds, err := irsynth.GenerateDataset(scfg)
	if err != nil {
		t.Fatalf("GenerateDataset: %v", err)
	}
	dsPath := filepath.Join(dir, "hrir.json")
	if err := hrir.WriteJSON(dsPath, ds); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	rng := rand.New(rand.NewSource(7))
	in := make([]int16, 4800)
	for i := range in {
		in[i] = int16(rng.Intn(16001) - 8000)
	}
	inPath := filepath.Join(dir, "in.wav")
	if err := pcm.WriteMono16(inPath, in, inputRate); err != nil {
		t.Fatalf("WriteMono16: %v", err)
	}

	cfg := preset.NewDefaultConfig()
	cfg.DatasetPath = dsPath
	cfg.InputPath = inPath
	cfg.OutputPath = filepath.Join(dir, "out.wav")
	cfg.ExportIRPath = filepath.Join(dir, "ir.wav")
	return cfg
}

func TestRunRightSource(t *testing.T) {
	cfg := setup(t, 48000)

	rep, err := run(cfg, false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.Azimuth != 270 || rep.Elevation != 0 {
		t.Fatalf("selected az=%g el=%g, want 270/0", rep.Azimuth, rep.Elevation)
	}
	// 4800 input samples, far ear padded to 8+31 delay + 64 taps.
	if want := 4800 + 8 + 31 + 64 - 1; rep.Frames != want {
		t.Fatalf("frames: got=%d want=%d", rep.Frames, want)
	}
	if rep.IRITDSamples != 31 {
		t.Fatalf("IR ITD: got=%d want=31", rep.IRITDSamples)
	}
	if rep.ITDSamples != 31 {
		t.Fatalf("output ITD: got=%d want=31", rep.ITDSamples)
	}
	if rep.ILDDB >= 0 {
		t.Fatalf("expected right ear louder, ILD=%.2f dB", rep.ILDDB)
	}
	if rep.Resampled {
		t.Fatal("unexpected resampling at matching rates")
	}
	for _, p := range []string{cfg.OutputPath, cfg.ExportIRPath} {
		if st, err := os.Stat(p); err != nil || st.Size() == 0 {
			t.Fatalf("expected non-empty %s: %v", p, err)
		}
	}
}

func TestRunVerifyFFTKernel(t *testing.T) {
	cfg := setup(t, 48000)
	cfg.Kernel = binaural.KernelFFT
	cfg.Source.Azimuth = 30

	rep, err := run(cfg, true)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.ReferenceDiff > 1 {
		t.Fatalf("fft kernel deviates from direct reference by %.0f LSB", rep.ReferenceDiff)
	}
	if rep.Kernel != "fft" {
		t.Fatalf("kernel name: %q", rep.Kernel)
	}
}

func TestRunRatePolicies(t *testing.T) {
	cfg := setup(t, 44100)

	rep, err := run(cfg, false)
	if err != nil {
		t.Fatalf("run with resample policy: %v", err)
	}
	if !rep.Resampled || rep.SampleRate != 44100 {
		t.Fatalf("expected resampled render at 44100 Hz, got resampled=%v rate=%d", rep.Resampled, rep.SampleRate)
	}

	cfg.RatePolicy = binaural.RateStrict
	if _, err := run(cfg, false); !errors.Is(err, binaural.ErrSampleRateMismatch) {
		t.Fatalf("expected ErrSampleRateMismatch, got %v", err)
	}
}

func TestRunMissingDataset(t *testing.T) {
	cfg := setup(t, 48000)
	cfg.DatasetPath = filepath.Join(t.TempDir(), "missing.json")
	if _, err := run(cfg, false); err == nil {
		t.Fatal("expected error for missing dataset")
	}
}

func parseRenderFlags(t *testing.T, args ...string) (*flag.FlagSet, *renderFlags) {
	t.Helper()
	fs := flag.NewFlagSet("binaural-render", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	rf := newRenderFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return fs, rf
}

func TestApplyFlagsOverridesOnlyExplicitFlags(t *testing.T) {
	cfg := preset.NewDefaultConfig()
	cfg.OutputPath = "from-preset.wav"
	cfg.Source.Elevation = 30
	cfg.Source.Radius = 2
	cfg.Workers = 3
	cfg.RatePolicy = binaural.RateStrict

	fs, rf := parseRenderFlags(t, "-azimuth", "45", "-kernel", "fft", "-workers", "auto", "-downmix")
	if err := applyFlags(cfg, fs, rf); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}

	if cfg.Source.Azimuth != 45 || cfg.Kernel != binaural.KernelFFT || !cfg.Downmix {
		t.Fatalf("explicit flags not applied: %+v", cfg)
	}
	if cfg.Workers != runtime.NumCPU() {
		t.Fatalf("workers got=%d want=%d", cfg.Workers, runtime.NumCPU())
	}
	// Flag defaults must not clobber preset values.
	if cfg.OutputPath != "from-preset.wav" || cfg.Source.Elevation != 30 || cfg.Source.Radius != 2 {
		t.Fatalf("preset values overridden by defaults: %+v", cfg)
	}
	if cfg.RatePolicy != binaural.RateStrict {
		t.Fatalf("rate policy got=%v want=%v", cfg.RatePolicy, binaural.RateStrict)
	}
}

func TestApplyFlagsReportsBadValues(t *testing.T) {
	cases := []struct {
		args []string
		want error
	}{
		{[]string{"-kernel", "wavelet"}, binaural.ErrUnknownKernel},
		{[]string{"-rate-policy", "nearest"}, binaural.ErrUnknownRatePolicy},
		{[]string{"-workers", "0"}, nil},
	}
	for _, tc := range cases {
		fs, rf := parseRenderFlags(t, tc.args...)
		err := applyFlags(preset.NewDefaultConfig(), fs, rf)
		if err == nil {
			t.Fatalf("%v: expected error", tc.args)
		}
		if !strings.HasPrefix(err.Error(), tc.args[0]+":") {
			t.Fatalf("%v: error should name the flag, got %q", tc.args, err)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("%v: got=%v want=%v", tc.args, err, tc.want)
		}
	}
}

func TestAzimuthUsageNamesLeftAsPositive(t *testing.T) {
	fs, _ := parseRenderFlags(t)
	if u := fs.Lookup("azimuth").Usage; !strings.Contains(u, "positive = left") {
		t.Fatalf("azimuth usage should state the sign convention, got %q", u)
	}
}
