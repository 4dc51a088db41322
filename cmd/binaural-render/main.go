package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cwbudde/algo-binaural/analysis"
	"github.com/cwbudde/algo-binaural/binaural"
	"github.com/cwbudde/algo-binaural/hrir"
	"github.com/cwbudde/algo-binaural/internal/cliutil"
	"github.com/cwbudde/algo-binaural/internal/pcm"
	"github.com/cwbudde/algo-binaural/preset"
)

// renderFlags holds the command-line flags that may override a preset.
type renderFlags struct {
	configPath *string
	dataset    *string
	format     *string
	input      *string
	output     *string
	azimuth    *float64
	elevation  *float64
	radius     *float64
	kernel     *string
	workers    *string
	ratePolicy *string
	downmix    *bool
	exportIR   *string
	report     *string
	printJSON  *bool
	verify     *bool
}

func newRenderFlags(fs *flag.FlagSet) *renderFlags {
	return &renderFlags{
		configPath: fs.String("config", "", "Render preset JSON file (optional)"),
		dataset:    fs.String("dataset", "", "HRIR dataset (container JSON or WAV bank manifest)"),
		format:     fs.String("format", hrir.FormatAuto, "Dataset format: auto|json|wavbank"),
		input:      fs.String("input", "", "Mono 16-bit PCM input WAV"),
		output:     fs.String("output", "out.wav", "Stereo 16-bit PCM output WAV"),
		azimuth:    fs.Float64("azimuth", -90, "Source azimuth in degrees (positive = left, 0 = front)"),
		elevation:  fs.Float64("elevation", 0, "Source elevation in degrees"),
		radius:     fs.Float64("radius", 1.5, "Source distance in metres"),
		kernel:     fs.String("kernel", "direct", "Convolution kernel: direct|overlap-add|fft|auto"),
		workers:    fs.String("workers", "1", "Worker goroutines per ear for the direct kernel (integer >= 1 or 'auto')"),
		ratePolicy: fs.String("rate-policy", "resample", "On input/dataset rate mismatch: resample|strict"),
		downmix:    fs.Bool("downmix", false, "Average multi-channel input to mono instead of failing"),
		exportIR:   fs.String("export-ir", "", "Also write the selected delay-padded HRIR pair to this WAV"),
		report:     fs.String("report", "", "Write the render report JSON to this path"),
		printJSON:  fs.Bool("json", false, "Print the render report as JSON"),
		verify:     fs.Bool("verify", false, "Compare the output against the direct reference kernel"),
	}
}

// applyFlags overrides cfg with the flags that were set explicitly on fs.
func applyFlags(cfg *preset.Config, fs *flag.FlagSet, rf *renderFlags) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "dataset":
			cfg.DatasetPath = *rf.dataset
		case "format":
			cfg.DatasetFormat = *rf.format
		case "input":
			cfg.InputPath = *rf.input
		case "output":
			cfg.OutputPath = *rf.output
		case "azimuth":
			cfg.Source.Azimuth = *rf.azimuth
		case "elevation":
			cfg.Source.Elevation = *rf.elevation
		case "radius":
			cfg.Source.Radius = *rf.radius
		case "kernel":
			cfg.Kernel, err = binaural.ParseKernel(*rf.kernel)
		case "workers":
			cfg.Workers, err = cliutil.ParseWorkers(*rf.workers)
		case "rate-policy":
			cfg.RatePolicy, err = binaural.ParseRatePolicy(*rf.ratePolicy)
		case "downmix":
			cfg.Downmix = *rf.downmix
		case "export-ir":
			cfg.ExportIRPath = *rf.exportIR
		case "report":
			cfg.ReportPath = *rf.report
		}
		if err != nil {
			err = fmt.Errorf("-%s: %w", f.Name, err)
		}
	})
	return err
}

func main() {
	rf := newRenderFlags(flag.CommandLine)
	flag.Parse()

	cfg := preset.NewDefaultConfig()
	if *rf.configPath != "" {
		loaded, err := preset.LoadJSON(*rf.configPath)
		if err != nil {
			cliutil.Die("Error loading config %q: %v", *rf.configPath, err)
		}
		cfg = loaded
	}

	if err := applyFlags(cfg, flag.CommandLine, rf); err != nil {
		cliutil.Die("binaural-render error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		cliutil.Die("binaural-render error: %v", err)
	}

	if !*rf.printJSON {
		fmt.Printf("Rendering %s at az=%.1f el=%.1f r=%.2f (dataset: %s, kernel: %s, workers: %d)...\n",
			cfg.InputPath, cfg.Source.Azimuth, cfg.Source.Elevation, cfg.Source.Radius, cfg.DatasetPath, cfg.Kernel, cfg.Workers)
	}

	rep, err := run(cfg, *rf.verify)
	if err != nil {
		cliutil.Die("binaural-render error: %v", err)
	}

	if cfg.ReportPath != "" {
		if err := writeJSON(cfg.ReportPath, rep); err != nil {
			cliutil.Die("report write error: %v", err)
		}
	}
	if *rf.printJSON {
		b, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			cliutil.Die("report encode error: %v", err)
		}
		fmt.Println(string(b))
		return
	}
	printReport(cfg, rep, *rf.verify)
}

// run renders cfg.InputPath to cfg.OutputPath and returns the report.
func run(cfg *preset.Config, verify bool) (*analysis.Report, error) {
	ds, err := hrir.Load(cfg.DatasetPath, cfg.DatasetFormat)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	samples, inFmt, err := pcm.ReadMono16(cfg.InputPath, cfg.Downmix)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	r, err := binaural.NewRenderer(ds, cfg.RatePolicy, cfg.Options()...)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := r.Render(binaural.Signal{Samples: samples, SampleRate: inFmt.SampleRate}, cfg.Source)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	if err := pcm.WriteStereo16(cfg.OutputPath, res.Output.Left, res.Output.Right, res.SampleRate); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	if cfg.ExportIRPath != "" {
		if err := hrir.WritePairWAV(cfg.ExportIRPath, res.Pair, res.SampleRate); err != nil {
			return nil, fmt.Errorf("export ir: %w", err)
		}
	}

	rep := analysis.NewReport(res.Output.Left, res.Output.Right, res.Pair.Left, res.Pair.Right, res.SampleRate)
	rep.Measurement = res.Index
	rep.Azimuth = res.Position.Azimuth
	rep.Elevation = res.Position.Elevation
	rep.Radius = res.Position.Radius
	rep.Kernel = cfg.Kernel.String()
	rep.Resampled = res.Resampled
	rep.Left.Clipped = res.Output.Clipped[hrir.Left]
	rep.Right.Clipped = res.Output.Clipped[hrir.Right]
	rep.ElapsedMS = float64(elapsed.Microseconds()) / 1000.0

	if verify {
		ref, err := binaural.Convolve(samples, res.Pair, binaural.WithKernel(binaural.KernelDirect))
		if err != nil {
			return nil, fmt.Errorf("reference render: %w", err)
		}
		rep.ReferenceDiff = maxStereoDiff(ref, res.Output)
	}
	return &rep, nil
}

func maxStereoDiff(a, b binaural.Stereo) float64 {
	l := analysis.MaxAbsDiff(toFloat(a.Left), toFloat(b.Left))
	r := analysis.MaxAbsDiff(toFloat(a.Right), toFloat(b.Right))
	if r > l {
		return r
	}
	return l
}

func toFloat(in []int16) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func printReport(cfg *preset.Config, rep *analysis.Report, verify bool) {
	fmt.Printf("Selected measurement %d: az=%.1f el=%.1f r=%.2f\n", rep.Measurement, rep.Azimuth, rep.Elevation, rep.Radius)
	if rep.Resampled {
		fmt.Printf("Resampled HRIRs to %d Hz\n", rep.SampleRate)
	}
	fmt.Printf("Rendered in %.3f ms\n", rep.ElapsedMS)
	fmt.Printf("Left:  peak %.2f dBFS, RMS %.2f dBFS, clipped %d\n", rep.Left.PeakDBFS, rep.Left.RMSDBFS, rep.Left.Clipped)
	fmt.Printf("Right: peak %.2f dBFS, RMS %.2f dBFS, clipped %d\n", rep.Right.PeakDBFS, rep.Right.RMSDBFS, rep.Right.Clipped)
	fmt.Printf("ILD: %.2f dB, ITD: %d samples (%.1f us), IR ITD: %d samples\n", rep.ILDDB, rep.ITDSamples, rep.ITDMicroseconds, rep.IRITDSamples)
	if verify {
		fmt.Printf("Max deviation from direct reference: %.0f LSB\n", rep.ReferenceDiff)
	}
	if cfg.ExportIRPath != "" {
		fmt.Printf("Wrote HRIR pair %s\n", cfg.ExportIRPath)
	}
	fmt.Printf("Successfully wrote %s (%d frames at %d Hz)\n", cfg.OutputPath, rep.Frames, rep.SampleRate)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}
