// Package preset loads render settings from JSON files.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cwbudde/algo-binaural/binaural"
	"github.com/cwbudde/algo-binaural/hrir"
	"github.com/cwbudde/algo-binaural/spatial"
)

// Config is a fully resolved render configuration.
type Config struct {
	DatasetPath   string
	DatasetFormat string
	InputPath     string
	OutputPath    string
	ExportIRPath  string
	ReportPath    string

	Source     spatial.Spherical
	Kernel     binaural.Kernel
	Workers    int
	RatePolicy binaural.RatePolicy
	Downmix    bool
}

// NewDefaultConfig returns settings that place the source to the right of
// the listener at 1.5 m.
func NewDefaultConfig() *Config {
	return &Config{
		DatasetFormat: hrir.FormatAuto,
		OutputPath:    "out.wav",
		Source:        spatial.Spherical{Azimuth: -90, Elevation: 0, Radius: 1.5},
		Kernel:        binaural.KernelDirect,
		Workers:       1,
		RatePolicy:    binaural.RateResampleIR,
	}
}

// File is the JSON schema for render presets.
type File struct {
	DatasetPath   string         `json:"dataset_path"`
	DatasetFormat string         `json:"dataset_format"`
	InputPath     string         `json:"input_path"`
	OutputPath    string         `json:"output_path"`
	ExportIRPath  string         `json:"export_ir_path"`
	ReportPath    string         `json:"report_path"`
	Source        *SourceSetting `json:"source"`
	Kernel        string         `json:"kernel"`
	Workers       *int           `json:"workers"`
	RatePolicy    string         `json:"rate_policy"`
	Downmix       *bool          `json:"downmix"`
}

// SourceSetting is a partial source position override.
type SourceSetting struct {
	Azimuth   *float64 `json:"azimuth"`
	Elevation *float64 `json:"elevation"`
	Radius    *float64 `json:"radius"`
}

// LoadJSON loads a preset JSON file and applies it on top of the default
// config. Relative paths are resolved against the preset's directory.
func LoadJSON(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	c := NewDefaultConfig()
	if err := ApplyFile(c, &f); err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&c.DatasetPath, &c.InputPath, &c.OutputPath, &c.ExportIRPath, &c.ReportPath} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Clean(filepath.Join(base, *p))
		}
	}
	return c, nil
}

// ApplyFile applies a parsed preset file onto an existing config.
func ApplyFile(dst *Config, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination config")
	}
	if f == nil {
		return nil
	}

	setPath := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	setPath(&dst.DatasetPath, f.DatasetPath)
	setPath(&dst.InputPath, f.InputPath)
	setPath(&dst.OutputPath, f.OutputPath)
	setPath(&dst.ExportIRPath, f.ExportIRPath)
	setPath(&dst.ReportPath, f.ReportPath)

	if f.DatasetFormat != "" {
		switch v := strings.ToLower(strings.TrimSpace(f.DatasetFormat)); v {
		case hrir.FormatAuto, hrir.FormatJSON, hrir.FormatWAVBank:
			dst.DatasetFormat = v
		default:
			return fmt.Errorf("dataset_format must be one of auto, json, wavbank")
		}
	}

	if s := f.Source; s != nil {
		if s.Azimuth != nil {
			dst.Source.Azimuth = *s.Azimuth
		}
		if s.Elevation != nil {
			if *s.Elevation < -90 || *s.Elevation > 90 {
				return fmt.Errorf("source.elevation must be in [-90,90]")
			}
			dst.Source.Elevation = *s.Elevation
		}
		if s.Radius != nil {
			if *s.Radius < 0 {
				return fmt.Errorf("source.radius must be >= 0")
			}
			dst.Source.Radius = *s.Radius
		}
	}

	if f.Kernel != "" {
		k, err := binaural.ParseKernel(f.Kernel)
		if err != nil {
			return fmt.Errorf("kernel: %w", err)
		}
		dst.Kernel = k
	}
	if f.Workers != nil {
		switch {
		case *f.Workers < 0:
			return fmt.Errorf("workers must be >= 0 (0 = auto)")
		case *f.Workers == 0:
			dst.Workers = runtime.NumCPU()
		default:
			dst.Workers = *f.Workers
		}
	}
	if f.RatePolicy != "" {
		p, err := binaural.ParseRatePolicy(f.RatePolicy)
		if err != nil {
			return fmt.Errorf("rate_policy: %w", err)
		}
		dst.RatePolicy = p
	}
	if f.Downmix != nil {
		dst.Downmix = *f.Downmix
	}
	return nil
}

// Validate checks that the config names everything a render needs.
func (c *Config) Validate() error {
	if c.DatasetPath == "" {
		return fmt.Errorf("dataset path is required")
	}
	if c.InputPath == "" {
		return fmt.Errorf("input path is required")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if !c.Source.IsFinite() {
		return fmt.Errorf("source position %+v: %w", c.Source, spatial.ErrInvalidPosition)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1")
	}
	return nil
}

// Options returns the convolution options for c.
func (c *Config) Options() []binaural.Option {
	return []binaural.Option{
		binaural.WithKernel(c.Kernel),
		binaural.WithWorkers(c.Workers),
	}
}
