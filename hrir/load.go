package hrir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Dataset container formats accepted by Load.
const (
	FormatAuto    = "auto"
	FormatJSON    = "json"
	FormatWAVBank = "wavbank"
)

var ErrUnknownFormat = errors.New("hrir: unknown dataset format")

// Load reads a dataset in the given format. FormatAuto (or "") inspects
// the file: a top-level "SourcePosition" selects the container format,
// a "measurements" list selects a WAV bank manifest.
func Load(path string, format string) (*Dataset, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		return LoadJSON(path)
	case FormatWAVBank:
		return LoadWAVBank(path)
	case "", FormatAuto:
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if _, ok := probe["SourcePosition"]; ok {
		return LoadJSON(path)
	}
	if _, ok := probe["measurements"]; ok {
		return LoadWAVBank(path)
	}
	return nil, fmt.Errorf("%s: cannot detect dataset format: %w", path, ErrUnknownFormat)
}
