package report

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ankit-chaubey/media-metadata-highlights/core"
)

// Sidecar formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Sidecar writes one file next to every input holding its full record.
type Sidecar struct {
	format string
	suffix string
}

// NewSidecar returns a Sidecar for format. An empty suffix selects ".json"
// or ".yaml".
func NewSidecar(format, suffix string) (*Sidecar, error) {
	switch format {
	case "", FormatJSON:
		format = FormatJSON
	case FormatYAML:
	default:
		return nil, fmt.Errorf("unknown sidecar format %q", format)
	}
	if suffix == "" {
		suffix = "." + format
	}
	return &Sidecar{format: format, suffix: suffix}, nil
}

func (s *Sidecar) Name() string { return "sidecar" }

// PathFor returns where the sidecar of path is written.
func (s *Sidecar) PathFor(path string) string {
	return path + s.suffix
}

// Emit writes rec's sidecar. Failures only affect this file.
func (s *Sidecar) Emit(rec *core.HighlightRecord) error {
	data, err := s.encode(rec)
	if err != nil {
		return fmt.Errorf("%w: could not encode %s: %w", core.ErrSidecarWrite, rec.FilePath, err)
	}

	dst := s.PathFor(rec.FilePath)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", core.ErrSidecarWrite, err)
	}
	return nil
}

func (s *Sidecar) encode(rec *core.HighlightRecord) ([]byte, error) {
	if s.format == FormatYAML {
		return yaml.Marshal(rec)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (s *Sidecar) Close() error { return nil }
