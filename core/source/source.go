// Package source picks the format handler for a file and returns its raw
// tags and file properties.
package source

import (
	"fmt"

	"github.com/ankit-chaubey/media-metadata-highlights/core"
	"github.com/ankit-chaubey/media-metadata-highlights/core/audio"
	"github.com/ankit-chaubey/media-metadata-highlights/core/image"
)

// Source dispatches to the image and audio handlers by detected format.
type Source struct{}

// New returns a Source.
func New() *Source {
	return &Source{}
}

// known lists every format a handler exists for, in display order.
var known = []core.FormatID{
	core.FmtJPEG, core.FmtPNG, core.FmtGIF, core.FmtWebP, core.FmtTIFF, core.FmtBMP, core.FmtHEIC,
	core.FmtMP3, core.FmtFLAC, core.FmtOGG, core.FmtM4A,
}

// Formats describes every supported format.
func Formats() []core.FormatInfo {
	out := make([]core.FormatInfo, 0, len(known))
	for _, id := range known {
		h, err := HandlerFor(id)
		if err != nil {
			continue
		}
		out = append(out, h.Info())
	}
	return out
}

// HandlerFor returns the handler for a detected format.
func HandlerFor(id core.FormatID) (core.Handler, error) {
	switch core.MediaTypeFor(id) {
	case "image":
		return image.New(id), nil
	case "audio":
		return audio.New(id), nil
	}
	return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, id)
}

// View reads path. Every error wraps core.ErrFileUnreadable.
func (s *Source) View(path string) (*core.Metadata, error) {
	id, err := core.DetectFormat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrFileUnreadable, err)
	}

	h, err := HandlerFor(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrFileUnreadable, err)
	}

	m, err := h.View(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s metadata: %w", h.Info().Name, err)
	}

	return m, nil
}
