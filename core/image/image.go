// Package image reads raw tags and file properties for image formats:
// JPEG, PNG, GIF, WebP, TIFF, BMP, HEIC/HEIF
package image

import (
	"bytes"
	"fmt"
	stdimage "image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ankit-chaubey/media-metadata-highlights/core"
)

// Handler implements core.Handler for all image formats.
type Handler struct {
	format core.FormatID
}

// New returns a Handler for the given format.
func New(id core.FormatID) *Handler { return &Handler{format: id} }

func (h *Handler) Info() core.FormatInfo {
	return formatInfo[h.format]
}

var formatInfo = map[core.FormatID]core.FormatInfo{
	core.FmtJPEG: {
		Name:       "JPEG",
		Extensions: []string{".jpg", ".jpeg"},
		MediaType:  "image",
		MIMETypes:  []string{"image/jpeg"},
		Notes:      "EXIF (APP1), XMP (APP1), IPTC (APP13).",
	},
	core.FmtPNG: {
		Name:       "PNG",
		Extensions: []string{".png"},
		MediaType:  "image",
		MIMETypes:  []string{"image/png"},
		Notes:      "tEXt, iTXt, zTXt, eXIf and tIME chunks.",
	},
	core.FmtGIF: {
		Name:       "GIF",
		Extensions: []string{".gif"},
		MediaType:  "image",
		MIMETypes:  []string{"image/gif"},
		Notes:      "Dimensions only.",
	},
	core.FmtWebP: {
		Name:       "WEBP",
		Extensions: []string{".webp"},
		MediaType:  "image",
		MIMETypes:  []string{"image/webp"},
		Notes:      "EXIF and XMP chunks in RIFF container.",
	},
	core.FmtTIFF: {
		Name:       "TIFF",
		Extensions: []string{".tiff", ".tif"},
		MediaType:  "image",
		MIMETypes:  []string{"image/tiff"},
		Notes:      "IFD-based metadata.",
	},
	core.FmtBMP: {
		Name:       "BMP",
		Extensions: []string{".bmp"},
		MediaType:  "image",
		MIMETypes:  []string{"image/bmp"},
		Notes:      "Dimensions only.",
	},
	core.FmtHEIC: {
		Name:       "HEIC",
		Extensions: []string{".heic", ".heif"},
		MediaType:  "image",
		MIMETypes:  []string{"image/heic", "image/heif"},
		Notes:      "EXIF located by scanning the ISOBMFF container; no pixel dimensions.",
	},
}

// hasDecoder reports whether a registered image decoder can read the
// header of this format. Files of these formats that fail to decode are
// treated as corrupt.
func (h *Handler) hasDecoder() bool {
	return h.format != core.FmtHEIC
}

// View reads the raw tags and file properties of path.
func (h *Handler) View(path string) (*core.Metadata, error) {
	info, ok := formatInfo[h.format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, h.format)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrFileUnreadable, err)
	}

	m := &core.Metadata{
		FilePath: path,
		Props: core.FileProps{
			Format:    info.Name,
			SizeBytes: int64(len(data)),
		},
		Raw: core.RawMetadata{},
	}

	cfg, _, err := stdimage.DecodeConfig(bytes.NewReader(data))
	switch {
	case err == nil && cfg.Width > 0 && cfg.Height > 0:
		m.Props.Width = core.Some(cfg.Width)
		m.Props.Height = core.Some(cfg.Height)
	case h.hasDecoder():
		if err == nil {
			err = fmt.Errorf("empty image header")
		}
		return nil, fmt.Errorf("%w: not a valid %s: %w", core.ErrFileUnreadable, info.Name, err)
	}

	switch h.format {
	case core.FmtJPEG:
		viewJPEG(data, m.Raw)
	case core.FmtPNG:
		viewPNG(data, m.Raw)
	case core.FmtWebP:
		viewWebP(data, m.Raw)
	case core.FmtTIFF, core.FmtHEIC:
		readExif(data, m.Raw)
	}

	return m, nil
}

// ─── JPEG ────────────────────────────────────────────────────────────────────

var (
	xmpPrefix  = []byte("http://ns.adobe.com/xap/1.0/\x00")
	iptcPrefix = []byte("Photoshop 3.0\x00")
)

func viewJPEG(data []byte, raw core.RawMetadata) {
	readExif(data, raw)

	if xmp := extractJPEGSegment(bytes.NewReader(data), 0xE1, xmpPrefix); len(xmp) > 0 {
		parseXMPInto(xmp, raw)
	}

	if iptc := extractJPEGSegment(bytes.NewReader(data), 0xED, iptcPrefix); len(iptc) > 0 {
		parseIPTCInto(iptc, raw)
	}
}
