// Package resolve maps raw, per-format tag dictionaries onto the fixed set
// of highlight fields. Resolution never fails: a tag that is missing or
// cannot be decoded leaves its field absent.
package resolve

import (
	"strings"

	"github.com/ankit-chaubey/media-metadata-highlights/core"
	"github.com/ankit-chaubey/media-metadata-highlights/core/logger"
)

// Lookup lists, most authoritative first.
var (
	makeTags  = []string{"EXIF:Make", "XMP:Make"}
	modelTags = []string{"EXIF:Model", "XMP:Model"}

	authorTags = []string{
		"EXIF:Artist", "XMP:creator", "IPTC:By-line", "PNG:Author", "TAG:Artist", "ID3:TPE1",
	}
	copyrightTags = []string{
		"EXIF:Copyright", "XMP:rights", "IPTC:CopyrightNotice", "PNG:Copyright", "ID3:TCOP",
	}

	// The same Software tag as written by each container; there is no
	// semantic fallback.
	softwareTags = []string{"EXIF:Software", "XMP:CreatorTool", "PNG:Software", "ID3:TSSE"}

	captureTags = []string{
		"EXIF:DateTimeOriginal", "EXIF:DateTimeDigitized",
		"XMP:DateTimeOriginal", "XMP:CreateDate",
		"IPTC:DateCreated", "PNG:Creation Time", "ID3:TDRC", "TAG:Year",
	}
	modifiedTags = []string{"EXIF:DateTime", "XMP:ModifyDate", "PNG:tIME"}
)

const (
	latTag    = "EXIF:GPSLatitude"
	latRefTag = "EXIF:GPSLatitudeRef"
	lonTag    = "EXIF:GPSLongitude"
	lonRefTag = "EXIF:GPSLongitudeRef"
)

// Resolver turns RawMetadata into highlight fields.
type Resolver struct {
	log logger.Logger
}

// New returns a Resolver that reports malformed tags to log at debug level.
func New(log logger.Logger) *Resolver {
	if log == nil {
		log = logger.NewNop()
	}
	return &Resolver{log: log}
}

// Resolve extracts the highlight fields from raw. Format, dimensions and
// size always come from props.
func (r *Resolver) Resolve(raw core.RawMetadata, props core.FileProps) core.Fields {
	format := props.Format
	if format == "" {
		format = "UNKNOWN"
	}

	f := core.Fields{
		Format:        format,
		Width:         positive(props.Width),
		Height:        positive(props.Height),
		FileSizeBytes: props.SizeBytes,
		DeviceMake:    firstString(raw, makeTags),
		DeviceModel:   firstString(raw, modelTags),
		Author:        firstString(raw, authorTags, copyrightTags),
		Software:      firstString(raw, softwareTags),
	}

	if ts, tag, ok := firstTimestamp(raw, captureTags, modifiedTags); ok {
		if !ts.Time.OK() {
			r.log.Debug("capture timestamp kept as literal",
				logger.String("tag", tag),
				logger.String("literal", ts.Literal),
				logger.Error(core.ErrMalformedTimestamp),
			)
		}
		f.CapturedAt = core.Some(ts)
	}

	gps, err := resolveGPS(raw)
	switch {
	case err != nil:
		r.log.Debug("gps discarded", logger.Error(err))
	default:
		f.GPS = gps
	}

	return f
}

// Resolve uses a Resolver that does not log.
func Resolve(raw core.RawMetadata, props core.FileProps) core.Fields {
	return New(nil).Resolve(raw, props)
}

func positive(v core.Opt[int]) core.Opt[int] {
	if n, ok := v.Get(); ok && n > 0 {
		return v
	}
	return core.None[int]()
}

// firstString walks the lists in order and returns the first tag whose value
// decodes to non-blank text.
func firstString(raw core.RawMetadata, lists ...[]string) core.Opt[string] {
	for _, list := range lists {
		for _, key := range list {
			if s, ok := stringValue(raw, key); ok {
				return core.Some(s)
			}
		}
	}
	return core.None[string]()
}

func stringValue(raw core.RawMetadata, key string) (string, bool) {
	v, ok := raw[key]
	if !ok {
		return "", false
	}
	s, ok := v.AsString()
	if !ok {
		return "", false
	}
	s = clean(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// clean strips padding NULs and surrounding whitespace.
func clean(s string) string {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
