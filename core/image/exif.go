package image

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/ankit-chaubey/media-metadata-highlights/core"
)

const exifNamespace = "EXIF:"

func init() {
	// Vendor maker notes decode into named fields instead of opaque blobs.
	exif.RegisterParsers(mknote.All...)
}

// readExif decodes the EXIF block of data with goexif, falling back to a
// byte search when goexif cannot locate or parse it. Missing EXIF is not
// an error.
func readExif(data []byte, raw core.RawMetadata) bool {
	if decodeExif(data, raw) {
		return true
	}
	return searchExif(data, raw)
}

func decodeExif(data []byte, raw core.RawMetadata) bool {
	data = bytes.TrimPrefix(data, []byte("Exif\x00\x00"))

	x, err := exif.Decode(bytes.NewReader(data))
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return false
	}

	_ = x.Walk(exifWalker{raw: raw})
	return true
}

type exifWalker struct {
	raw core.RawMetadata
}

func (w exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if v, ok := tagValue(tag); ok {
		w.raw[exifNamespace+string(name)] = v
	}
	return nil
}

// tagValue converts a TIFF tag into a RawValue. Tags with a count of one
// become scalars, everything else a list.
func tagValue(tag *tiff.Tag) (core.RawValue, bool) {
	switch tag.Format() {
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return core.RawValue{}, false
		}
		return core.String(s), true
	case tiff.UndefVal, tiff.OtherVal:
		return core.Bytes(append([]byte(nil), tag.Val...)), true
	}

	n := int(tag.Count)
	vals := make([]core.RawValue, 0, n)
	for i := 0; i < n; i++ {
		var (
			v   core.RawValue
			err error
		)
		switch tag.Format() {
		case tiff.IntVal:
			var iv int64
			iv, err = tag.Int64(i)
			v = core.Int(iv)
		case tiff.RatVal:
			var num, den int64
			num, den, err = tag.Rat2(i)
			v = core.Rational(num, den)
		case tiff.FloatVal:
			var fv float64
			fv, err = tag.Float(i)
			v = core.Float(fv)
		default:
			return core.RawValue{}, false
		}
		if err != nil {
			return core.RawValue{}, false
		}
		vals = append(vals, v)
	}

	switch len(vals) {
	case 0:
		return core.RawValue{}, false
	case 1:
		return vals[0], true
	}
	return core.List(vals...), true
}
