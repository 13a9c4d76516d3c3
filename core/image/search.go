package image

import (
	exifv3 "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"

	"github.com/ankit-chaubey/media-metadata-highlights/core"
)

// searchExif scans data for a TIFF header and collects every IFD it can
// reach. It is used for containers goexif cannot walk, such as HEIC.
func searchExif(data []byte, raw core.RawMetadata) (found bool) {
	// go-exif reports some structural errors by panicking.
	defer func() {
		if recover() != nil {
			found = false
		}
	}()

	rawExif, err := exifv3.SearchAndExtractExif(data)
	if err != nil {
		return false
	}

	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return false
	}

	ti := exifv3.NewTagIndex()

	_, index, err := exifv3.Collect(im, ti, rawExif)
	if err != nil {
		return false
	}

	cb := func(ifd *exifv3.Ifd, ite *exifv3.IfdTagEntry) error {
		value, err := ite.Value()
		if err != nil {
			return nil
		}
		if v, ok := exifv3Value(value); ok {
			raw[exifNamespace+ite.TagName()] = v
		}
		return nil
	}

	if err := index.RootIfd.EnumerateTagsRecursively(cb); err != nil {
		return false
	}
	return true
}

func exifv3Value(value interface{}) (core.RawValue, bool) {
	var vals []core.RawValue
	switch v := value.(type) {
	case string:
		return core.String(v), true
	case []byte:
		return core.Bytes(append([]byte(nil), v...)), true
	case []uint16:
		for _, n := range v {
			vals = append(vals, core.Int(int64(n)))
		}
	case []uint32:
		for _, n := range v {
			vals = append(vals, core.Int(int64(n)))
		}
	case []int32:
		for _, n := range v {
			vals = append(vals, core.Int(int64(n)))
		}
	case []float32:
		for _, f := range v {
			vals = append(vals, core.Float(float64(f)))
		}
	case []float64:
		for _, f := range v {
			vals = append(vals, core.Float(f))
		}
	case []exifcommon.Rational:
		for _, r := range v {
			vals = append(vals, core.Rational(int64(r.Numerator), int64(r.Denominator)))
		}
	case []exifcommon.SignedRational:
		for _, r := range v {
			vals = append(vals, core.Rational(int64(r.Numerator), int64(r.Denominator)))
		}
	default:
		return core.RawValue{}, false
	}

	switch len(vals) {
	case 0:
		return core.RawValue{}, false
	case 1:
		return vals[0], true
	}
	return core.List(vals...), true
}
