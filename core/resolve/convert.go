package resolve

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ankit-chaubey/media-metadata-highlights/core"
)

// ExifLayout is the EXIF DateTime format.
const ExifLayout = "2006:01:02 15:04:05"

// timestampLayouts are tried in order. A layout only matches when it renders
// the parsed time back to exactly the literal. "Z07:00" writes a zero offset
// as "Z", so "+00:00" literals need the "-07:00" variants.
var timestampLayouts = []string{
	ExifLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05.000-07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04-07:00",
	"20060102",
	"2006-01-02",
	"2006",
}

func firstTimestamp(raw core.RawMetadata, lists ...[]string) (core.Timestamp, string, bool) {
	for _, list := range lists {
		for _, key := range list {
			if lit, ok := stringValue(raw, key); ok {
				return ParseTimestamp(lit), key, true
			}
		}
	}
	return core.Timestamp{}, "", false
}

// ParseTimestamp keeps literal and adds the structured time when one of the
// known layouts round-trips it.
func ParseTimestamp(literal string) core.Timestamp {
	ts := core.Timestamp{Literal: literal}
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, literal)
		if err != nil || t.Format(layout) != literal {
			continue
		}
		ts.Time = core.Some(t)
		ts.Zoned = strings.Contains(layout, "07:00")
		break
	}
	return ts
}

// DMSToDecimal converts a degrees/minutes/seconds triple and hemisphere
// reference into signed decimal degrees rounded to six places.
func DMSToDecimal(deg, mins, secs float64, ref string) float64 {
	decimal := deg + mins/60 + secs/3600
	if ref == "S" || ref == "W" {
		decimal = -decimal
	}
	return math.Round(decimal*1e6) / 1e6
}

func resolveGPS(raw core.RawMetadata) (core.Opt[core.Coordinates], error) {
	_, hasLat := raw[latTag]
	_, hasLon := raw[lonTag]
	if !hasLat && !hasLon {
		return core.None[core.Coordinates](), nil
	}

	lat, err := axis(raw, latTag, latRefTag, "NS", 90)
	if err != nil {
		return core.None[core.Coordinates](), err
	}
	lon, err := axis(raw, lonTag, lonRefTag, "EW", 180)
	if err != nil {
		return core.None[core.Coordinates](), err
	}

	return core.Some(core.Coordinates{Latitude: lat, Longitude: lon}), nil
}

func axis(raw core.RawMetadata, valueTag, refTag, refs string, limit float64) (float64, error) {
	v, ok := raw[valueTag]
	if !ok {
		return 0, fmt.Errorf("%s missing: %w", valueTag, core.ErrMalformedGPS)
	}
	parts, ok := v.AsList()
	if !ok || len(parts) != 3 {
		return 0, fmt.Errorf("%s is not a degrees/minutes/seconds triple: %w", valueTag, core.ErrMalformedGPS)
	}

	var dms [3]float64
	for i, p := range parts {
		f, ok := p.AsFloat()
		if !ok || f < 0 {
			return 0, fmt.Errorf("%s component %d is not a number: %w", valueTag, i, core.ErrMalformedGPS)
		}
		dms[i] = f
	}

	ref, ok := stringValue(raw, refTag)
	if !ok {
		return 0, fmt.Errorf("%s missing: %w", refTag, core.ErrMalformedGPS)
	}
	ref = strings.ToUpper(ref[:1])
	if !strings.Contains(refs, ref) {
		return 0, fmt.Errorf("%s has unknown hemisphere %q: %w", refTag, ref, core.ErrMalformedGPS)
	}

	decimal := DMSToDecimal(dms[0], dms[1], dms[2], ref)
	if math.Abs(decimal) > limit {
		return 0, fmt.Errorf("%s out of range: %w", valueTag, core.ErrMalformedGPS)
	}
	return decimal, nil
}
