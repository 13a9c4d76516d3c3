package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// recordWire is the persisted shape of a HighlightRecord, shared by the JSON
// and YAML sidecars. Absent fields are null.
type recordWire struct {
	FilePath      string      `json:"filePath" yaml:"filePath"`
	Format        string      `json:"format" yaml:"format"`
	Width         *int        `json:"width" yaml:"width"`
	Height        *int        `json:"height" yaml:"height"`
	FileSizeBytes int64       `json:"fileSizeBytes" yaml:"fileSizeBytes"`
	DeviceMake    *string     `json:"deviceMake" yaml:"deviceMake"`
	DeviceModel   *string     `json:"deviceModel" yaml:"deviceModel"`
	Author        *string     `json:"author" yaml:"author"`
	Software      *string     `json:"software" yaml:"software"`
	CapturedAt    *string     `json:"capturedAt" yaml:"capturedAt"`
	CapturedAtRaw *string     `json:"capturedAtRaw" yaml:"capturedAtRaw"`
	GPSLatitude   *float64    `json:"gpsLatitude" yaml:"gpsLatitude"`
	GPSLongitude  *float64    `json:"gpsLongitude" yaml:"gpsLongitude"`
	RawMetadata   RawMetadata `json:"rawMetadata,omitempty" yaml:"rawMetadata,omitempty"`
}

func (r *HighlightRecord) wire() recordWire {
	w := recordWire{
		FilePath:      r.FilePath,
		Format:        r.Format,
		Width:         r.Width.Ptr(),
		Height:        r.Height.Ptr(),
		FileSizeBytes: r.FileSizeBytes,
		DeviceMake:    r.DeviceMake.Ptr(),
		DeviceModel:   r.DeviceModel.Ptr(),
		Author:        r.Author.Ptr(),
		Software:      r.Software.Ptr(),
		GPSLatitude:   r.Latitude().Ptr(),
		GPSLongitude:  r.Longitude().Ptr(),
		RawMetadata:   r.RawMetadata,
	}
	if ts, ok := r.CapturedAt.Get(); ok {
		lit := ts.Literal
		w.CapturedAtRaw = &lit
		if iso, ok := ts.ISO(); ok {
			w.CapturedAt = &iso
		}
	}
	return w
}

func (r *HighlightRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire())
}

func (r *HighlightRecord) MarshalYAML() (interface{}, error) {
	return r.wire(), nil
}

func (r *HighlightRecord) UnmarshalJSON(data []byte) error {
	var w recordWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	if (w.GPSLatitude == nil) != (w.GPSLongitude == nil) {
		return fmt.Errorf("gpsLatitude and gpsLongitude must be set together: %w", ErrMalformedGPS)
	}

	out := HighlightRecord{
		FilePath: w.FilePath,
		Fields: Fields{
			Format:        w.Format,
			Width:         OptFromPtr(w.Width),
			Height:        OptFromPtr(w.Height),
			FileSizeBytes: w.FileSizeBytes,
			DeviceMake:    OptFromPtr(w.DeviceMake),
			DeviceModel:   OptFromPtr(w.DeviceModel),
			Author:        OptFromPtr(w.Author),
			Software:      OptFromPtr(w.Software),
		},
		RawMetadata: w.RawMetadata,
	}
	if w.GPSLatitude != nil {
		out.GPS = Some(Coordinates{Latitude: *w.GPSLatitude, Longitude: *w.GPSLongitude})
	}

	if w.CapturedAt != nil || w.CapturedAtRaw != nil {
		var ts Timestamp
		if w.CapturedAtRaw != nil {
			ts.Literal = *w.CapturedAtRaw
		}
		if w.CapturedAt != nil {
			t, zoned, err := parseISO(*w.CapturedAt)
			if err != nil {
				return fmt.Errorf("could not parse capturedAt %q: %w", *w.CapturedAt, ErrMalformedTimestamp)
			}
			ts.Time = Some(t)
			ts.Zoned = zoned
			if w.CapturedAtRaw == nil {
				ts.Literal = *w.CapturedAt
			}
		}
		out.CapturedAt = Some(ts)
	}

	*r = out
	return nil
}

// parseISO reads the capturedAt form written by Timestamp.ISO.
func parseISO(s string) (time.Time, bool, error) {
	if t, err := time.Parse(ISOLayout, s); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	return t, true, err
}
