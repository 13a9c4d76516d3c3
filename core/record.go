package core

import (
	"strings"
	"time"
)

// ISOLayout renders timestamps that carry no zone information.
const ISOLayout = "2006-01-02T15:04:05"

// Timestamp is a capture time as written by the device. Time is present
// only when Literal parsed, and then Literal is its exact rendering. Zoned
// is set when Literal carried a UTC offset.
type Timestamp struct {
	Literal string
	Time    Opt[time.Time]
	Zoned   bool
}

// ISO returns the machine-parseable form of the timestamp.
func (t Timestamp) ISO() (string, bool) {
	tm, ok := t.Time.Get()
	if !ok {
		return "", false
	}
	if !t.Zoned {
		return tm.Format(ISOLayout), true
	}
	return tm.Format(time.RFC3339), true
}

// Coordinates are signed decimal degrees. They only exist as a pair.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Fields are the resolved highlight fields of one file.
type Fields struct {
	Format        string
	Width         Opt[int]
	Height        Opt[int]
	FileSizeBytes int64
	DeviceMake    Opt[string]
	DeviceModel   Opt[string]
	Author        Opt[string]
	Software      Opt[string]
	CapturedAt    Opt[Timestamp]
	GPS           Opt[Coordinates]
}

// HighlightRecord is the normalized result for one file. It is not
// modified after Build returns it.
type HighlightRecord struct {
	FilePath string
	Fields
	RawMetadata RawMetadata // nil unless requested
}

// Build assembles the record for path. raw is copied onto the record only
// when includeRaw is set.
func Build(path string, f Fields, raw RawMetadata, includeRaw bool) *HighlightRecord {
	rec := &HighlightRecord{
		FilePath: path,
		Fields:   f,
	}
	if includeRaw {
		rec.RawMetadata = raw.Clone()
		if rec.RawMetadata == nil {
			rec.RawMetadata = RawMetadata{}
		}
	}
	return rec
}

func (r *HighlightRecord) Latitude() Opt[float64] {
	c, ok := r.GPS.Get()
	if !ok {
		return None[float64]()
	}
	return Some(c.Latitude)
}

func (r *HighlightRecord) Longitude() Opt[float64] {
	c, ok := r.GPS.Get()
	if !ok {
		return None[float64]()
	}
	return Some(c.Longitude)
}

// Device joins make and model, skipping whichever is absent.
func (r *HighlightRecord) Device() Opt[string] {
	var parts []string
	if v, ok := r.DeviceMake.Get(); ok {
		parts = append(parts, v)
	}
	if v, ok := r.DeviceModel.Get(); ok {
		parts = append(parts, v)
	}
	if len(parts) == 0 {
		return None[string]()
	}
	return Some(strings.Join(parts, " "))
}

// Notes lists a human-readable line for every absent highlight field.
func (r *HighlightRecord) Notes() []string {
	var notes []string
	if !r.GPS.OK() {
		notes = append(notes, "No GPS data found (or stripped by app).")
	}
	if !r.Author.OK() {
		notes = append(notes, "No author/artist metadata found.")
	}
	if !r.Device().OK() {
		notes = append(notes, "No device/make/model info found.")
	}
	if !r.Software.OK() {
		notes = append(notes, "No software/editor info found.")
	}
	if ts, ok := r.CapturedAt.Get(); !ok {
		notes = append(notes, "No DateTimeOriginal found.")
	} else if !ts.Time.OK() {
		notes = append(notes, "Capture timestamp "+ts.Literal+" could not be parsed.")
	}
	if !r.Width.OK() || !r.Height.OK() {
		notes = append(notes, "Dimensions could not be determined.")
	}
	return notes
}
