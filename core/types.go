// Package core defines the shared types, interfaces, and format registry
// for Media Metadata Highlights.
package core

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags the dynamic type held by a RawValue.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindRational
	KindString
	KindBytes
	KindList
)

var kindNames = map[Kind]string{
	KindInt:      "int",
	KindFloat:    "float",
	KindRational: "rational",
	KindString:   "string",
	KindBytes:    "bytes",
	KindList:     "list",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "invalid"
}

func kindFromString(s string) Kind {
	for k, n := range kindNames {
		if n == s {
			return k
		}
	}
	return KindInvalid
}

// RawValue is a single decoded tag value as handed over by a metadata
// library. Exactly one of the payload fields is meaningful, selected by Kind.
type RawValue struct {
	Kind  Kind
	Int   int64
	Float float64
	Num   int64 // rational numerator
	Den   int64 // rational denominator
	Str   string
	Bytes []byte
	List  []RawValue
}

func Int(v int64) RawValue { return RawValue{Kind: KindInt, Int: v} }
func Float(v float64) RawValue { return RawValue{Kind: KindFloat, Float: v} }
func Rational(n, d int64) RawValue { return RawValue{Kind: KindRational, Num: n, Den: d} }
func String(v string) RawValue { return RawValue{Kind: KindString, Str: v} }
func Bytes(v []byte) RawValue { return RawValue{Kind: KindBytes, Bytes: v} }
func List(v ...RawValue) RawValue { return RawValue{Kind: KindList, List: v} }

// AsString returns the textual content of v. Byte blobs count as text only
// when they are printable UTF-8; single-element lists are unwrapped and
// multi-element string lists are joined with "; ".
func (v RawValue) AsString() (string, bool) {
	switch v.Kind {
	case KindString:
		return v.Str, true
	case KindBytes:
		s := string(v.Bytes)
		if !isPrintable(s) {
			return "", false
		}
		return s, true
	case KindList:
		parts := make([]string, 0, len(v.List))
		for _, item := range v.List {
			s, ok := item.AsString()
			if !ok {
				return "", false
			}
			parts = append(parts, s)
		}
		if len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, "; "), true
	}
	return "", false
}

// AsFloat returns the numeric value of v. Rationals with a zero
// denominator, NaN and infinities are not numbers.
func (v RawValue) AsFloat() (float64, bool) {
	var f float64
	switch v.Kind {
	case KindInt:
		f = float64(v.Int)
	case KindFloat:
		f = v.Float
	case KindRational:
		if v.Den == 0 {
			return 0, false
		}
		f = float64(v.Num) / float64(v.Den)
	case KindString:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case KindList:
		if len(v.List) != 1 {
			return 0, false
		}
		return v.List[0].AsFloat()
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// AsList returns the elements of a list value.
func (v RawValue) AsList() ([]RawValue, bool) {
	if v.Kind != KindList {
		return nil, false
	}
	return v.List, true
}

func (v RawValue) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindRational:
		return fmt.Sprintf("%d/%d", v.Num, v.Den)
	case KindString:
		return v.Str
	case KindBytes:
		if s, ok := v.AsString(); ok {
			return s
		}
		return fmt.Sprintf("<%d bytes>", len(v.Bytes))
	case KindList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return ""
}

type rawValueWire struct {
	Kind  string `json:"kind" yaml:"kind"`
	Value any    `json:"value" yaml:"value"`
}

func (v RawValue) wire() rawValueWire {
	w := rawValueWire{Kind: v.Kind.String()}
	switch v.Kind {
	case KindInt:
		w.Value = v.Int
	case KindFloat:
		w.Value = v.Float
	case KindRational:
		w.Value = fmt.Sprintf("%d/%d", v.Num, v.Den)
	case KindString:
		w.Value = v.Str
	case KindBytes:
		w.Value = base64.StdEncoding.EncodeToString(v.Bytes)
	case KindList:
		items := make([]rawValueWire, len(v.List))
		for i, item := range v.List {
			items[i] = item.wire()
		}
		w.Value = items
	}
	return w
}

func (v RawValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.wire())
}

func (v RawValue) MarshalYAML() (interface{}, error) {
	return v.wire(), nil
}

func (v *RawValue) UnmarshalJSON(data []byte) error {
	var w struct {
		Kind  string          `json:"kind"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	out := RawValue{Kind: kindFromString(w.Kind)}
	var err error
	switch out.Kind {
	case KindInt:
		err = json.Unmarshal(w.Value, &out.Int)
	case KindFloat:
		err = json.Unmarshal(w.Value, &out.Float)
	case KindRational:
		var s string
		if err = json.Unmarshal(w.Value, &s); err == nil {
			_, err = fmt.Sscanf(s, "%d/%d", &out.Num, &out.Den)
		}
	case KindString:
		err = json.Unmarshal(w.Value, &out.Str)
	case KindBytes:
		var s string
		if err = json.Unmarshal(w.Value, &s); err == nil {
			out.Bytes, err = base64.StdEncoding.DecodeString(s)
		}
	case KindList:
		err = json.Unmarshal(w.Value, &out.List)
	default:
		return fmt.Errorf("unknown raw value kind %q", w.Kind)
	}
	if err != nil {
		return fmt.Errorf("could not decode %s value: %w", w.Kind, err)
	}

	*v = out
	return nil
}

// RawMetadata maps namespaced tag identifiers ("EXIF:Make", "IPTC:By-line",
// "XMP:creator", "PNG:Author", "ID3:TSSE", "TAG:Artist") to their values.
type RawMetadata map[string]RawValue

// Clone returns a copy that shares no maps with m.
func (m RawMetadata) Clone() RawMetadata {
	if m == nil {
		return nil
	}
	out := make(RawMetadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// FileProps are the properties read from the file itself rather than from
// its tags. When tags disagree with these, these win.
type FileProps struct {
	Format    string // "JPEG", "PNG", ... or "UNKNOWN"
	Width     Opt[int]
	Height    Opt[int]
	SizeBytes int64
}

// Metadata holds everything a Handler extracted from a single file.
type Metadata struct {
	FilePath string
	Props    FileProps
	Raw      RawMetadata
}

// FormatInfo describes what a format handler supports.
type FormatInfo struct {
	Name       string   // "JPEG"
	Extensions []string // [".jpg", ".jpeg"]
	MediaType  string   // "image" | "audio"
	MIMETypes  []string
	Notes      string // Any caveats or notes
}

// Handler is the interface every format must implement.
type Handler interface {
	// View reads the raw tags and file properties of path.
	View(path string) (*Metadata, error)
	// Info returns format capabilities.
	Info() FormatInfo
}

func isPrintable(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r == 0xFFFD {
			return false
		}
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' && r != 0 {
			return false
		}
	}
	return true
}
