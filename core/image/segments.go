package image

import (
	"bytes"
	"encoding/binary"
	"encoding/xml"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ankit-chaubey/media-metadata-highlights/core"
)

// extractJPEGSegment finds a JPEG APP segment by marker byte and optional prefix.
// Returns the segment data (after the prefix), or nil.
func extractJPEGSegment(r io.Reader, marker byte, prefix []byte) []byte {
	buf := make([]byte, 2)
	// Read SOI
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil
	}
	if buf[0] != 0xFF || buf[1] != 0xD8 {
		return nil
	}
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil
		}
		if buf[0] != 0xFF {
			return nil
		}
		segMarker := buf[1]
		lenBuf := make([]byte, 2)
		if _, err := io.ReadFull(r, lenBuf); err != nil {
			return nil
		}
		segLen := int(binary.BigEndian.Uint16(lenBuf)) - 2
		if segLen < 0 {
			return nil
		}
		data := make([]byte, segLen)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil
		}
		if segMarker == marker && bytes.HasPrefix(data, prefix) {
			return data[len(prefix):]
		}
		// Stop at SOS (start of scan)
		if segMarker == 0xDA {
			return nil
		}
	}
}

// ─── XMP ─────────────────────────────────────────────────────────────────────

const (
	xmpNamespace = "XMP:"
	rdfNS        = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

// containers are RDF/XMP wrapper elements that never name a property.
var containers = map[string]bool{
	"xmpmeta":     true,
	"RDF":         true,
	"Description": true,
	"Seq":         true,
	"Bag":         true,
	"Alt":         true,
	"li":          true,
}

// parseXMPInto records every XMP property by local name. Properties holding
// an rdf:Seq/Bag/Alt become lists.
func parseXMPInto(data []byte, raw core.RawMetadata) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	values := make(map[string][]string)
	var stack []string

	property := func() string {
		for i := len(stack) - 1; i >= 0; i-- {
			if !containers[stack[i]] {
				return stack[i]
			}
		}
		return ""
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			// Simple properties are often written as attributes of rdf:Description.
			for _, attr := range t.Attr {
				if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" || attr.Name.Space == rdfNS || attr.Name.Local == "lang" {
					continue
				}
				if v := strings.TrimSpace(attr.Value); v != "" {
					values[attr.Name.Local] = append(values[attr.Name.Local], v)
				}
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			val := strings.TrimSpace(string(t))
			if name := property(); val != "" && name != "" {
				values[name] = append(values[name], val)
			}
		}
	}

	for name, vals := range values {
		if len(vals) == 1 {
			raw[xmpNamespace+name] = core.String(vals[0])
			continue
		}
		items := make([]core.RawValue, len(vals))
		for i, v := range vals {
			items[i] = core.String(v)
		}
		raw[xmpNamespace+name] = core.List(items...)
	}
}

// ─── IPTC ─────────────────────────────────────────────────────────────────────

const iptcNamespace = "IPTC:"

// iptcFieldNames maps IIM record 2 dataset numbers to names.
var iptcFieldNames = map[byte]string{
	5:   "ObjectName",
	15:  "Category",
	20:  "SupplementalCategory",
	25:  "Keywords",
	40:  "SpecialInstructions",
	55:  "DateCreated",
	60:  "TimeCreated",
	62:  "DigitalCreationDate",
	63:  "DigitalCreationTime",
	80:  "By-line",
	85:  "By-lineTitle",
	90:  "City",
	95:  "Province-State",
	101: "Country",
	105: "Headline",
	110: "Credit",
	115: "Source",
	116: "CopyrightNotice",
	118: "Contact",
	120: "Caption-Abstract",
	122: "Writer-Editor",
}

func parseIPTCInto(data []byte, raw core.RawMetadata) {
	// Skip "8BIM" Photoshop resource blocks to find IPTC resource (0x0404)
	i := 0
	for i+8 < len(data) {
		if !bytes.Equal(data[i:i+4], []byte("8BIM")) {
			i++
			continue
		}
		resType := binary.BigEndian.Uint16(data[i+4 : i+6])
		nameLen := int(data[i+6])
		if nameLen%2 == 0 {
			nameLen++
		}
		i += 7 + nameLen
		if i+4 > len(data) {
			break
		}
		blockLen := int(binary.BigEndian.Uint32(data[i : i+4]))
		i += 4
		if resType == 0x0404 && blockLen >= 0 && i+blockLen <= len(data) {
			parseIPTCBlock(data[i:i+blockLen], raw)
		}
		i += blockLen
		if blockLen%2 != 0 {
			i++
		}
	}
}

// iptcText decodes a dataset as UTF-8, or as Latin-1 when it is not valid
// UTF-8.
func iptcText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return latin1(b)
}

func parseIPTCBlock(data []byte, raw core.RawMetadata) {
	i := 0
	for i+5 <= len(data) {
		if data[i] != 0x1C {
			i++
			continue
		}
		record := data[i+1]
		dataset := data[i+2]
		length := int(binary.BigEndian.Uint16(data[i+3 : i+5]))
		i += 5
		if i+length > len(data) {
			break
		}
		name, ok := iptcFieldNames[dataset]
		if record == 2 && ok {
			val := core.String(iptcText(data[i : i+length]))
			// Repeatable datasets such as Keywords accumulate into a list.
			if prev, seen := raw[iptcNamespace+name]; seen {
				if prev.Kind == core.KindList {
					val = core.List(append(prev.List, val)...)
				} else {
					val = core.List(prev, val)
				}
			}
			raw[iptcNamespace+name] = val
		}
		i += length
	}
}
