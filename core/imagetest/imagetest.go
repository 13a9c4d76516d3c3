// Package imagetest builds small, valid image files with embedded metadata
// for tests.
package imagetest

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TIFF tag IDs used by the fixtures.
const (
	TagMake             uint16 = 0x010F
	TagModel            uint16 = 0x0110
	TagSoftware         uint16 = 0x0131
	TagDateTime         uint16 = 0x0132
	TagArtist           uint16 = 0x013B
	TagCopyright        uint16 = 0x8298
	TagDateTimeOriginal uint16 = 0x9003

	TagGPSLatitudeRef  uint16 = 0x0001
	TagGPSLatitude     uint16 = 0x0002
	TagGPSLongitudeRef uint16 = 0x0003
	TagGPSLongitude    uint16 = 0x0004

	tagExifIFD uint16 = 0x8769
	tagGPSIFD  uint16 = 0x8825
)

const (
	typeASCII    uint16 = 2
	typeLong     uint16 = 4
	typeRational uint16 = 5
)

// Entry is one IFD entry with its value already encoded big-endian.
type Entry struct {
	Tag   uint16
	Type  uint16
	Count uint32
	Data  []byte
}

// ASCII returns a NUL-terminated ASCII entry.
func ASCII(tag uint16, s string) Entry {
	data := append([]byte(s), 0)
	return Entry{Tag: tag, Type: typeASCII, Count: uint32(len(data)), Data: data}
}

// Rationals returns a RATIONAL entry from numerator/denominator pairs.
func Rationals(tag uint16, pairs ...[2]uint32) Entry {
	data := make([]byte, 0, 8*len(pairs))
	for _, p := range pairs {
		data = binary.BigEndian.AppendUint32(data, p[0])
		data = binary.BigEndian.AppendUint32(data, p[1])
	}
	return Entry{Tag: tag, Type: typeRational, Count: uint32(len(pairs)), Data: data}
}

// Long returns a single LONG entry.
func Long(tag uint16, v uint32) Entry {
	return Entry{Tag: tag, Type: typeLong, Count: 1, Data: binary.BigEndian.AppendUint32(nil, v)}
}

// TIFF describes a big-endian EXIF block. Exif and GPS become sub-IFDs
// linked from IFD0 when non-empty.
type TIFF struct {
	IFD0 []Entry
	Exif []Entry
	GPS  []Entry
}

// Bytes encodes t as a TIFF stream starting with the "MM" header.
func (t TIFF) Bytes() []byte {
	ifd0 := append([]Entry(nil), t.IFD0...)
	if len(t.Exif) > 0 {
		ifd0 = append(ifd0, Long(tagExifIFD, 0))
	}
	if len(t.GPS) > 0 {
		ifd0 = append(ifd0, Long(tagGPSIFD, 0))
	}

	const headerSize = 8
	exifOff := uint32(headerSize + ifdSize(ifd0))
	gpsOff := exifOff + uint32(ifdSize(t.Exif))

	for i := range ifd0 {
		switch ifd0[i].Tag {
		case tagExifIFD:
			ifd0[i] = Long(tagExifIFD, exifOff)
		case tagGPSIFD:
			ifd0[i] = Long(tagGPSIFD, gpsOff)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("MM\x00\x2A")
	_ = binary.Write(&buf, binary.BigEndian, uint32(headerSize))
	writeIFD(&buf, ifd0)
	if len(t.Exif) > 0 {
		writeIFD(&buf, t.Exif)
	}
	if len(t.GPS) > 0 {
		writeIFD(&buf, t.GPS)
	}
	return buf.Bytes()
}

func ifdSize(entries []Entry) int {
	if len(entries) == 0 {
		return 0
	}
	n := 2 + 12*len(entries) + 4
	for _, e := range entries {
		if len(e.Data) > 4 {
			n += padded(len(e.Data))
		}
	}
	return n
}

func padded(n int) int { return n + n%2 }

// writeIFD appends an IFD whose out-of-line values follow it directly.
func writeIFD(buf *bytes.Buffer, entries []Entry) {
	start := buf.Len()
	dataOff := start + 2 + 12*len(entries) + 4

	var data bytes.Buffer
	_ = binary.Write(buf, binary.BigEndian, uint16(len(entries)))
	for _, e := range entries {
		_ = binary.Write(buf, binary.BigEndian, e.Tag)
		_ = binary.Write(buf, binary.BigEndian, e.Type)
		_ = binary.Write(buf, binary.BigEndian, e.Count)
		if len(e.Data) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.Data)
			buf.Write(inline)
			continue
		}
		_ = binary.Write(buf, binary.BigEndian, uint32(dataOff+data.Len()))
		data.Write(e.Data)
		if len(e.Data)%2 == 1 {
			data.WriteByte(0)
		}
	}
	_ = binary.Write(buf, binary.BigEndian, uint32(0))
	buf.Write(data.Bytes())
}

// PhoneTIFF is the EXIF block of a typical phone photo edited on a
// desktop, without GPS.
func PhoneTIFF() TIFF {
	return TIFF{
		IFD0: []Entry{
			ASCII(TagMake, "Apple"),
			ASCII(TagModel, "iPhone 13 Pro"),
			ASCII(TagSoftware, "Adobe Lightroom"),
			ASCII(TagArtist, "John Doe"),
		},
		Exif: []Entry{
			ASCII(TagDateTimeOriginal, "2023:09:17 15:30:22"),
		},
	}
}

// LondonGPS is 51°30'15.12"N 0°7'39.36"W.
func LondonGPS() []Entry {
	return []Entry{
		ASCII(TagGPSLatitudeRef, "N"),
		Rationals(TagGPSLatitude, [2]uint32{51, 1}, [2]uint32{30, 1}, [2]uint32{1512, 100}),
		ASCII(TagGPSLongitudeRef, "W"),
		Rationals(TagGPSLongitude, [2]uint32{0, 1}, [2]uint32{7, 1}, [2]uint32{3936, 100}),
	}
}

func canvas(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

// Segment is a JPEG APPn segment inserted after SOI.
type Segment struct {
	Marker  byte
	Payload []byte
}

// ExifSegment wraps a TIFF stream in an APP1 "Exif" segment.
func ExifSegment(t TIFF) Segment {
	return Segment{Marker: 0xE1, Payload: append([]byte("Exif\x00\x00"), t.Bytes()...)}
}

// XMPSegment wraps an XMP packet in an APP1 segment.
func XMPSegment(packet string) Segment {
	return Segment{Marker: 0xE1, Payload: append([]byte("http://ns.adobe.com/xap/1.0/\x00"), packet...)}
}

// JPEG encodes a w×h image with segs inserted after SOI.
func JPEG(tb testing.TB, w, h int, segs ...Segment) []byte {
	tb.Helper()

	var enc bytes.Buffer
	require.NoError(tb, jpeg.Encode(&enc, canvas(w, h), &jpeg.Options{Quality: 80}))
	body := enc.Bytes()
	require.True(tb, bytes.HasPrefix(body, []byte{0xFF, 0xD8}))

	var out bytes.Buffer
	out.Write([]byte{0xFF, 0xD8})
	for _, s := range segs {
		require.Less(tb, len(s.Payload)+2, 0x10000, "segment too large")
		out.Write([]byte{0xFF, s.Marker})
		_ = binary.Write(&out, binary.BigEndian, uint16(len(s.Payload)+2))
		out.Write(s.Payload)
	}
	out.Write(body[2:])
	return out.Bytes()
}

// Chunk is a PNG ancillary chunk inserted after IHDR.
type Chunk struct {
	Type string
	Data []byte
}

// TextChunk is a tEXt chunk.
func TextChunk(keyword, text string) Chunk {
	return Chunk{Type: "tEXt", Data: []byte(keyword + "\x00" + text)}
}

// ExifChunk is an eXIf chunk holding a raw TIFF stream.
func ExifChunk(t TIFF) Chunk {
	return Chunk{Type: "eXIf", Data: t.Bytes()}
}

// PNG encodes a w×h image with chunks inserted after IHDR.
func PNG(tb testing.TB, w, h int, chunks ...Chunk) []byte {
	tb.Helper()

	var enc bytes.Buffer
	require.NoError(tb, png.Encode(&enc, canvas(w, h)))
	body := enc.Bytes()

	// 8-byte signature, then IHDR: length, type, 13 bytes of data, CRC.
	const ihdrEnd = 8 + 4 + 4 + 13 + 4
	require.Greater(tb, len(body), ihdrEnd)

	var out bytes.Buffer
	out.Write(body[:ihdrEnd])
	for _, c := range chunks {
		require.Len(tb, c.Type, 4)
		_ = binary.Write(&out, binary.BigEndian, uint32(len(c.Data)))
		out.WriteString(c.Type)
		out.Write(c.Data)
		crc := crc32.NewIEEE()
		crc.Write([]byte(c.Type))
		crc.Write(c.Data)
		_ = binary.Write(&out, binary.BigEndian, crc.Sum32())
	}
	out.Write(body[ihdrEnd:])
	return out.Bytes()
}

// WriteFile writes data to name under dir and returns the path.
func WriteFile(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	require.NoError(tb, os.WriteFile(path, data, 0o644))
	return path
}
