package image

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankit-chaubey/media-metadata-highlights/core"
	"github.com/ankit-chaubey/media-metadata-highlights/core/imagetest"
)

func TestViewJPEGWithExif(t *testing.T) {
	t.Parallel()

	tiff := imagetest.PhoneTIFF()
	tiff.GPS = imagetest.LondonGPS()
	path := imagetest.WriteFile(t, t.TempDir(), "photo.jpg",
		imagetest.JPEG(t, 64, 48, imagetest.ExifSegment(tiff)))

	m, err := New(core.FmtJPEG).View(path)
	require.NoError(t, err)

	assert.Equal(t, path, m.FilePath)
	assert.Equal(t, "JPEG", m.Props.Format)
	assert.Equal(t, core.Some(64), m.Props.Width)
	assert.Equal(t, core.Some(48), m.Props.Height)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), m.Props.SizeBytes)

	for key, want := range map[string]string{
		"EXIF:Make":             "Apple",
		"EXIF:Model":            "iPhone 13 Pro",
		"EXIF:Software":         "Adobe Lightroom",
		"EXIF:Artist":           "John Doe",
		"EXIF:DateTimeOriginal": "2023:09:17 15:30:22",
		"EXIF:GPSLatitudeRef":   "N",
	} {
		got, ok := m.Raw[key].AsString()
		require.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}

	lat, ok := m.Raw["EXIF:GPSLatitude"].AsList()
	require.True(t, ok)
	require.Len(t, lat, 3)
	assert.Equal(t, core.Rational(1512, 100), lat[2])
}

func TestViewJPEGWithoutMetadata(t *testing.T) {
	t.Parallel()

	path := imagetest.WriteFile(t, t.TempDir(), "plain.jpg", imagetest.JPEG(t, 16, 16))

	m, err := New(core.FmtJPEG).View(path)
	require.NoError(t, err)
	assert.Empty(t, m.Raw)
	assert.Equal(t, core.Some(16), m.Props.Width)
}

func TestViewJPEGWithXMP(t *testing.T) {
	t.Parallel()

	packet := `<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description xmlns:xmp="http://ns.adobe.com/xap/1.0/" xmlns:dc="http://purl.org/dc/elements/1.1/"
     xmp:CreatorTool="GIMP 2.10" xmp:CreateDate="2022-05-01T10:00:00">
   <dc:creator><rdf:Seq><rdf:li>Ada</rdf:li><rdf:li>Grace</rdf:li></rdf:Seq></dc:creator>
   <dc:rights><rdf:Alt><rdf:li xml:lang="x-default">CC-BY</rdf:li></rdf:Alt></dc:rights>
  </rdf:Description>
 </rdf:RDF>
</x:xmpmeta>`
	path := imagetest.WriteFile(t, t.TempDir(), "xmp.jpg",
		imagetest.JPEG(t, 8, 8, imagetest.XMPSegment(packet)))

	m, err := New(core.FmtJPEG).View(path)
	require.NoError(t, err)

	assert.Equal(t, core.String("GIMP 2.10"), m.Raw["XMP:CreatorTool"])
	assert.Equal(t, core.String("2022-05-01T10:00:00"), m.Raw["XMP:CreateDate"])
	assert.Equal(t, core.List(core.String("Ada"), core.String("Grace")), m.Raw["XMP:creator"])
	assert.Equal(t, core.String("CC-BY"), m.Raw["XMP:rights"])
	_, hasLang := m.Raw["XMP:lang"]
	assert.False(t, hasLang)
}

func TestViewPNGTextAndExif(t *testing.T) {
	t.Parallel()

	tiff := imagetest.TIFF{IFD0: []imagetest.Entry{imagetest.ASCII(imagetest.TagMake, "Canon")}}
	path := imagetest.WriteFile(t, t.TempDir(), "shot.png", imagetest.PNG(t, 20, 10,
		imagetest.TextChunk("Author", "Jane Roe"),
		imagetest.TextChunk("Software", "Krita"),
		imagetest.ExifChunk(tiff),
		imagetest.Chunk{Type: "tIME", Data: []byte{0x07, 0xE7, 9, 17, 15, 30, 22}},
	))

	m, err := New(core.FmtPNG).View(path)
	require.NoError(t, err)

	assert.Equal(t, "PNG", m.Props.Format)
	assert.Equal(t, core.Some(20), m.Props.Width)
	assert.Equal(t, core.Some(10), m.Props.Height)
	assert.Equal(t, core.String("Jane Roe"), m.Raw["PNG:Author"])
	assert.Equal(t, core.String("Krita"), m.Raw["PNG:Software"])
	assert.Equal(t, core.String("2023-09-17 15:30:22"), m.Raw["PNG:tIME"])

	cameraMake, ok := m.Raw["EXIF:Make"].AsString()
	require.True(t, ok)
	assert.Equal(t, "Canon", cameraMake)
}

func TestParseITXt(t *testing.T) {
	t.Parallel()

	plain := []byte("Title\x00\x00\x00en\x00Titel\x00Sunset")
	key, val, ok := parseITXt(plain)
	require.True(t, ok)
	assert.Equal(t, "Title", key)
	assert.Equal(t, "Sunset", val)

	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	_, _ = zw.Write([]byte("Über"))
	require.NoError(t, zw.Close())

	compressed := append([]byte("Author\x00\x01\x00\x00\x00"), z.Bytes()...)
	key, val, ok = parseITXt(compressed)
	require.True(t, ok)
	assert.Equal(t, "Author", key)
	assert.Equal(t, "Über", val)

	_, _, ok = parseITXt([]byte("NoTerminator"))
	assert.False(t, ok)
}

func TestParseIPTC(t *testing.T) {
	t.Parallel()

	dataset := func(num byte, val string) []byte {
		b := []byte{0x1C, 2, num}
		b = binary.BigEndian.AppendUint16(b, uint16(len(val)))
		return append(b, val...)
	}
	var block []byte
	block = append(block, dataset(80, "Staff Photographer")...)
	block = append(block, dataset(116, "(c) Agency")...)
	block = append(block, dataset(25, "beach")...)
	block = append(block, dataset(25, "sunset")...)
	block = append(block, dataset(55, "20230917")...)
	block = append(block, dataset(90, "M\xfcnchen")...)
	block = append(block, dataset(101, "Espa\xc3\xb1a")...)

	res := []byte("8BIM")
	res = binary.BigEndian.AppendUint16(res, 0x0404)
	res = append(res, 0, 0) // empty pascal name, padded
	res = binary.BigEndian.AppendUint32(res, uint32(len(block)))
	res = append(res, block...)

	raw := core.RawMetadata{}
	parseIPTCInto(res, raw)

	assert.Equal(t, core.String("Staff Photographer"), raw["IPTC:By-line"])
	assert.Equal(t, core.String("(c) Agency"), raw["IPTC:CopyrightNotice"])
	assert.Equal(t, core.String("20230917"), raw["IPTC:DateCreated"])
	assert.Equal(t, core.List(core.String("beach"), core.String("sunset")), raw["IPTC:Keywords"])
	assert.Equal(t, core.String("München"), raw["IPTC:City"])
	assert.Equal(t, core.String("España"), raw["IPTC:Country"])
}

func TestReadPNGChunksRejectsOversizedLength(t *testing.T) {
	t.Parallel()

	data := []byte("\x89PNG\r\n\x1a\n")
	data = binary.BigEndian.AppendUint32(data, 0xFFFFFFF0)
	data = append(data, "tEXtAuthor\x00Jane"...)

	chunks, err := readPNGChunks(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Empty(t, chunks)

	raw := core.RawMetadata{}
	viewPNG(data, raw)
	assert.Empty(t, raw)
}

func TestViewCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.jpg")
	require.NoError(t, os.WriteFile(path, []byte("this is not an image"), 0o644))

	_, err := New(core.FmtJPEG).View(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrFileUnreadable)
}

func TestViewMissingFile(t *testing.T) {
	t.Parallel()

	_, err := New(core.FmtPNG).View(filepath.Join(t.TempDir(), "nope.png"))
	assert.ErrorIs(t, err, core.ErrFileUnreadable)
}

func TestViewHEICWithoutDecoder(t *testing.T) {
	t.Parallel()

	path := imagetest.WriteFile(t, t.TempDir(), "photo.heic",
		append([]byte("\x00\x00\x00\x18ftypheic\x00\x00\x00\x00mif1heic"), make([]byte, 64)...))

	m, err := New(core.FmtHEIC).View(path)
	require.NoError(t, err)
	assert.Equal(t, "HEIC", m.Props.Format)
	assert.False(t, m.Props.Width.OK())
	assert.Empty(t, m.Raw)
}
