package image

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/ankit-chaubey/media-metadata-highlights/core"
)

const pngNamespace = "PNG:"

const xmpKeyword = "XML:com.adobe.xmp"

// maxTextChunk bounds how much a compressed text chunk may inflate to.
const maxTextChunk = 1 << 20

type pngChunk struct {
	typ  string
	data []byte
}

func viewPNG(data []byte, raw core.RawMetadata) {
	chunks, err := readPNGChunks(bytes.NewReader(data))
	if err != nil {
		return
	}

	addText := func(key, val string) {
		if key == xmpKeyword {
			parseXMPInto([]byte(val), raw)
			return
		}
		raw[pngNamespace+key] = core.String(val)
	}

	for _, c := range chunks {
		switch c.typ {
		case "tEXt":
			// Format: keyword\0text, Latin-1
			key, rest, ok := bytes.Cut(c.data, []byte{0})
			if ok && len(key) > 0 {
				addText(string(key), latin1(rest))
			}
		case "zTXt":
			// Format: keyword\0method compressed-text
			key, rest, ok := bytes.Cut(c.data, []byte{0})
			if !ok || len(key) == 0 || len(rest) < 1 {
				continue
			}
			if text, err := inflate(rest[1:]); err == nil {
				addText(string(key), latin1(text))
			}
		case "iTXt":
			if key, val, ok := parseITXt(c.data); ok {
				addText(key, val)
			}
		case "eXIf":
			decodeExif(c.data, raw)
		case "tIME":
			if len(c.data) == 7 {
				year := binary.BigEndian.Uint16(c.data[0:2])
				raw[pngNamespace+"tIME"] = core.String(fmt.Sprintf(
					"%04d-%02d-%02d %02d:%02d:%02d",
					year, c.data[2], c.data[3], c.data[4], c.data[5], c.data[6],
				))
			}
		}
	}
}

// parseITXt splits keyword\0 flag method language\0 translated\0 text.
func parseITXt(data []byte) (string, string, bool) {
	key, rest, ok := bytes.Cut(data, []byte{0})
	if !ok || len(key) == 0 || len(rest) < 2 {
		return "", "", false
	}
	compressed := rest[0] == 1
	rest = rest[2:]

	// language tag, then translated keyword
	for i := 0; i < 2; i++ {
		_, rest, ok = bytes.Cut(rest, []byte{0})
		if !ok {
			return "", "", false
		}
	}

	if compressed {
		text, err := inflate(rest)
		if err != nil {
			return "", "", false
		}
		rest = text
	}
	return string(key), string(rest), true
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(io.LimitReader(zr, maxTextChunk))
}

func latin1(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

// readPNGChunks collects the non-pixel chunks of a PNG held in memory. A
// chunk whose declared length runs past the end of the data ends the walk.
func readPNGChunks(r *bytes.Reader) ([]pngChunk, error) {
	sig := make([]byte, 8)
	if _, err := io.ReadFull(r, sig); err != nil {
		return nil, err
	}
	expected := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	if !bytes.Equal(sig, expected) {
		return nil, fmt.Errorf("not a valid PNG")
	}

	var chunks []pngChunk
	hdr := make([]byte, 8)
	for {
		if _, err := io.ReadFull(r, hdr); err != nil {
			break
		}
		length := binary.BigEndian.Uint32(hdr[0:4])
		typ := string(hdr[4:8])
		if int64(length)+4 > int64(r.Len()) {
			break
		}
		if typ == "IDAT" {
			// Pixel data is never metadata; skip it without buffering.
			if _, err := io.CopyN(io.Discard, r, int64(length)+4); err != nil {
				break
			}
			continue
		}
		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			break
		}
		crcBuf := make([]byte, 4)
		if _, err := io.ReadFull(r, crcBuf); err != nil {
			break
		}

		chunks = append(chunks, pngChunk{typ: typ, data: data})
		if typ == "IEND" {
			break
		}
	}
	return chunks, nil
}

// ─── WebP ─────────────────────────────────────────────────────────────────────

func viewWebP(data []byte, raw core.RawMetadata) {
	if len(data) < 12 {
		return
	}

	// Parse RIFF chunks
	offset := 12 // skip RIFF header
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		offset += 8
		if chunkSize < 0 || offset+chunkSize > len(data) {
			break
		}
		chunkData := data[offset : offset+chunkSize]

		switch chunkID {
		case "EXIF":
			readExif(chunkData, raw)
		case "XMP ":
			parseXMPInto(chunkData, raw)
		}

		offset += chunkSize
		if chunkSize%2 != 0 {
			offset++ // padding
		}
	}
}
