package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankit-chaubey/media-metadata-highlights/core"
)

func ftyp(brand string) []byte {
	return append([]byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p'}, []byte(brand+"\x00\x00\x00\x00")...)
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		file string
		data []byte
		want core.FormatID
	}{
		{"jpeg", "a.bin", []byte{0xFF, 0xD8, 0xFF, 0xE1, 0x00}, core.FmtJPEG},
		{"png", "a.bin", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0d"), core.FmtPNG},
		{"id3", "a.bin", []byte("ID3\x04\x00\x00\x00\x00\x00\x00"), core.FmtMP3},
		{"mpeg frame", "a.bin", []byte{0xFF, 0xFB, 0x90, 0x64, 0x00}, core.FmtMP3},
		{"flac", "a.bin", []byte("fLaC\x80\x00\x00\x00"), core.FmtFLAC},
		{"ogg", "a.bin", []byte("OggS\x00\x02\x00\x00"), core.FmtOGG},
		{"m4a", "a.bin", ftyp("M4A "), core.FmtM4A},
		{"heic", "a.bin", ftyp("heic"), core.FmtHEIC},
		{"unknown brand falls back to extension", "a.m4a", ftyp("qt  "), core.FmtM4A},
		{"extension fallback", "b.OGA", []byte("not a real header"), core.FmtOGG},
		{"unknown", "c.txt", []byte("plain text"), core.FmtUnknown},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tc.file)
			require.NoError(t, os.WriteFile(path, tc.data, 0o644))

			got, err := core.DetectFormat(path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDetectFormatEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.mp3")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := core.DetectFormat(path)
	assert.Error(t, err)
}

func TestMediaTypeFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "image", core.MediaTypeFor(core.FmtHEIC))
	assert.Equal(t, "audio", core.MediaTypeFor(core.FmtFLAC))
	assert.Equal(t, "unknown", core.MediaTypeFor(core.FmtUnknown))
}
