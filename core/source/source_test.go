package source_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankit-chaubey/media-metadata-highlights/core"
	"github.com/ankit-chaubey/media-metadata-highlights/core/imagetest"
	"github.com/ankit-chaubey/media-metadata-highlights/core/source"
)

func TestViewDispatchesByContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// A PNG with the wrong extension is still read as PNG.
	path := imagetest.WriteFile(t, dir, "mislabeled.jpg",
		imagetest.PNG(t, 3, 2, imagetest.TextChunk("Author", "Jane Roe")))

	m, err := source.New().View(path)
	require.NoError(t, err)
	assert.Equal(t, "PNG", m.Props.Format)
	assert.Equal(t, core.String("Jane Roe"), m.Raw["PNG:Author"])
}

func TestViewFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cases := map[string]string{
		"missing":     filepath.Join(dir, "missing.jpg"),
		"empty":       imagetest.WriteFile(t, dir, "empty.png", nil),
		"unsupported": imagetest.WriteFile(t, dir, "notes.txt", []byte("plain text")),
		"corrupt":     imagetest.WriteFile(t, dir, "corrupt.jpg", []byte("plain text")),
	}

	for name, path := range cases {
		_, err := source.New().View(path)
		assert.ErrorIs(t, err, core.ErrFileUnreadable, name)
	}
}

func TestHandlerFor(t *testing.T) {
	t.Parallel()

	h, err := source.HandlerFor(core.FmtJPEG)
	require.NoError(t, err)
	assert.Equal(t, "JPEG", h.Info().Name)

	h, err = source.HandlerFor(core.FmtFLAC)
	require.NoError(t, err)
	assert.Equal(t, "audio", h.Info().MediaType)

	_, err = source.HandlerFor(core.FmtUnknown)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
}

func TestFormats(t *testing.T) {
	t.Parallel()

	infos := source.Formats()
	require.Len(t, infos, 11)
	assert.Equal(t, "JPEG", infos[0].Name)
	for _, info := range infos {
		assert.NotEmpty(t, info.Extensions, info.Name)
		assert.NotEmpty(t, info.MIMETypes, info.Name)
	}
}
