// Package audio reads raw tags for audio formats that carry artist,
// encoder and recording-date fields: MP3 (ID3v1/v2), FLAC, OGG, M4A
package audio

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"

	"github.com/ankit-chaubey/media-metadata-highlights/core"
)

const (
	tagNamespace = "TAG:"
	id3Namespace = "ID3:"
)

// id3Frames are the ID3v2 frames the generic reader does not expose.
var id3Frames = []string{"TSSE", "TDRC", "TYER", "TCOP", "TPE1", "TENC"}

// Handler implements core.Handler for audio formats.
type Handler struct {
	format core.FormatID
}

// New returns an audio Handler for the given format.
func New(id core.FormatID) *Handler { return &Handler{format: id} }

func (h *Handler) Info() core.FormatInfo {
	return formatInfo[h.format]
}

var formatInfo = map[core.FormatID]core.FormatInfo{
	core.FmtMP3: {
		Name:       "MP3",
		Extensions: []string{".mp3"},
		MediaType:  "audio",
		MIMETypes:  []string{"audio/mpeg"},
		Notes:      "ID3v1, ID3v2.3 and ID3v2.4.",
	},
	core.FmtFLAC: {
		Name:       "FLAC",
		Extensions: []string{".flac"},
		MediaType:  "audio",
		MIMETypes:  []string{"audio/flac"},
		Notes:      "Vorbis comments.",
	},
	core.FmtOGG: {
		Name:       "OGG",
		Extensions: []string{".ogg", ".oga"},
		MediaType:  "audio",
		MIMETypes:  []string{"audio/ogg"},
		Notes:      "Vorbis comments.",
	},
	core.FmtM4A: {
		Name:       "M4A",
		Extensions: []string{".m4a"},
		MediaType:  "audio",
		MIMETypes:  []string{"audio/mp4"},
		Notes:      "iTunes-style atoms.",
	},
}

// View reads the raw tags of path. Audio files have no pixel dimensions.
func (h *Handler) View(path string) (*core.Metadata, error) {
	info, ok := formatInfo[h.format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, h.format)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrFileUnreadable, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrFileUnreadable, err)
	}

	m := &core.Metadata{
		FilePath: path,
		Props: core.FileProps{
			Format:    info.Name,
			SizeBytes: stat.Size(),
		},
		Raw: core.RawMetadata{},
	}

	t, err := tag.ReadFrom(f)
	switch {
	case errors.Is(err, tag.ErrNoTagsFound):
	case err != nil:
		return nil, fmt.Errorf("%w: could not read tags: %w", core.ErrFileUnreadable, err)
	default:
		addFromTag(t, m.Raw)
	}

	if h.format == core.FmtMP3 {
		addID3Frames(path, m.Raw)
	}

	return m, nil
}

func addFromTag(t tag.Metadata, raw core.RawMetadata) {
	add := func(k, v string) {
		if v != "" {
			raw[tagNamespace+k] = core.String(v)
		}
	}
	add("Title", t.Title())
	add("Artist", t.Artist())
	add("AlbumArtist", t.AlbumArtist())
	add("Album", t.Album())
	add("Composer", t.Composer())
	add("Genre", t.Genre())
	add("Comment", t.Comment())
	if t.Year() != 0 {
		add("Year", fmt.Sprintf("%04d", t.Year()))
	}
}

// addID3Frames reads the frames that carry encoder and recording-time
// information. A file without an ID3v2 header contributes nothing.
func addID3Frames(path string, raw core.RawMetadata) {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: id3Frames})
	if err != nil {
		return
	}
	defer t.Close()

	for _, id := range id3Frames {
		text := strings.TrimSpace(t.GetTextFrame(id).Text)
		if text != "" {
			raw[id3Namespace+id] = core.String(text)
		}
	}
}
