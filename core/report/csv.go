package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/ankit-chaubey/media-metadata-highlights/core"
)

// CSVHeader is the fixed column order of the summary file.
var CSVHeader = []string{
	"filePath", "format", "width", "height", "fileSizeBytes",
	"deviceMake", "deviceModel", "author", "software",
	"capturedAt", "gpsLatitude", "gpsLongitude",
}

// CSV appends one row per record to a file shared by the whole run. The
// file is opened on the first row. After any write failure the sink stays
// disabled for the rest of the run.
type CSV struct {
	path string
	f    *os.File
	w    *csv.Writer
	err  error
}

func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

func (c *CSV) Name() string { return "csv" }

// Emit appends rec. Once disabled it returns core.ErrSinkUnavailable.
func (c *CSV) Emit(rec *core.HighlightRecord) error {
	if c.err != nil {
		return core.ErrSinkUnavailable
	}
	if c.w == nil {
		if err := c.open(); err != nil {
			return c.fail(err)
		}
	}

	if err := c.w.Write(CSVRow(rec)); err != nil {
		return c.fail(err)
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return c.fail(err)
	}
	return nil
}

func (c *CSV) fail(err error) error {
	c.err = fmt.Errorf("%w: %s: %w", core.ErrCSVWrite, c.path, err)
	if c.f != nil {
		_ = c.f.Close()
		c.f = nil
	}
	return c.err
}

// open prepares the file for appending: a new or empty file gets the
// header, an existing one must already carry it.
func (c *CSV) open() error {
	f, err := os.OpenFile(c.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	c.f = f

	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(CSVHeader); err != nil {
			return err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
		c.w = w
		return nil
	}

	header, err := csv.NewReader(io.NewSectionReader(f, 0, info.Size())).Read()
	if err != nil {
		return fmt.Errorf("could not read existing header: %w", err)
	}
	if !slices.Equal(header, CSVHeader) {
		return errors.New("existing header does not match")
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return err
	}
	if last[0] != '\n' {
		if _, err := f.Write([]byte{'\n'}); err != nil {
			return err
		}
	}

	c.w = w
	return nil
}

// Close flushes and closes the file if it was opened.
func (c *CSV) Close() error {
	if c.f == nil {
		return nil
	}
	c.w.Flush()
	err := c.w.Error()
	if cerr := c.f.Close(); err == nil {
		err = cerr
	}
	c.f = nil
	if err != nil {
		return fmt.Errorf("%w: %s: %w", core.ErrCSVWrite, c.path, err)
	}
	return nil
}

// CSVRow projects rec onto CSVHeader. Absent values are empty cells.
func CSVRow(rec *core.HighlightRecord) []string {
	row := make([]string, 0, len(CSVHeader))
	row = append(row,
		rec.FilePath,
		rec.Format,
		optInt(rec.Width),
		optInt(rec.Height),
		strconv.FormatInt(rec.FileSizeBytes, 10),
		rec.DeviceMake.Or(""),
		rec.DeviceModel.Or(""),
		rec.Author.Or(""),
		rec.Software.Or(""),
		capturedAt(rec),
		optCoord(rec.Latitude()),
		optCoord(rec.Longitude()),
	)
	return row
}

func optInt(v core.Opt[int]) string {
	if n, ok := v.Get(); ok {
		return strconv.Itoa(n)
	}
	return ""
}

func optCoord(v core.Opt[float64]) string {
	if f, ok := v.Get(); ok {
		return formatCoord(f)
	}
	return ""
}

// capturedAt is ISO-8601 when the literal parsed, else the literal.
func capturedAt(rec *core.HighlightRecord) string {
	ts, ok := rec.CapturedAt.Get()
	if !ok {
		return ""
	}
	if iso, ok := ts.ISO(); ok {
		return iso
	}
	return ts.Literal
}
