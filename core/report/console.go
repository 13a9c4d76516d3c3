// Package report holds the sinks a batch run writes highlight records to:
// the console, per-file sidecars and a shared CSV summary.
package report

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ankit-chaubey/media-metadata-highlights/core"
)

// Console prints one bordered block per record and a closing summary.
type Console struct {
	out    io.Writer
	errOut io.Writer
}

// NewConsole returns a Console printing records to out and failures to
// errOut.
func NewConsole(out, errOut io.Writer) *Console {
	return &Console{out: out, errOut: errOut}
}

func (c *Console) Name() string { return "console" }

// Emit renders rec. Absent fields are listed under Notes instead of being
// printed empty.
func (c *Console) Emit(rec *core.HighlightRecord) error {
	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.SetStyle(table.StyleLight)
	t.SetTitle(filepath.Base(rec.FilePath))

	t.AppendRow(table.Row{"Format", rec.Format})
	if w, ok := rec.Width.Get(); ok {
		if h, ok := rec.Height.Get(); ok {
			t.AppendRow(table.Row{"Dimensions", fmt.Sprintf("%dx%d", w, h)})
		}
	}
	t.AppendRow(table.Row{"Size", core.HumanSize(rec.FileSizeBytes)})
	if v, ok := rec.Device().Get(); ok {
		t.AppendRow(table.Row{"Device", v})
	}
	if v, ok := rec.Author.Get(); ok {
		t.AppendRow(table.Row{"Author", v})
	}
	if v, ok := rec.Software.Get(); ok {
		t.AppendRow(table.Row{"Software", v})
	}
	if ts, ok := rec.CapturedAt.Get(); ok {
		t.AppendRow(table.Row{"Taken", ts.Literal})
	}
	if gps, ok := rec.GPS.Get(); ok {
		t.AppendRow(table.Row{"GPS (decimal)", formatCoord(gps.Latitude) + ", " + formatCoord(gps.Longitude)})
	}

	if notes := rec.Notes(); len(notes) > 0 {
		t.AppendSeparator()
		lines := make([]string, len(notes))
		for i, n := range notes {
			lines[i] = "- " + n
		}
		t.AppendRow(table.Row{"Notes", strings.Join(lines, "\n")})
	}

	t.Render()
	_, err := fmt.Fprintln(c.out)
	return err
}

// Failure prints the one-line cause of a file that produced no record.
func (c *Console) Failure(path string, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(c.errOut, "✗ %s: not found\n", path)
		return
	}
	fmt.Fprintf(c.errOut, "✗ %s: %v\n", path, err)
}

// PrintSummary renders the per-run counts.
func (c *Console) PrintSummary(s *core.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Summary")

	t.AppendRow(table.Row{"Run", s.RunID})
	t.AppendRow(table.Row{"Files", s.Total})
	t.AppendRow(table.Row{"Succeeded", s.Succeeded})
	t.AppendRow(table.Row{"Failed", s.Failed})

	sinks := make([]string, 0, len(s.Skipped))
	for name := range s.Skipped {
		sinks = append(sinks, name)
	}
	sort.Strings(sinks)
	for _, name := range sinks {
		t.AppendRow(table.Row{"Skipped (" + name + ")", s.Skipped[name]})
	}

	t.Render()
}

func (c *Console) Close() error { return nil }

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
