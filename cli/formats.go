package main

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ankit-chaubey/media-metadata-highlights/core/source"
)

func newFormatsCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported file formats",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			t := table.NewWriter()
			t.SetOutputMirror(stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Format", "Type", "Extensions", "MIME", "Notes"})
			for _, info := range source.Formats() {
				t.AppendRow(table.Row{
					info.Name,
					info.MediaType,
					strings.Join(info.Extensions, " "),
					strings.Join(info.MIMETypes, " "),
					info.Notes,
				})
			}
			t.Render()
		},
	}
}
