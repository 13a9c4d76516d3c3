package main

import (
	"io"

	"github.com/spf13/cobra"
)

// newRootCommand builds the highlights command tree writing to stdout and
// stderr.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "highlights",
		Short: "Human-friendly metadata highlights for image and audio files",
		Long: `highlights reads embedded EXIF, IPTC, XMP, PNG text and audio tags and
prints the fields people usually care about: device, author, software,
capture time and GPS position. Results can also be written to per-file
sidecars and a shared CSV summary.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is ./highlights.yaml if present)")

	root.AddCommand(newExtractCommand(&cfgFile, stdout, stderr))
	root.AddCommand(newFormatsCommand(stdout))

	return root
}
