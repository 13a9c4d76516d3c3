package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ankit-chaubey/media-metadata-highlights/core"
	"github.com/ankit-chaubey/media-metadata-highlights/core/batch"
	"github.com/ankit-chaubey/media-metadata-highlights/core/config"
	"github.com/ankit-chaubey/media-metadata-highlights/core/logger"
	"github.com/ankit-chaubey/media-metadata-highlights/core/report"
	"github.com/ankit-chaubey/media-metadata-highlights/core/resolve"
	"github.com/ankit-chaubey/media-metadata-highlights/core/source"
)

// flagKeys maps extract flags onto configuration keys.
var flagKeys = map[string]string{
	"json":           config.KeySidecarEnabled,
	"csv":            config.KeyCSVPath,
	"sidecar-format": config.KeySidecarFormat,
	"sidecar-suffix": config.KeySidecarSuffix,
	"log-level":      config.KeyLogLevel,
}

func newExtractCommand(cfgFile *string, stdout, stderr io.Writer) *cobra.Command {
	var omitRaw bool

	cmd := &cobra.Command{
		Use:   "extract <files...>",
		Short: "Print metadata highlights for one or more files",
		Example: `  highlights extract IMG_0001.jpg
  highlights extract --json --csv summary.csv photos/*.jpg`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%w: extract requires at least one file", core.ErrNoValidInputs)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := config.New()
			if err := config.ReadFile(v, *cfgFile); err != nil {
				return err
			}
			if err := bindFlags(v, cmd); err != nil {
				return err
			}
			if omitRaw {
				v.Set(config.KeySidecarIncludeRaw, false)
			}

			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return runExtract(cmd, cfg, args, stdout, stderr)
		},
	}

	flags := cmd.Flags()
	flags.Bool("json", false, "write a sidecar next to every file")
	flags.String("csv", "", "append one row per file to this CSV summary")
	flags.String("sidecar-format", "json", "sidecar format: json or yaml")
	flags.String("sidecar-suffix", "", "sidecar file suffix (default .json or .yaml)")
	flags.BoolVar(&omitRaw, "omit-raw", false, "leave raw tags out of sidecars")
	flags.String("log-level", logger.DefaultLevel, "diagnostic log level: debug, info, warn or error")

	return cmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func runExtract(cmd *cobra.Command, cfg *config.Config, paths []string, stdout, stderr io.Writer) error {
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	console := report.NewConsole(stdout, stderr)
	emitters := []batch.Emitter{console}
	if cfg.Sidecar.Enabled {
		sidecar, err := report.NewSidecar(cfg.Sidecar.Format, cfg.Sidecar.Suffix)
		if err != nil {
			return err
		}
		emitters = append(emitters, sidecar)
	}
	if cfg.CSV.Path != "" {
		emitters = append(emitters, report.NewCSV(cfg.CSV.Path))
	}

	d := batch.New(
		source.New(),
		resolve.New(log),
		batch.Options{IncludeRaw: cfg.IncludeRaw(), Logger: log},
		emitters...,
	)

	sum, err := d.Run(cmd.Context(), paths)
	if sum != nil {
		console.PrintSummary(sum)
	}
	if err != nil {
		return err
	}
	if sum.ExitCode() != 0 {
		return fmt.Errorf("%w: none of %d files could be read", core.ErrNoValidInputs, sum.Total)
	}
	return nil
}
