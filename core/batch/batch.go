// Package batch runs the extraction pipeline over a list of files and fans
// every resulting record out to the enabled report sinks.
package batch

//go:generate mockgen -destination=mocks/mock_batch.go -package=mocks . Source,Emitter

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ankit-chaubey/media-metadata-highlights/core"
	"github.com/ankit-chaubey/media-metadata-highlights/core/logger"
)

// Source reads the raw tags and file properties of one file.
type Source interface {
	View(path string) (*core.Metadata, error)
}

// Resolver maps raw tags onto highlight fields.
type Resolver interface {
	Resolve(raw core.RawMetadata, props core.FileProps) core.Fields
}

// Emitter is a report sink. Emit is called once per successful file and
// Close once at the end of the run.
type Emitter interface {
	Name() string
	Emit(rec *core.HighlightRecord) error
	Close() error
}

// FailureReporter is implemented by emitters that also show per-file
// failures to the user.
type FailureReporter interface {
	Failure(path string, err error)
}

// Options configure a Driver.
type Options struct {
	// IncludeRaw keeps the raw tags on every record.
	IncludeRaw bool
	Logger     logger.Logger
}

// Driver processes files one at a time.
type Driver struct {
	src      Source
	res      Resolver
	opts     Options
	emitters []Emitter
	log      logger.Logger
}

// New creates a Driver.
func New(src Source, res Resolver, opts Options, emitters ...Emitter) *Driver {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Driver{
		src:      src,
		res:      res,
		opts:     opts,
		emitters: emitters,
		log:      log,
	}
}

// Run processes paths in order. A file that cannot be read becomes a
// diagnostic and the run continues. Emitters are closed before Run
// returns. The only errors are core.ErrNoValidInputs and the context's.
func (d *Driver) Run(ctx context.Context, paths []string) (*core.Summary, error) {
	if len(paths) == 0 {
		return nil, core.ErrNoValidInputs
	}

	sum := &core.Summary{
		RunID:   uuid.NewString(),
		Skipped: make(map[string]int),
	}
	log := d.log.With(logger.String("run_id", sum.RunID))
	log.Info("batch started",
		logger.Int("files", len(paths)),
		logger.Strings("emitters", d.emitterNames()),
	)

	var runErr error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			runErr = err
			log.Warn("batch cancelled", logger.Int("remaining", len(paths)-sum.Total))
			break
		}
		sum.Total++

		rec, err := d.extract(path)
		if err != nil {
			sum.Failed++
			d.diagnose(log, sum, path, "source", err)
			continue
		}
		sum.Succeeded++

		for _, e := range d.emitters {
			err := e.Emit(rec)
			switch {
			case err == nil:
			case errors.Is(err, core.ErrSinkUnavailable):
				sum.Skipped[e.Name()]++
			default:
				d.diagnose(log, sum, path, e.Name(), err)
			}
		}
	}

	for _, e := range d.emitters {
		if err := e.Close(); err != nil {
			sum.Diagnostics = append(sum.Diagnostics, core.Diagnostic{Stage: e.Name(), Err: err})
			log.Error("could not close emitter", logger.String("emitter", e.Name()), logger.Error(err))
		}
	}

	log.Info("batch finished",
		logger.Int("succeeded", sum.Succeeded),
		logger.Int("failed", sum.Failed),
	)
	return sum, runErr
}

func (d *Driver) extract(path string) (*core.HighlightRecord, error) {
	m, err := d.src.View(path)
	if err != nil {
		if !errors.Is(err, core.ErrFileUnreadable) {
			err = fmt.Errorf("%w: %w", core.ErrFileUnreadable, err)
		}
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: no metadata returned", core.ErrFileUnreadable)
	}

	fields := d.res.Resolve(m.Raw, m.Props)
	return core.Build(path, fields, m.Raw, d.opts.IncludeRaw), nil
}

func (d *Driver) emitterNames() []string {
	names := make([]string, len(d.emitters))
	for i, e := range d.emitters {
		names[i] = e.Name()
	}
	return names
}

// diagnose records a per-file failure and hands it to every FailureReporter.
func (d *Driver) diagnose(log logger.Logger, sum *core.Summary, path, stage string, err error) {
	sum.Diagnostics = append(sum.Diagnostics, core.Diagnostic{Path: path, Stage: stage, Err: err})
	log.Info("file failed",
		logger.String("path", path),
		logger.String("stage", stage),
		logger.Error(err),
	)
	for _, e := range d.emitters {
		if r, ok := e.(FailureReporter); ok {
			r.Failure(path, err)
		}
	}
}
