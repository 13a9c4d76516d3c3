package batch_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ankit-chaubey/media-metadata-highlights/core"
	"github.com/ankit-chaubey/media-metadata-highlights/core/batch"
	"github.com/ankit-chaubey/media-metadata-highlights/core/batch/mocks"
	"github.com/ankit-chaubey/media-metadata-highlights/core/imagetest"
	"github.com/ankit-chaubey/media-metadata-highlights/core/logger"
	"github.com/ankit-chaubey/media-metadata-highlights/core/report"
	"github.com/ankit-chaubey/media-metadata-highlights/core/resolve"
	"github.com/ankit-chaubey/media-metadata-highlights/core/source"
)

func jpegMetadata(path string) *core.Metadata {
	return &core.Metadata{
		FilePath: path,
		Props:    core.FileProps{Format: "JPEG", Width: core.Some(10), Height: core.Some(10), SizeBytes: 100},
		Raw:      core.RawMetadata{"EXIF:Make": core.String("Apple")},
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	sink := mocks.NewMockEmitter(ctrl)

	readErr := errors.New("permission denied")
	gomock.InOrder(
		src.EXPECT().View("a.jpg").Return(jpegMetadata("a.jpg"), nil),
		src.EXPECT().View("b.jpg").Return(nil, readErr),
		src.EXPECT().View("c.jpg").Return(jpegMetadata("c.jpg"), nil),
	)

	var emitted []string
	sink.EXPECT().Name().Return("mock").AnyTimes()
	sink.EXPECT().Emit(gomock.Any()).DoAndReturn(func(rec *core.HighlightRecord) error {
		emitted = append(emitted, rec.FilePath)
		assert.Equal(t, core.Some("Apple"), rec.DeviceMake)
		assert.Nil(t, rec.RawMetadata)
		return nil
	}).Times(2)
	sink.EXPECT().Close().Return(nil).Times(1)

	d := batch.New(src, resolve.New(logger.NewNop()), batch.Options{}, sink)
	sum, err := d.Run(context.Background(), []string{"a.jpg", "b.jpg", "c.jpg"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.jpg", "c.jpg"}, emitted)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 0, sum.ExitCode())
	assert.NotEmpty(t, sum.RunID)

	require.Len(t, sum.Diagnostics, 1)
	diag := sum.Diagnostics[0]
	assert.Equal(t, "b.jpg", diag.Path)
	assert.Equal(t, "source", diag.Stage)
	assert.ErrorIs(t, diag.Err, core.ErrFileUnreadable)
	assert.ErrorIs(t, diag.Err, readErr)
}

func TestRunIncludesRawWhenRequested(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	sink := mocks.NewMockEmitter(ctrl)

	src.EXPECT().View("a.jpg").Return(jpegMetadata("a.jpg"), nil)
	sink.EXPECT().Name().Return("mock").AnyTimes()
	sink.EXPECT().Emit(gomock.Any()).DoAndReturn(func(rec *core.HighlightRecord) error {
		assert.Equal(t, core.RawMetadata{"EXIF:Make": core.String("Apple")}, rec.RawMetadata)
		return nil
	})
	sink.EXPECT().Close().Return(nil)

	d := batch.New(src, resolve.New(nil), batch.Options{IncludeRaw: true}, sink)
	_, err := d.Run(context.Background(), []string{"a.jpg"})
	require.NoError(t, err)
}

func TestRunEmitterFailureDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	broken := mocks.NewMockEmitter(ctrl)
	healthy := mocks.NewMockEmitter(ctrl)

	src.EXPECT().View(gomock.Any()).DoAndReturn(func(path string) (*core.Metadata, error) {
		return jpegMetadata(path), nil
	}).Times(3)

	broken.EXPECT().Name().Return("csv").AnyTimes()
	gomock.InOrder(
		broken.EXPECT().Emit(gomock.Any()).Return(core.ErrCSVWrite),
		broken.EXPECT().Emit(gomock.Any()).Return(core.ErrSinkUnavailable).Times(2),
	)
	broken.EXPECT().Close().Return(nil)

	healthy.EXPECT().Name().Return("sidecar").AnyTimes()
	healthy.EXPECT().Emit(gomock.Any()).Return(nil).Times(3)
	healthy.EXPECT().Close().Return(nil)

	d := batch.New(src, resolve.New(nil), batch.Options{}, broken, healthy)
	sum, err := d.Run(context.Background(), []string{"a.jpg", "b.jpg", "c.jpg"})
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Succeeded)
	assert.Equal(t, 0, sum.Failed)
	assert.Equal(t, map[string]int{"csv": 2}, sum.Skipped)
	require.Len(t, sum.Diagnostics, 1)
	assert.Equal(t, "csv", sum.Diagnostics[0].Stage)
	assert.ErrorIs(t, sum.Diagnostics[0].Err, core.ErrCSVWrite)
}

func TestRunLogsFailuresBelowDefaultLevel(t *testing.T) {
	t.Parallel()

	run := func(level string) string {
		ctrl := gomock.NewController(t)
		src := mocks.NewMockSource(ctrl)
		sink := mocks.NewMockEmitter(ctrl)

		src.EXPECT().View("bad.jpg").Return(nil, core.ErrFileUnreadable)
		sink.EXPECT().Name().Return("console").AnyTimes()
		sink.EXPECT().Close().Return(nil)

		out := filepath.Join(t.TempDir(), "run.log")
		log, err := logger.New(logger.Config{Level: level, OutputPaths: []string{out}})
		require.NoError(t, err)

		d := batch.New(src, resolve.New(log), batch.Options{Logger: log}, sink)
		_, err = d.Run(context.Background(), []string{"bad.jpg"})
		require.NoError(t, err)
		_ = log.Sync()

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		return string(data)
	}

	assert.NotContains(t, run(logger.DefaultLevel), "file failed")

	verbose := run("info")
	assert.Contains(t, verbose, `"msg":"file failed"`)
	assert.Contains(t, verbose, `"emitters":["console"]`)
	assert.Contains(t, verbose, `"path":"bad.jpg"`)
}

func TestRunNoInputs(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	d := batch.New(mocks.NewMockSource(ctrl), resolve.New(nil), batch.Options{})

	sum, err := d.Run(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrNoValidInputs)
	assert.Nil(t, sum)
	assert.Equal(t, 1, sum.ExitCode())
}

func TestRunStopsWhenCancelled(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	sink := mocks.NewMockEmitter(ctrl)
	sink.EXPECT().Name().Return("mock").AnyTimes()
	sink.EXPECT().Close().Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := batch.New(src, resolve.New(nil), batch.Options{}, sink)
	sum, err := d.Run(ctx, []string{"a.jpg", "b.jpg"})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, sum)
	assert.Equal(t, 0, sum.Total)
	assert.Equal(t, 1, sum.ExitCode())
}

func TestRunAllFailed(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	src.EXPECT().View(gomock.Any()).Return(nil, core.ErrFileUnreadable).Times(2)

	d := batch.New(src, resolve.New(nil), batch.Options{})
	sum, err := d.Run(context.Background(), []string{"a.jpg", "b.jpg"})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Failed)
	assert.Equal(t, 1, sum.ExitCode())
}

func TestRunEndToEndWithOneCorruptFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tiff := imagetest.PhoneTIFF()
	paths := []string{
		imagetest.WriteFile(t, dir, "one.jpg", imagetest.JPEG(t, 32, 24, imagetest.ExifSegment(tiff))),
		imagetest.WriteFile(t, dir, "corrupt.jpg", []byte("definitely not a jpeg")),
		imagetest.WriteFile(t, dir, "two.png", imagetest.PNG(t, 8, 8, imagetest.TextChunk("Author", "Jane Roe"))),
	}
	csvPath := filepath.Join(dir, "summary.csv")

	var out, errOut bytes.Buffer
	console := report.NewConsole(&out, &errOut)
	sidecar, err := report.NewSidecar(report.FormatJSON, "")
	require.NoError(t, err)

	d := batch.New(source.New(), resolve.New(nil), batch.Options{IncludeRaw: true},
		console, sidecar, report.NewCSV(csvPath))
	sum, err := d.Run(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, 0, sum.ExitCode())
	assert.Equal(t, 2, sum.Succeeded)
	require.Len(t, sum.Diagnostics, 1)
	assert.Equal(t, paths[1], sum.Diagnostics[0].Path)

	assert.FileExists(t, paths[0]+".json")
	assert.FileExists(t, paths[2]+".json")
	assert.NoFileExists(t, paths[1]+".json")

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], paths[0]+",JPEG,32,24,"))
	assert.True(t, strings.HasPrefix(lines[2], paths[2]+",PNG,8,8,"))

	assert.Equal(t, 1, strings.Count(errOut.String(), "✗ "))
	assert.Contains(t, errOut.String(), paths[1])
	assert.Contains(t, out.String(), "Apple iPhone 13 Pro")
	assert.Contains(t, out.String(), "Jane Roe")
}
