package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankit-chaubey/media-metadata-highlights/core/logger"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for _, level := range []string{"debug", "info", "warn", "warning", "error", "DEBUG"} {
		assert.NoError(t, logger.ParseLevel(level), level)
	}
	assert.Error(t, logger.ParseLevel("verbose"))
}

func TestNewWritesToOutputPath(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "run.log")

	log, err := logger.New(logger.Config{Level: "info", OutputPaths: []string{out}})
	require.NoError(t, err)

	log.With(logger.String("run_id", "abc")).Info("batch started", logger.Int("files", 3))
	log.Debug("hidden below info")
	_ = log.Sync()

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"batch started"`)
	assert.Contains(t, string(data), `"run_id":"abc"`)
	assert.NotContains(t, string(data), "hidden below info")
}

func TestNopDiscards(t *testing.T) {
	t.Parallel()

	log := logger.NewNop()
	log.Error("nothing happens")
	assert.NoError(t, log.Sync())
}
