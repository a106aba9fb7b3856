package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	logger, err := New(Options{Quiet: true, Files: []string{path}})
	require.NoError(t, err)

	logger.Info("solver initialized", zap.Int("nx", 64))
	logger.Debug("hidden at info level")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "solver initialized")
	assert.Contains(t, out, "nx")
	assert.NotContains(t, out, "hidden at info level")
}

func TestNew_VerboseJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	logger, err := New(Options{Quiet: true, Verbose: true, JSON: true, Files: []string{path}})
	require.NoError(t, err)
	logger.Debug("step", zap.Int("n", 3))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(string(data)), "{"))
	assert.Contains(t, string(data), `"n":3`)
}

func TestNew_NoSinks(t *testing.T) {
	logger, err := New(Options{Quiet: true})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	logger.Info("dropped")
}

func TestWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	logger, done, err := WithFile(zap.NewNop(), path, false)
	require.NoError(t, err)
	logger.Warn("density norm unstable", zap.Float64("delta", 0.2))
	done()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "density norm unstable")
}
