package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docchat.log")

	cfg := NewDefaultConfig()
	cfg.Sampling.Enabled = false
	cfg.File.Path = path

	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	logger.Info(context.Background(), "vector index built")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"vector index built"`)
}

func TestLogger_CloseReleasesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docchat.log")

	cfg := NewDefaultConfig()
	cfg.Sampling.Enabled = false
	cfg.File.Path = path

	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger.closer)

	logger.Info(context.Background(), "shutting down")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"shutting down"`)

	// Children share the file but never own it.
	assert.Nil(t, logger.With().closer)
	assert.Nil(t, logger.Named("http").closer)
}

func TestFileConfig_Validate(t *testing.T) {
	assert.NoError(t, FileConfig{}.validate(), "disabled file needs no settings")

	cfg := NewDefaultConfig()
	cfg.File.Path = "/tmp/docchat.log"
	cfg.File.MaxSizeMB = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max size must be positive")

	cfg.File.MaxSizeMB = 1
	cfg.File.MaxBackups = -1
	assert.Error(t, cfg.Validate())
}
