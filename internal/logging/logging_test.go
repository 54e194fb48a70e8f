package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stockdeck.log")

	log, err := New(Config{Level: "info", Format: "json", File: path})
	require.NoError(t, err)

	log.Info("stock list fetched", zap.Int("count", 3))
	require.NoError(t, log.Sync())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "stock list fetched")
	assert.Contains(t, string(content), `"count":3`)
}

func TestNew_LevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stockdeck.log")

	log, err := New(Config{Level: "warn", Format: "json", File: path})
	require.NoError(t, err)

	log.Info("should be filtered")
	log.Warn("should appear")
	require.NoError(t, log.Sync())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "should be filtered")
	assert.Contains(t, string(content), "should appear")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud", Format: "json", File: filepath.Join(t.TempDir(), "x.log")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNamed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stockdeck.log")

	log, err := New(Config{Level: "info", Format: "json", File: path})
	require.NoError(t, err)

	log.Named("api").Info("request issued")
	require.NoError(t, log.Sync())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"logger":"api"`)
}
