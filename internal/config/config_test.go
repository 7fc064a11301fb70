package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 100, c.MaxFileMB)
	assert.Equal(t, int64(100<<20), c.MaxFileBytes())
	assert.Equal(t, 2000, c.MaxStoragePoints)
	assert.Equal(t, 100, c.PreviewRows)
	assert.Equal(t, 50, c.DelimiterScanLines)
	assert.Equal(t, 10, c.NumericSampleLines)
	assert.InDelta(t, 0.5, c.MetadataNumericRatio, 1e-12)
	assert.Equal(t, 10, c.RoleSampleSize)
	assert.Equal(t, 5, c.SmoothWindow)
	assert.Equal(t, 2, c.PeakMinDistance)
	assert.Equal(t, 1, c.BaselineDegree)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "datasets.db", filepath.Base(c.StorePath))
}

func TestLoadPrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("smooth_window: 7\npreview_rows: 20\n"), 0o644))
	t.Setenv("SPECAPP_PREVIEW_ROWS", "30")

	c, err := Load(cfg)
	require.NoError(t, err)
	assert.Equal(t, 7, c.SmoothWindow)
	assert.Equal(t, 30, c.PreviewRows, "env overrides the file")
}

func TestSaveAndReload(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, c.Set("peak_min_distance", "4"))
	require.NoError(t, Save(c, ""))

	path, err := Path("")
	require.NoError(t, err)
	require.FileExists(t, path)

	again, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, again.PeakMinDistance)
	assert.Equal(t, c.StorePath, again.StorePath)
}

func TestSetRejectsBadInput(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)

	assert.Error(t, c.Set("no_such_key", "1"))
	assert.Error(t, c.Set("smooth_window", "wide"))
	require.NoError(t, c.Set("metadata_numeric_ratio", "0.4"))
	assert.InDelta(t, 0.4, c.MetadataNumericRatio, 1e-12)

	p := c.ParserOptions()
	assert.InDelta(t, 0.4, p.MetadataRatio, 1e-12)
	assert.Equal(t, c.MaxFileBytes(), p.MaxFileBytes)
	assert.Equal(t, c.SmoothWindow, c.AnalysisOptions().SmoothWindow)
}
