package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettadin/Anything-SpecApp/internal/store"
)

const spectrumCSV = "wavelength,intensity\n400,1\n410,3\n420,1\n430,2\n440,6\n450,2\n460,1\n"

// resetFlags restores every flag to its default so state does not leak
// between invocations of the shared command tree.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

// setupHome isolates config and store under a temp HOME.
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg = nil
	return home
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func listEntries(t *testing.T) []store.Entry {
	t.Helper()
	s, err := openStore()
	require.NoError(t, err)
	defer s.Close()
	entries, err := s.List()
	require.NoError(t, err)
	return entries
}

func TestParseCommand(t *testing.T) {
	home := setupHome(t)
	p := writeFile(t, filepath.Join(home, "lamp.csv"), spectrumCSV)

	out := runCmd(t, "parse", p)
	assert.Contains(t, out, "[DATASET SUMMARY]")
	assert.Contains(t, out, "Format: csv")
	assert.Contains(t, out, "- X: wavelength")

	out = runCmd(t, "parse", p, "--json")
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "csv", decoded["detectedFormat"])
	assert.Equal(t, "wavelength", decoded["xColumn"])

	dest := filepath.Join(home, "out", "summary.md")
	out = runCmd(t, "parse", p, "-o", dest)
	assert.Contains(t, out, "✓ Wrote")
	body, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(body), "[SCHEMA]")
}

func TestIngestShowExportDelete(t *testing.T) {
	home := setupHome(t)
	p := writeFile(t, filepath.Join(home, "lamp.csv"), spectrumCSV)

	out := runCmd(t, "ingest", p, "--desc", "lamp run")
	assert.Contains(t, out, "✓ Dataset stored:")
	assert.Contains(t, out, "(lamp.csv, csv, 7 rows)")
	assert.Contains(t, out, "  • ")

	entries := listEntries(t)
	require.Len(t, entries, 1)
	id := entries[0].ID

	out = runCmd(t, "list")
	assert.Contains(t, out, "- "+id+": lamp.csv (csv, 7 rows,")

	out = runCmd(t, "show", id[:8])
	assert.Contains(t, out, "ID: "+id)
	assert.Contains(t, out, "Description: lamp run")
	assert.Contains(t, out, "[DATASET SUMMARY]")

	dest := filepath.Join(home, "export", "lamp.json")
	out = runCmd(t, "export", id, "-o", dest)
	assert.Contains(t, out, "✓ Exported "+id)
	body, err := os.ReadFile(dest)
	require.NoError(t, err)
	var exported store.Dataset
	require.NoError(t, json.Unmarshal(body, &exported))
	assert.Equal(t, id, exported.ID)
	assert.Equal(t, 7, exported.RowCount)

	out = runCmd(t, "delete", id)
	assert.Contains(t, out, "✓ Deleted dataset "+id)
	assert.Equal(t, "(no datasets)\n", runCmd(t, "list"))

	_, err = execCmd(t, "show", id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestIngestRejectsUnsupported(t *testing.T) {
	home := setupHome(t)
	empty := writeFile(t, filepath.Join(home, "empty.csv"), "")
	img := writeFile(t, filepath.Join(home, "photo.png"), "\x89PNG\r\n")

	_, err := execCmd(t, "ingest", empty)
	assert.ErrorIs(t, err, errUnsupportedFormat)
	_, err = execCmd(t, "ingest", img)
	assert.ErrorIs(t, err, errUnsupportedFormat)
	assert.Empty(t, listEntries(t))
}

func TestIngestBatch(t *testing.T) {
	home := setupHome(t)
	writeFile(t, filepath.Join(home, "d1", "a.csv"), spectrumCSV)
	writeFile(t, filepath.Join(home, "d2", "a.csv"), spectrumCSV)
	bad := writeFile(t, filepath.Join(home, "d2", "empty.csv"), "")

	glob := filepath.Join(home, "d*", "a.csv")
	out, err := execCmd(t, "ingest-batch", glob, glob, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 files could not be ingested")
	assert.Contains(t, out, "[1/3] Processing")
	assert.Contains(t, out, "⚠ Skipped")
	assert.Contains(t, out, "✓ Ingested 2 files")
	assert.Len(t, listEntries(t), 2)

	_, err = execCmd(t, "ingest-batch", filepath.Join(home, "nothing*.csv"))
	assert.Error(t, err)
}

func TestAnalyzeCommand(t *testing.T) {
	home := setupHome(t)
	p := writeFile(t, filepath.Join(home, "lamp.csv"), spectrumCSV)

	out := runCmd(t, "analyze", p, "--kind", "stats,peaks")
	assert.Contains(t, out, "Y column: intensity")
	assert.Contains(t, out, "X column: wavelength")
	assert.Contains(t, out, "[STATS]")
	assert.Contains(t, out, "[PEAKS]")
	assert.NotContains(t, out, "[FFT]")

	runCmd(t, "ingest", p)
	id := listEntries(t)[0].ID
	out = runCmd(t, "analyze", id, "--y", "intensity", "--json")
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	for _, key := range []string{"stats", "normalized", "smoothed", "fft", "peaks", "baseline"} {
		assert.Contains(t, decoded, key)
	}

	_, err := execCmd(t, "analyze", id, "--y", "missing")
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "column not found"))
}

func TestConfigSetAndShow(t *testing.T) {
	setupHome(t)
	out := runCmd(t, "config", "set", "smooth_window", "9")
	assert.Contains(t, out, "Saved config")

	out = runCmd(t, "config", "show")
	assert.Contains(t, out, "smooth_window: 9")

	_, err := execCmd(t, "config", "set", "no_such_key", "1")
	assert.Error(t, err)
}

func TestWatchIngestsExistingAndNewFiles(t *testing.T) {
	home := setupHome(t)
	t.Setenv("SPECAPP_WATCH_DEBOUNCE_MS", "50")
	dir := filepath.Join(home, "incoming")
	writeFile(t, filepath.Join(dir, "first.csv"), spectrumCSV)

	go func() {
		time.Sleep(200 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "second.csv"), []byte(spectrumCSV), 0o644)
	}()
	out := runCmd(t, "watch", dir, "--existing", "--for", "1s")
	assert.Contains(t, out, "first.csv")
	assert.Contains(t, out, "second.csv")

	names := map[string]bool{}
	for _, e := range listEntries(t) {
		names[e.Filename] = true
	}
	assert.True(t, names["first.csv"] && names["second.csv"], "stored: %v", names)
}
