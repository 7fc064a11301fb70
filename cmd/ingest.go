package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brettadin/Anything-SpecApp/internal/logging"
	"github.com/brettadin/Anything-SpecApp/internal/parser"
	"github.com/brettadin/Anything-SpecApp/internal/store"
)

var errUnsupportedFormat = errors.New("unsupported format")

var ingestDesc string

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Parse a file and store the normalized dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		d, err := ingestFile(s, args[0], ingestDesc)
		if err != nil {
			return err
		}
		printIngested(cmd.OutOrStdout(), d, true)
		return nil
	},
}

// ingestFile parses path, rejects formats without tabular data, downsamples
// and stores the dataset.
func ingestFile(s *store.Store, path, desc string) (*store.Dataset, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	opt, err := parserOptions()
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	res, err := parser.ParseFile(path, opt)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	if !res.DetectedFormat.Supported() {
		return nil, fmt.Errorf("%s: %w %q: %s", base, errUnsupportedFormat, res.DetectedFormat, strings.Join(res.Notes, "; "))
	}

	d := store.NewDataset(base, info.Size(), res, c.MaxStoragePoints, c.PreviewRows)
	d.Description = desc
	if abs, err := filepath.Abs(path); err == nil {
		d.Path = abs
	}
	if err := s.Save(d); err != nil {
		return nil, fmt.Errorf("store dataset: %w", err)
	}
	logger.Info("dataset stored", logging.Fields{
		"id": d.ID, "file": base, "format": res.DetectedFormat, "rows": d.RowCount, "stride": d.SampleStride,
	})
	return d, nil
}

func printIngested(w io.Writer, d *store.Dataset, withNotes bool) {
	fmt.Fprintf(w, "✓ Dataset stored: %s (%s, %s, %d rows)\n", d.ID, d.Filename, d.Result.DetectedFormat, d.RowCount)
	if !withNotes {
		return
	}
	for _, n := range d.Result.Notes {
		fmt.Fprintf(w, "  • %s\n", n)
	}
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestDesc, "desc", "", "dataset description")
}
