package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/brettadin/Anything-SpecApp/internal/logging"
)

var (
	ibDescription string
	ibQuiet       bool
	ibFailFast    bool
)

var ingestBatchCmd = &cobra.Command{
	Use:   "ingest-batch <files...>",
	Short: "Ingest multiple files or glob patterns with progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		out := cmd.OutOrStdout()
		total := len(files)
		failed := 0
		for i, path := range files {
			if !ibQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			d, err := ingestFile(s, path, ibDescription)
			if err != nil {
				if ibFailFast {
					return err
				}
				failed++
				logger.Warn("ingest failed", logging.Fields{"file": path, "error": err.Error()})
				if !ibQuiet {
					fmt.Fprintf(out, "⚠ Skipped %s: %v\n", filepath.Base(path), err)
				}
				continue
			}
			if !ibQuiet {
				printIngested(out, d, false)
			}
		}
		if !ibQuiet {
			fmt.Fprintf(out, "✓ Ingested %d files\n", total-failed)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files could not be ingested", failed, total)
		}
		return nil
	},
}

// expandInputs expands glob patterns, keeps literal paths that exist, drops
// duplicates and directories, and sorts the result.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err != nil || info.IsDir() {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func init() {
	rootCmd.AddCommand(ingestBatchCmd)
	ingestBatchCmd.Flags().StringVar(&ibDescription, "desc", "", "description applied to every dataset")
	ingestBatchCmd.Flags().BoolVar(&ibQuiet, "quiet", false, "suppress progress and non-essential output")
	ingestBatchCmd.Flags().BoolVar(&ibFailFast, "fail-fast", false, "stop at the first file that cannot be ingested")
}
