package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brettadin/Anything-SpecApp/internal/analysis"
	"github.com/brettadin/Anything-SpecApp/internal/logging"
	"github.com/brettadin/Anything-SpecApp/internal/parser"
	"github.com/brettadin/Anything-SpecApp/internal/utils"
)

var (
	anaYColumn    string
	anaXColumn    string
	anaKinds      string
	anaJSON       bool
	anaOutputPath string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <id|file>",
	Short: "Run spectral analyses over one column of a stored dataset or file",
	Long: `Runs stats, normalize, smooth, fft, peaks and baseline over the numeric values
of the --y column. The argument is a dataset id (or unique prefix); an existing
file path is parsed directly at full resolution instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		res, name, err := loadResult(args[0])
		if err != nil {
			return err
		}
		y := anaYColumn
		if y == "" {
			if len(res.YColumns) == 0 {
				return fmt.Errorf("--y is required: %s has no detected intensity columns", name)
			}
			y = res.YColumns[0]
		}
		series, err := analysis.ExtractSeries(res, y, anaXColumn)
		if err != nil {
			return err
		}
		logger.Debug("running analysis", logging.Fields{"source": name, "y": series.YColumn, "x": series.XColumn, "points": len(series.Y), "kinds": anaKinds})
		batch := analysis.Analyze(series, analysis.ParseKinds(anaKinds), c.AnalysisOptions())

		var out []byte
		if anaJSON {
			if out, err = utils.PrettyJSON(batch); err != nil {
				return err
			}
		} else {
			out = []byte(batch.Markdown())
		}
		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// loadResult parses arg when it names a file and otherwise loads the stored
// dataset it identifies.
func loadResult(arg string) (*parser.Result, string, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		opt, err := parserOptions()
		if err != nil {
			return nil, "", err
		}
		res, err := parser.ParseFile(arg, opt)
		if err != nil {
			return nil, "", err
		}
		if !res.DetectedFormat.Supported() {
			return nil, "", fmt.Errorf("%s: %w %q", arg, errUnsupportedFormat, res.DetectedFormat)
		}
		return res, arg, nil
	}
	s, err := openStore()
	if err != nil {
		return nil, "", err
	}
	defer s.Close()
	d, err := s.Get(arg)
	if err != nil {
		return nil, "", err
	}
	return d.Result, d.Filename, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&anaYColumn, "y", "", "intensity column (default: first detected Y column)")
	analyzeCmd.Flags().StringVar(&anaXColumn, "x", "", "X column (default: detected X column, else 'index')")
	analyzeCmd.Flags().StringVar(&anaKinds, "kind", "", "comma-separated analyses: stats,normalize,smooth,fft,peaks,baseline,all (default all)")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "print the analysis batch as JSON")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis")
}
