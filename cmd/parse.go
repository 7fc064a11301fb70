package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/brettadin/Anything-SpecApp/internal/analysis"
	"github.com/brettadin/Anything-SpecApp/internal/parser"
	"github.com/brettadin/Anything-SpecApp/internal/utils"
)

var (
	parseJSON       bool
	parseOutputPath string
	parseSampleRows int
	parseCorr       bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Classify a file and print its dataset summary without storing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opt, err := parserOptions()
		if err != nil {
			return err
		}
		res, err := parser.ParseFile(path, opt)
		if err != nil {
			return err
		}

		var out []byte
		if parseJSON {
			if out, err = utils.PrettyJSON(res); err != nil {
				return err
			}
		} else {
			sopt := analysis.DefaultSummaryOptions()
			sopt.SampleRows = parseSampleRows
			sopt.Correlations = parseCorr
			out = []byte(analysis.Summarize(filepath.Base(path), res, 0, sopt).Markdown())
		}

		if parseOutputPath != "" {
			if err := utils.SafeWriteFile(parseOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s result to %s\n", res.DetectedFormat, parseOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print the full parse result as JSON")
	parseCmd.Flags().StringVarP(&parseOutputPath, "output", "o", "", "optional path to write the result")
	parseCmd.Flags().IntVar(&parseSampleRows, "sample-rows", 5, "number of sample rows to include in the summary")
	parseCmd.Flags().BoolVar(&parseCorr, "correlations", false, "compute Pearson correlations among numeric columns")
}
