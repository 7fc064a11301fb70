package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/brettadin/Anything-SpecApp/internal/analysis"
	"github.com/brettadin/Anything-SpecApp/internal/utils"
)

var (
	showRows int
	showJSON bool
	showCorr bool
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a stored dataset summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		d, err := s.Get(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if showJSON {
			b, err := utils.PrettyJSON(d)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}

		fmt.Fprintf(out, "ID: %s\n", d.ID)
		fmt.Fprintf(out, "Uploaded: %s\n", d.UploadedAt.Local().Format(time.DateTime))
		if d.Description != "" {
			fmt.Fprintf(out, "Description: %s\n", d.Description)
		}
		if d.SampleStride > 1 {
			fmt.Fprintf(out, "Stored every %d rows of %d\n", d.SampleStride, d.RowCount)
		}
		fmt.Fprintln(out)
		opt := analysis.DefaultSummaryOptions()
		opt.SampleRows = showRows
		opt.Correlations = showCorr
		fmt.Fprintln(out, analysis.Summarize(d.Filename, d.Result, d.RowCount, opt).Markdown())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVar(&showRows, "rows", 5, "number of sample rows to include")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the stored dataset as JSON")
	showCmd.Flags().BoolVar(&showCorr, "correlations", false, "compute Pearson correlations among numeric columns")
}
