package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brettadin/Anything-SpecApp/internal/utils"
)

var exportOutputPath string

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write a stored dataset to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportOutputPath == "" {
			return fmt.Errorf("--output is required")
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		d, err := s.Get(args[0])
		if err != nil {
			return err
		}
		b, err := utils.PrettyJSON(d)
		if err != nil {
			return err
		}
		if err := utils.SafeWriteFile(exportOutputPath, b); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %s to %s\n", d.ID, exportOutputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutputPath, "output", "o", "", "destination JSON file")
}
