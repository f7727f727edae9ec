package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var plotColumn string

var plotCmd = &cobra.Command{
	Use:       "plot <scatter|heatmap|line> <file>",
	Short:     "Render a scatter matrix, correlation heatmap or line chart as PNG",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"scatter", "heatmap", "line"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, path := args[0], args[1]
		switch kind {
		case "scatter", "heatmap", "line":
		default:
			return fmt.Errorf("unknown plot kind: %s (use scatter|heatmap|line)", kind)
		}
		if kind == "line" && plotColumn == "" {
			return fmt.Errorf("--column is required for line plots")
		}
		s, err := newSession()
		if err != nil {
			return err
		}
		if _, err := s.Load(path); err != nil {
			return err
		}
		var out string
		switch kind {
		case "scatter":
			out, err = s.PlotCorrelation()
		case "heatmap":
			out, err = s.PlotHeatmap()
		case "line":
			out, err = s.PlotLine(plotColumn)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s plot to %s\n", kind, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().StringVarP(&plotColumn, "column", "c", "", "numeric column for line plots")
}
