package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabviz/internal/analysis"
	"github.com/KaramelBytes/tabviz/internal/utils"
)

var (
	anaOutputPath string
	anaFormat     string
	anaNoCorr     bool
)

// analysisDoc is the structured form of an analysis for JSON/YAML output.
type analysisDoc struct {
	Dataset      string           `json:"dataset" yaml:"dataset"`
	DatasetID    string           `json:"dataset_id" yaml:"dataset_id"`
	Rows         int              `json:"rows" yaml:"rows"`
	Columns      int              `json:"columns" yaml:"columns"`
	Numeric      []string         `json:"numeric_columns" yaml:"numeric_columns"`
	Stats        []map[string]any `json:"stats" yaml:"stats"`
	Correlations []corrDoc        `json:"correlations,omitempty" yaml:"correlations,omitempty"`
	Notes        []string         `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type corrDoc struct {
	A string  `json:"a" yaml:"a"`
	B string  `json:"b" yaml:"b"`
	R float64 `json:"r" yaml:"r"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a CSV/TSV: column types, descriptive statistics and correlations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format := strings.ToLower(strings.TrimSpace(anaFormat))
		switch format {
		case "markdown", "md", "json", "yaml", "yml":
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown|json|yaml)", anaFormat)
		}
		s, err := newSession()
		if err != nil {
			return err
		}
		ds, err := s.Load(path)
		if err != nil {
			return err
		}
		rep, err := s.RefreshStatistics()
		if err != nil {
			return err
		}
		var corr *analysis.CorrMatrix
		var notes []string
		if !anaNoCorr {
			corr, err = s.Correlate()
			if err != nil {
				if !analysis.IsAdvisory(err) {
					return err
				}
				notes = append(notes, "correlations skipped: "+err.Error())
			}
		}

		var out []byte
		switch format {
		case "markdown", "md":
			var b strings.Builder
			b.WriteString(rep.Markdown())
			if corr != nil {
				b.WriteString(corr.Markdown())
			}
			for _, n := range notes {
				b.WriteString("\nNote: " + n + "\n")
			}
			out = []byte(b.String())
		default:
			doc := analysisDoc{
				Dataset:   ds.Name,
				DatasetID: ds.ID,
				Rows:      ds.Rows(),
				Columns:   ds.NumCols(),
				Numeric:   ds.NumericColumns(),
				Stats:     rep.Records(),
				Notes:     notes,
			}
			if corr != nil {
				for _, p := range corr.Pairs() {
					doc.Correlations = append(doc.Correlations, corrDoc{A: p.A, B: p.B, R: p.R})
				}
			}
			if format == "json" {
				out, err = utils.PrettyJSON(doc)
			} else {
				out, err = yaml.Marshal(doc)
			}
			if err != nil {
				return err
			}
		}

		if anaOutputPath != "" {
			if err := os.WriteFile(anaOutputPath, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(out), "\n"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "markdown", "output format: markdown|json|yaml")
	analyzeCmd.Flags().BoolVar(&anaNoCorr, "no-correlations", false, "skip the correlation matrix")
}
