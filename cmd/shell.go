package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabviz/internal/analysis"
	"github.com/KaramelBytes/tabviz/internal/session"
)

const shellHelp = `Commands:
  load <path>     load a CSV/TSV file (replaces the current dataset)
  stats           show descriptive statistics
  corr            plot pairwise scatter matrix of numeric columns
  heatmap         plot the correlation heatmap
  line <column>   plot a numeric column as a line chart
  clear-log       clear the action log
  log             show the action log
  columns         list columns and their types
  head [n]        preview the first rows
  help            show this help
  quit            exit`

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		preview := 100
		if cfg != nil && cfg.PreviewRows > 0 {
			preview = cfg.PreviewRows
		}
		sh := &shell{s: s, out: cmd.OutOrStdout(), preview: preview}
		return sh.run(cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

type shell struct {
	s       *session.Session
	out     io.Writer
	preview int
}

func (sh *shell) run(in io.Reader) error {
	fmt.Fprintln(sh.out, "tabviz interactive session. Type 'help' for commands.")
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(sh.out, "tabviz> ")
		if !sc.Scan() {
			fmt.Fprintln(sh.out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		name, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		if name == "quit" || name == "exit" {
			return nil
		}
		sh.dispatch(name, arg)
	}
}

func (sh *shell) dispatch(name, arg string) {
	switch name {
	case "load":
		if arg == "" {
			sh.warn(fmt.Errorf("usage: load <path>"))
			return
		}
		sh.load(arg)
	case "stats":
		sh.stats()
	case "corr":
		sh.plotted(sh.s.PlotCorrelation())
	case "heatmap":
		sh.plotted(sh.s.PlotHeatmap())
	case "line":
		sh.plotted(sh.s.PlotLine(arg))
	case "clear-log":
		sh.s.ClearLog()
		fmt.Fprintln(sh.out, "✓ Log cleared")
	case "log":
		for _, l := range sh.s.Log().Render() {
			fmt.Fprintln(sh.out, l)
		}
	case "columns":
		sh.columns()
	case "head":
		sh.head(arg)
	case "help":
		fmt.Fprintln(sh.out, shellHelp)
	default:
		sh.warn(fmt.Errorf("unknown command %q (type 'help')", name))
	}
}

func (sh *shell) load(path string) {
	ds, err := sh.s.Load(path)
	if err != nil {
		sh.fail(err)
		return
	}
	fmt.Fprintf(sh.out, "✓ Loaded %s: %d rows, %d columns\n", path, ds.Rows(), ds.NumCols())
	sh.stats()
	num := ds.NumericColumns()
	if len(num) == 0 {
		sh.warn(fmt.Errorf("no numeric columns; plots are unavailable"))
		return
	}
	fmt.Fprintf(sh.out, "Numeric columns: %s\n", strings.Join(num, ", "))
}

func (sh *shell) stats() {
	rep, err := sh.s.RefreshStatistics()
	if err != nil {
		sh.report(err)
		return
	}
	fmt.Fprint(sh.out, rep.Text())
}

func (sh *shell) plotted(path string, err error) {
	if err != nil {
		sh.report(err)
		return
	}
	fmt.Fprintf(sh.out, "✓ Plot written to %s\n", path)
}

func (sh *shell) columns() {
	ds := sh.s.Dataset()
	if ds == nil {
		sh.warn(analysis.ErrNoDataset)
		return
	}
	tw := tabwriter.NewWriter(sh.out, 0, 4, 2, ' ', 0)
	for _, name := range ds.Columns() {
		c, _ := ds.Column(name)
		fmt.Fprintf(tw, "%s\t%s\t%d missing\n", name, c.Kind(), c.MissingCount())
	}
	tw.Flush()
}

func (sh *shell) head(arg string) {
	ds := sh.s.Dataset()
	if ds == nil {
		sh.warn(analysis.ErrNoDataset)
		return
	}
	n := sh.preview
	if arg != "" {
		v, err := strconv.Atoi(arg)
		if err != nil || v < 0 {
			sh.warn(fmt.Errorf("usage: head [n]"))
			return
		}
		n = v
	}
	tw := tabwriter.NewWriter(sh.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(ds.Columns(), "\t"))
	for _, row := range ds.Head(n) {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// report prints advisory refusals as warnings and everything else as errors.
func (sh *shell) report(err error) {
	if analysis.IsAdvisory(err) {
		sh.warn(err)
		return
	}
	sh.fail(err)
}

func (sh *shell) warn(err error) { fmt.Fprintf(sh.out, "⚠ Warning: %v\n", err) }
func (sh *shell) fail(err error) { fmt.Fprintf(sh.out, "✗ Error: %v\n", err) }
