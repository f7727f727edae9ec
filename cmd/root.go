package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/tabviz/internal/analysis"
	cfgpkg "github.com/KaramelBytes/tabviz/internal/config"
	"github.com/KaramelBytes/tabviz/internal/logging"
	"github.com/KaramelBytes/tabviz/internal/plot"
	"github.com/KaramelBytes/tabviz/internal/session"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Parsing/output flags (override config if set)
	flagDelimiter string
	flagDecimal   string
	flagThousands string
	flagOutputDir string

	// Loaded configuration and diagnostics logger
	cfg    *cfgpkg.Global
	logger *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "tabviz",
	Short: "tabviz: load delimited tables, describe them, and plot their numeric columns",
	Long: `tabviz loads a CSV/TSV file, infers which columns are numeric, computes descriptive
statistics and Pearson correlations, and renders scatter matrices, correlation heatmaps and
line charts as PNG files. Every action is recorded in a timestamped log.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tabviz/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "field delimiter: ','|';'|'tab'|'|' (sniffed if omitted)")
	rootCmd.PersistentFlags().StringVar(&flagDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	rootCmd.PersistentFlags().StringVar(&flagThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	rootCmd.PersistentFlags().StringVar(&flagOutputDir, "out-dir", "", "directory for rendered plots (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{DecimalSeparator: ".", PreviewRows: 100, LogLevel: "warn"}
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}
	if f.Changed("decimal") {
		cfg.DecimalSeparator = flagDecimal
	}
	if f.Changed("thousands") {
		cfg.ThousandsSeparator = flagThousands
	}
	if f.Changed("out-dir") && flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}

	l, err := logging.New(cfg.LogLevel, debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v; using default log level\n", err)
		l, err = logging.New("", debug)
	}
	if err != nil {
		l = logging.Nop()
	}
	logger = l
}

// parseOptions turns the effective configuration into parser options.
func parseOptions(c *cfgpkg.Global) (analysis.Options, error) {
	opt := analysis.DefaultOptions()
	switch strings.ToLower(c.Delimiter) {
	case "":
	case ",", ";", "|":
		opt.Delimiter = cfgpkg.Rune(c.Delimiter)
	case "\t", `\t`, "tab":
		opt.Delimiter = '\t'
	default:
		return opt, fmt.Errorf("unsupported delimiter: %s", c.Delimiter)
	}
	// Locale separators
	switch strings.ToLower(strings.TrimSpace(c.DecimalSeparator)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot", "":
		opt.DecimalSeparator = '.'
	default:
		return opt, fmt.Errorf("unsupported decimal separator: %s (use '.'|'comma')", c.DecimalSeparator)
	}
	switch strings.ToLower(c.ThousandsSeparator) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported thousands separator: %s (use ','|'.'|'space')", c.ThousandsSeparator)
	}
	if opt.DecimalSeparator == opt.ThousandsSeparator {
		return opt, fmt.Errorf("decimal and thousands separators must differ")
	}
	opt.MissingValues = append(opt.MissingValues, c.MissingValues...)
	return opt, nil
}

// newSession builds a session over the OS filesystem from the effective configuration.
func newSession() (*session.Session, error) {
	c := cfg
	if c == nil {
		c = &cfgpkg.Global{}
	}
	opt, err := parseOptions(c)
	if err != nil {
		return nil, err
	}
	l := logger
	if l == nil {
		l = logging.Nop()
	}
	return session.New(
		session.WithOptions(opt),
		session.WithLogger(l),
		session.WithRenderer(plot.NewPNGRenderer(c.OutputDir, c.PlotWidth, c.PlotHeight)),
	), nil
}
