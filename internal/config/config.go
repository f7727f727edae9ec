package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabviz/internal/utils"
)

// Global configuration structure.
type Global struct {
	// Parsing
	Delimiter          string   `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string   `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string   `mapstructure:"thousands_separator" yaml:"thousands_separator"`
	MissingValues      []string `mapstructure:"missing_values" yaml:"missing_values"`

	// Output
	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
	PlotWidth   int    `mapstructure:"plot_width" yaml:"plot_width"`
	PlotHeight  int    `mapstructure:"plot_height" yaml:"plot_height"`
	PreviewRows int    `mapstructure:"preview_rows" yaml:"preview_rows"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Dir returns ~/.tabviz.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabviz"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabviz/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TABVIZ")
	v.AutomaticEnv()

	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", ".")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("missing_values", []string{})
	v.SetDefault("output_dir", "")
	v.SetDefault("plot_width", 1200)
	v.SetDefault("plot_height", 800)
	v.SetDefault("preview_rows", 100)
	v.SetDefault("log_level", "warn")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve output_dir default: ~/.tabviz/plots
	if c.OutputDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.OutputDir = filepath.Join(dir, "plots")
	}
	out, err := utils.ExpandHome(c.OutputDir)
	if err != nil {
		return nil, err
	}
	c.OutputDir = out
	return &c, nil
}

// Rune returns the first rune of s, or 0 when s is empty. "\t" and "tab" mean a tab.
func Rune(s string) rune {
	switch s {
	case "":
		return 0
	case `\t`, "tab":
		return '\t'
	}
	return []rune(s)[0]
}
