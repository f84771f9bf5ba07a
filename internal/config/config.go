// =============================================================================
// NFC-e to PDF Converter - Configuration Module
// =============================================================================
//
// This module loads the converter settings. Values are resolved from, in
// order of precedence:
//
//   1. Command-line flags that were explicitly set
//   2. Environment variables prefixed with DANFE_ (DANFE_PAPER,
//      DANFE_LOGGER_LEVEL, DANFE_EXCEL_PATH, ...)
//   3. The YAML configuration file (danfe.yaml unless --config is given)
//   4. Built-in defaults
//
// A sample file with every key and its default is produced by WriteDefault
// (`danfe init-config`).
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/layout"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file read when --config is not given.
const DefaultPath = "danfe.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DANFE"

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the converter settings.
type Config struct {
	// Paper selects the page preset: "A4" or "80mm".
	Paper string `mapstructure:"paper" yaml:"paper"`

	// Glob is the file name pattern matched in a source directory.
	Glob string `mapstructure:"glob" yaml:"glob"`

	// Recursive also scans the subdirectories of a source directory.
	Recursive bool `mapstructure:"recursive" yaml:"recursive"`

	// NameByKey names each PDF after the document's access key, falling back
	// to the source file name when there is none.
	NameByKey bool `mapstructure:"name_by_key" yaml:"name_by_key"`

	Excel  ExcelConfig  `mapstructure:"excel" yaml:"excel"`
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
}

// ExcelConfig controls the item table export.
type ExcelConfig struct {
	// Enabled turns the export on for directory runs.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Path is the table destination (.xlsx or .csv). Empty means
	// NFCe_itens.xlsx inside the output directory.
	Path string `mapstructure:"path" yaml:"path"`
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Paper:     "A4",
		Glob:      "*.xml",
		Recursive: false,
		NameByKey: true,
		Excel: ExcelConfig{
			Enabled: true,
			Path:    "",
		},
		Logger: LoggerConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stderr",
		},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"paper":       "paper",
	"glob":        "glob",
	"recursive":   "recursive",
	"name-by-key": "name_by_key",
	"excel":       "excel.path",
	"log-level":   "logger.level",
	"log-format":  "logger.format",
}

// Load resolves the configuration.
//
// PARAMETERS:
//   - path: YAML file to read; "" skips the file layer.
//   - flags: the command's flags; nil skips the flag layer. Only flags that
//     exist in the set and were changed take effect.
//
// RETURNS:
//   - The validated configuration.
//   - An error if the file cannot be read or a value is invalid.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if flags != nil {
		applyFlagOverrides(&cfg, flags)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ResolvePath returns the file Load should read: the --config value when it
// was given, otherwise DefaultPath if it exists, otherwise "".
func ResolvePath(flagValue string, changed bool) string {
	if changed {
		return flagValue
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// setDefaults registers every key so environment overrides resolve.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("paper", d.Paper)
	v.SetDefault("glob", d.Glob)
	v.SetDefault("recursive", d.Recursive)
	v.SetDefault("name_by_key", d.NameByKey)

	v.SetDefault("excel.enabled", d.Excel.Enabled)
	v.SetDefault("excel.path", d.Excel.Path)

	v.SetDefault("logger.level", d.Logger.Level)
	v.SetDefault("logger.format", d.Logger.Format)
	v.SetDefault("logger.output_path", d.Logger.OutputPath)
}

// applyFlagOverrides handles flags that do not map one to one onto a key.
func applyFlagOverrides(cfg *Config, flags *pflag.FlagSet) {
	if flags.Changed("no-excel") {
		if off, err := flags.GetBool("no-excel"); err == nil && off {
			cfg.Excel.Enabled = false
		}
	}
	if flags.Changed("excel") && cfg.Excel.Path != "" {
		cfg.Excel.Enabled = true
	}
	if flags.Changed("verbose") {
		if on, err := flags.GetBool("verbose"); err == nil && on {
			cfg.Logger.Level = "debug"
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks every value and normalizes the paper name.
func (c *Config) Validate() error {
	geometry, err := layout.PaperByName(c.Paper)
	if err != nil {
		return fmt.Errorf("%w: paper: %v", ErrInvalidConfig, err)
	}
	c.Paper = geometry.Name

	if strings.TrimSpace(c.Glob) == "" {
		return fmt.Errorf("%w: glob must not be empty", ErrInvalidConfig)
	}
	if _, err := filepath.Match(c.Glob, ""); err != nil {
		return fmt.Errorf("%w: glob %q: %v", ErrInvalidConfig, c.Glob, err)
	}

	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logger.format must be console or json, got %q", ErrInvalidConfig, c.Logger.Format)
	}

	return nil
}

// Geometry returns the page preset selected by Paper.
func (c *Config) Geometry() layout.Geometry {
	g, err := layout.PaperByName(c.Paper)
	if err != nil {
		return layout.A4()
	}
	return g
}

// =============================================================================
// SAMPLE FILE
// =============================================================================

// WriteDefault writes the built-in settings as YAML to path. An existing
// file is left untouched unless overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
