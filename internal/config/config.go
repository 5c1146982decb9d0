package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Dataset layout
	IDColumn   string `mapstructure:"id_column" yaml:"id_column" validate:"required"`
	DateLayout string `mapstructure:"date_layout" yaml:"date_layout" validate:"required"`
	Encoding   string `mapstructure:"encoding" yaml:"encoding" validate:"oneof=latin1 latin-1 iso-8859-1 utf-8 utf8"`
	Delimiter  string `mapstructure:"delimiter" yaml:"delimiter"`
	// Numeric locale; empty means plain '.' decimals, "auto" detects per value.
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`

	// Per-variable thresholds
	ThresholdY float64 `mapstructure:"threshold_y" yaml:"threshold_y"`
	ThresholdX float64 `mapstructure:"threshold_x" yaml:"threshold_x"`
	ThresholdA float64 `mapstructure:"threshold_a" yaml:"threshold_a"`

	OutputFormat string `mapstructure:"output_format" yaml:"output_format" validate:"oneof=markdown md csv json"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat    string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=console json"`
}

var validate = validator.New()

// Validate checks enumerated and required fields.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := DelimiterRune(c.Delimiter); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := DecimalRune(c.DecimalSeparator); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := ThousandsRune(c.ThousandsSeparator); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DelimiterRune maps ','|';'|'tab' (or their names) to a CSV delimiter; empty means auto.
func DelimiterRune(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "\t", "tab":
		return '\t', nil
	}
	return 0, fmt.Errorf("unsupported delimiter: %s", s)
}

// DecimalRune maps '.'|'comma' to a decimal separator. Empty (plain '.') and
// "auto" (see IsAutoDecimal) both yield 0.
func DecimalRune(s string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ".", "dot":
		return '.', nil
	}
	return 0, fmt.Errorf("unsupported decimal separator: %s (use '.'|'comma'|'auto')", s)
}

// IsAutoDecimal reports whether separators should be detected per value.
func IsAutoDecimal(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "auto")
}

// ThousandsRune maps ','|'.'|'space' to a thousands separator; empty means no grouping.
func ThousandsRune(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ".", "dot":
		return '.', nil
	case " ", "space":
		return ' ', nil
	}
	return 0, fmt.Errorf("unsupported thousands separator: %s (use ','|'.'|'space')", s)
}

// Defaults returns the built-in configuration used when no file or env overrides exist.
func Defaults() *Global {
	return &Global{
		IDColumn:     "Abscisa",
		DateLayout:   "1/2/2006",
		Encoding:     "latin1",
		ThresholdY:   0.6,
		ThresholdX:   2.0,
		ThresholdA:   0.3,
		OutputFormat: "markdown",
		LogLevel:     "warn",
		LogFormat:    "console",
	}
}

// Dir returns ~/.erosionwatch.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".erosionwatch"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.erosionwatch/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	if err := c.Validate(); err != nil {
		return err
	}
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
// Precedence: env > config file > defaults; CLI flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("EROSIONWATCH")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("id_column", d.IDColumn)
	v.SetDefault("date_layout", d.DateLayout)
	v.SetDefault("encoding", d.Encoding)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("decimal_separator", d.DecimalSeparator)
	v.SetDefault("thousands_separator", d.ThousandsSeparator)
	v.SetDefault("threshold_y", d.ThresholdY)
	v.SetDefault("threshold_x", d.ThresholdX)
	v.SetDefault("threshold_a", d.ThresholdA)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
