package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/erosionwatch/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set erosionwatch configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "id_column: %s\n", c.IDColumn)
		fmt.Fprintf(out, "date_layout: %s\n", c.DateLayout)
		fmt.Fprintf(out, "encoding: %s\n", c.Encoding)
		if c.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %s\n", c.Delimiter)
		}
		if c.DecimalSeparator != "" {
			fmt.Fprintf(out, "decimal_separator: %s\n", c.DecimalSeparator)
		}
		if c.ThousandsSeparator != "" {
			fmt.Fprintf(out, "thousands_separator: %s\n", c.ThousandsSeparator)
		}
		fmt.Fprintf(out, "threshold_y: %g\n", c.ThresholdY)
		fmt.Fprintf(out, "threshold_x: %g\n", c.ThresholdX)
		fmt.Fprintf(out, "threshold_a: %g\n", c.ThresholdA)
		fmt.Fprintf(out, "output_format: %s\n", c.OutputFormat)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "id_column":
			cfg.IDColumn = val
		case "date_layout":
			cfg.DateLayout = val
		case "encoding":
			cfg.Encoding = strings.ToLower(val)
		case "delimiter":
			cfg.Delimiter = val
		case "decimal_separator":
			cfg.DecimalSeparator = val
		case "thousands_separator":
			cfg.ThousandsSeparator = val
		case "threshold_y", "threshold_x", "threshold_a":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for %s: %w", key, err)
			}
			switch key {
			case "threshold_y":
				cfg.ThresholdY = f
			case "threshold_x":
				cfg.ThresholdX = f
			default:
				cfg.ThresholdA = f
			}
		case "output_format":
			cfg.OutputFormat = strings.ToLower(val)
		case "log_level":
			cfg.LogLevel = strings.ToLower(val)
		case "log_format":
			cfg.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
