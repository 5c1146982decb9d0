package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/erosionwatch/internal/analysis"
	cfgpkg "github.com/KaramelBytes/erosionwatch/internal/config"
)

var (
	anaInput     inputFlags
	anaVariable  string
	anaThreshold float64
	anaColumn    string
	anaFormat    string
	anaTable     string
	anaOutput    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Flag locations below threshold and project threshold crossing dates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, f, sel, err := variableSettings(cmd, anaVariable, anaThreshold, anaColumn, anaFormat, anaTable)
		if err != nil {
			return err
		}
		ds, err := anaInput.load(args[0])
		if err != nil {
			return err
		}
		res, err := analysis.NewAnalyzer(logger).Analyze(ds, params)
		if err != nil {
			return err
		}
		body, err := renderVariable(res, f, sel)
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), anaOutput, body, "analysis")
	},
}

// variableSettings resolves per-variable parameters; explicit flags win over config.
func variableSettings(cmd *cobra.Command, variable string, threshold float64, column, format, table string) (analysis.Params, analysis.Format, tableSelection, error) {
	c := settings()
	v, err := analysis.ParseVariable(variable)
	if err != nil {
		return analysis.Params{}, "", "", err
	}
	p := analysis.Params{Variable: v, Threshold: thresholdFor(c, v), Column: column}
	if cmd.Flags().Changed("threshold") {
		p.Threshold = threshold
	}
	f, err := analysis.ParseFormat(pick(format, c.OutputFormat))
	if err != nil {
		return p, "", "", err
	}
	sel, err := parseTableSelection(table)
	if err != nil {
		return p, "", "", err
	}
	return p, f, sel, nil
}

func thresholdFor(c *cfgpkg.Global, v analysis.Variable) float64 {
	switch v {
	case analysis.VariableX:
		return c.ThresholdX
	case analysis.VariableA:
		return c.ThresholdA
	default:
		return c.ThresholdY
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaInput.register(analyzeCmd.Flags())
	analyzeCmd.Flags().StringVarP(&anaVariable, "variable", "v", "Y", "surveyed variable: Y|X|A")
	analyzeCmd.Flags().Float64VarP(&anaThreshold, "threshold", "t", 0, "alert threshold (default from config for the variable)")
	analyzeCmd.Flags().StringVarP(&anaColumn, "column", "c", "", "date column for instant alerts (default: latest date)")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "", "output format: markdown|csv|json (default from config)")
	analyzeCmd.Flags().StringVar(&anaTable, "table", "both", "tables to include in CSV output: both|instant|trend")
	analyzeCmd.Flags().StringVarP(&anaOutput, "output", "o", "", "optional path to write the report")
}
