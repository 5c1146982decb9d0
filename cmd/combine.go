package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/erosionwatch/internal/analysis"
)

var (
	cmbInput   inputFlags
	cmbFormat  string
	cmbOutput  string
	cmbWarnOut bool
)

// per-variable --y/--x/--a and --threshold-* flag values
var (
	cmbFiles  = map[analysis.Variable]*string{}
	cmbThresh = map[analysis.Variable]*float64{}
)

var combineCmd = &cobra.Command{
	Use:   "combine --y <file> --x <file> --a <file>",
	Short: "Combine Y, X and A trend results into a composite risk status per location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		f, err := analysis.ParseFormat(pick(cmbFormat, c.OutputFormat))
		if err != nil {
			return err
		}
		an := analysis.NewAnalyzer(logger)
		results := map[analysis.Variable]*analysis.VariableResult{}
		for _, v := range analysis.Variables {
			path := *cmbFiles[v]
			if path == "" {
				return fmt.Errorf("%w: missing --%s", analysis.ErrIncompleteVariables, flagName(v))
			}
			thr := thresholdFor(c, v)
			if cmd.Flags().Changed("threshold-" + flagName(v)) {
				thr = *cmbThresh[v]
			}
			ds, err := cmbInput.load(path)
			if err != nil {
				return fmt.Errorf("variable %s: %w", v, err)
			}
			res, err := an.Analyze(ds, analysis.Params{Variable: v, Threshold: thr})
			if err != nil {
				return fmt.Errorf("variable %s: %w", v, err)
			}
			if cmbWarnOut {
				for _, w := range res.Warnings {
					fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s (%s): %s\n", v, res.Name, w)
				}
			}
			results[v] = res
		}
		comp, err := analysis.Combine(results[analysis.VariableY], results[analysis.VariableX], results[analysis.VariableA])
		if err != nil {
			return err
		}
		body, err := renderComposite(comp, f)
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), cmbOutput, body, "composite analysis")
	},
}

func flagName(v analysis.Variable) string {
	switch v {
	case analysis.VariableX:
		return "x"
	case analysis.VariableA:
		return "a"
	default:
		return "y"
	}
}

func init() {
	rootCmd.AddCommand(combineCmd)
	cmbInput.register(combineCmd.Flags())
	for _, v := range analysis.Variables {
		name := flagName(v)
		cmbFiles[v] = combineCmd.Flags().String(name, "", fmt.Sprintf("survey file for variable %s", v))
		cmbThresh[v] = combineCmd.Flags().Float64("threshold-"+name, 0, fmt.Sprintf("threshold for %s (default from config)", v))
	}
	combineCmd.Flags().StringVarP(&cmbFormat, "format", "f", "", "output format: markdown|csv|json (default from config)")
	combineCmd.Flags().StringVarP(&cmbOutput, "output", "o", "", "optional path to write the composite table")
	combineCmd.Flags().BoolVar(&cmbWarnOut, "warnings", true, "print per-variable warnings to stderr")
}
