package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/erosionwatch/internal/analysis"
	"github.com/KaramelBytes/erosionwatch/internal/utils"
)

var (
	abInput     inputFlags
	abVariable  string
	abThreshold float64
	abColumn    string
	abFormat    string
	abTable     string
	abOutDir    string
	abQuiet     bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV/XLSX survey files of one variable with progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		params, f, sel, err := variableSettings(cmd, abVariable, abThreshold, abColumn, abFormat, abTable)
		if err != nil {
			return err
		}
		if abOutDir != "" {
			if err := utils.EnsureDir(abOutDir); err != nil {
				return fmt.Errorf("create --out-dir: %w", err)
			}
		}
		out := cmd.OutOrStdout()
		an := analysis.NewAnalyzer(logger)

		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			ds, err := abInput.load(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			res, err := an.Analyze(ds, params)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			body, err := renderVariable(res, f, sel)
			if err != nil {
				return err
			}
			if abOutDir == "" {
				if !abQuiet {
					fmt.Fprintln(out, string(body))
				}
				continue
			}
			dest := reportPath(abOutDir, path, params.Variable, abInput.sheetName, formatExt(f))
			if err := utils.SafeWriteFile(dest, body); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Wrote %s\n", dest)
			}
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths into a sorted, de-duplicated list.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

// reportPath builds <base>[__sheet-<name>].<variable><ext> in dir, adding a
// __N suffix when the file already exists so earlier reports are never overwritten.
func reportPath(dir, input string, v analysis.Variable, sheet, ext string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if sheet != "" {
		stem += "__sheet-" + slug(sheet)
	}
	suffix := "." + strings.ToLower(string(v)) + ext
	dest := filepath.Join(dir, stem+suffix)
	if _, err := os.Stat(dest); err != nil {
		return dest
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d%s", stem, idx, suffix))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand
		}
	}
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else if r == ' ' || r == '-' || r == '_' {
			b.WriteRune('-')
		}
	}
	ss := strings.Trim(b.String(), "-")
	if ss == "" {
		ss = "sheet"
	}
	return ss
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abInput.register(analyzeBatchCmd.Flags())
	analyzeBatchCmd.Flags().StringVarP(&abVariable, "variable", "v", "Y", "surveyed variable: Y|X|A")
	analyzeBatchCmd.Flags().Float64VarP(&abThreshold, "threshold", "t", 0, "alert threshold (default from config for the variable)")
	analyzeBatchCmd.Flags().StringVarP(&abColumn, "column", "c", "", "date column for instant alerts (default: latest date)")
	analyzeBatchCmd.Flags().StringVarP(&abFormat, "format", "f", "", "output format: markdown|csv|json (default from config)")
	analyzeBatchCmd.Flags().StringVar(&abTable, "table", "both", "tables to include in CSV output: both|instant|trend")
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory to write one report per input file")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
