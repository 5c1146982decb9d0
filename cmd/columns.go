package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var colInput inputFlags

var columnsCmd = &cobra.Command{
	Use:   "columns <file>",
	Short: "List the date columns detected in a survey file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := colInput.load(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "File: %s\n", ds.Name)
		fmt.Fprintf(out, "ID column: %s (%d locations", ds.IDColumn, ds.Len())
		if ds.Dropped > 0 {
			fmt.Fprintf(out, ", %d dropped", ds.Dropped)
		}
		fmt.Fprintln(out, ")")
		if len(ds.Dates) == 0 {
			fmt.Fprintln(out, "(no date-format columns detected)")
			return nil
		}
		fmt.Fprintf(out, "Date columns (%d):\n", len(ds.Dates))
		for _, dc := range ds.Dates {
			fmt.Fprintf(out, "- %s (%s, day %d)\n", dc.Label, dc.Date.Format("2006-01-02"), dc.Offset)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
	colInput.register(columnsCmd.Flags())
}
