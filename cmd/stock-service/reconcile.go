package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func reconcileCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "reconcile",
		Aliases: []string{"update-stock"},
		Short:   "Apply the exported order file to stock once",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.reconciler.Reconcile(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			if !report.SourceFound {
				fmt.Fprintf(out, "no file at %s, nothing to do\n", report.Source)
				return nil
			}
			fmt.Fprintf(out, "rows: %d  applied: %d  skipped: %d  unmatched: %d  failed: %d\n",
				report.Rows, len(report.Applied), len(report.Skipped), len(report.Unmatched), len(report.Failed))
			for _, u := range report.Unmatched {
				fmt.Fprintf(out, "  unmatched line %d: %s\n", u.Line, u.Name)
			}
			if report.ArchivedTo != "" {
				fmt.Fprintf(out, "archived to %s\n", report.ArchivedTo)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	return cmd
}
