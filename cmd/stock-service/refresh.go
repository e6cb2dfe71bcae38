package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func refreshCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Replace the catalog with a fresh pull from the catalog source",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if limit > 0 {
				items, err := a.source.FetchItems(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("fetch catalog: %w", err)
				}
				products, err := a.catalog.RefreshItems(cmd.Context(), items)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "catalog refreshed: %d products\n", len(products))
				return nil
			}

			products, err := a.catalog.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog refreshed: %d products\n", len(products))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "number of catalog entries to pull (default CATALOG_LIMIT)")
	return cmd
}
