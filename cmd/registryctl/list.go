package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chaski/registry/internal/model"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [table...]",
		Short: "List stored records",
		Long: `List prints the first page of records of each table as JSON, keyed by
table. With no arguments every table is listed; tables are fetched
concurrently.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables := model.Tables
			if len(args) > 0 {
				tables = make([]model.Table, 0, len(args))
				for _, arg := range args {
					t, err := model.ParseTable(arg)
					if err != nil {
						return err
					}
					tables = append(tables, t)
				}
			}

			client := a.client()
			results := make([][]model.Record, len(tables))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, t := range tables {
				g.Go(func() error {
					recs, err := client.List(ctx, t)
					if err != nil {
						return fmt.Errorf("list %s: %w", t, err)
					}
					results[i] = recs
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := make(map[model.Table][]model.Record, len(tables))
			for i, t := range tables {
				out[t] = results[i]
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
