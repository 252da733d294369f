package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chaski/registry/internal/model"
)

func newUpdateCmd(a *app) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "update <table> <id>",
		Short: "Change fields of a stored record (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := model.ParseTable(args[0])
			if err != nil {
				return err
			}
			values, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			if len(values) == 0 {
				return fmt.Errorf("nothing to update: pass --set name=value")
			}

			fields := make(model.Fields, len(values))
			for k, v := range values {
				fields[k] = v
			}
			rec, err := a.client().Update(cmd.Context(), table, args[1], fields)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as name=value (repeatable)")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <id>",
		Short: "Remove a stored record (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := model.ParseTable(args[0])
			if err != nil {
				return err
			}
			if err := a.client().Delete(cmd.Context(), table, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s/%s\n", table, args[1])
			return nil
		},
	}
}
