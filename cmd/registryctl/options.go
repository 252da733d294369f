package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chaski/registry/internal/workflow"
)

func newOptionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show the choices offered by the forms",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "classifications",
		Short: "Event classifications in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := workflow.ClassificationOptions(cmd.Context(), a.client())
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", workflow.ErrorMessage(err))
			}
			for _, o := range opts {
				fmt.Fprintln(cmd.OutOrStdout(), o)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "teams",
		Short: "Teams a member can join",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := workflow.TeamOptions(cmd.Context(), a.client())
			if err != nil {
				return err
			}
			for _, o := range opts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", o.ID, o.Name)
			}
			return nil
		},
	})
	return cmd
}
