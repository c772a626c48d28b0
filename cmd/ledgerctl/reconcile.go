package main

import (
	"fmt"

	"github.com/GlebRadaev/examledger/internal/app"
	"github.com/spf13/cobra"
)

func reconcileCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconciliation sweep over pending purchases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pool, err := connect(cmd.Context(), load)
			if err != nil {
				return err
			}
			defer pool.Close()

			_, sweeper := app.NewReconciler(cfg, pool)
			defer sweeper.Close()

			summary, err := sweeper.Sweep(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "checked %d, applied %d\n", summary.Checked, summary.Applied)
			return err
		},
	}
}
