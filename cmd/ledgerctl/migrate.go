package main

import (
	"fmt"

	"github.com/GlebRadaev/examledger/internal/pg"
	"github.com/spf13/cobra"
)

func migrateCmd(load loader) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, pool, err := connect(cmd.Context(), load)
			if err != nil {
				return err
			}
			defer pool.Close()

			if status {
				return pg.MigrationStatus(pool)
			}
			if err := pg.RunMigrations(pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "print migration status instead of migrating")
	return cmd
}
