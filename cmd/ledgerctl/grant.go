package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/GlebRadaev/examledger/internal/app"
	"github.com/spf13/cobra"
)

func grantCmd(load loader) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "grant <user-id> <credits>",
		Short: "Add credits to a user outside of any payment",
		Long: `Add credits to a user outside of any payment, e.g. to settle a support case.

The grant is recorded as a completed ADMIN_CREDIT transaction.

Examples:
  ledgerctl grant 42 50 --reason "refund for ticket 1234"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, credits, err := parseGrantArgs(args)
			if err != nil {
				return err
			}
			if reason == "" {
				return errors.New("--reason is required")
			}

			cfg, pool, err := connect(cmd.Context(), load)
			if err != nil {
				return err
			}
			defer pool.Close()

			services, _ := app.NewReconciler(cfg, pool)
			grant, err := services.LedgerService.GrantCredits(cmd.Context(), userID, credits, reason)
			if err != nil {
				return err
			}
			balance, err := services.LedgerService.Balance(cmd.Context(), userID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "granted %d credits to user %d (transaction %d), balance %d\n",
				credits, userID, grant.ID, balance)
			return nil
		},
	}
	cmd.Flags().StringVarP(&reason, "reason", "r", "", "why the credits are granted, kept in the audit trail")
	return cmd
}

func parseGrantArgs(args []string) (userID, credits int, err error) {
	if userID, err = strconv.Atoi(args[0]); err != nil || userID <= 0 {
		return 0, 0, fmt.Errorf("invalid user id %q", args[0])
	}
	if credits, err = strconv.Atoi(args[1]); err != nil || credits <= 0 {
		return 0, 0, fmt.Errorf("invalid credits %q", args[1])
	}
	return userID, credits, nil
}
