package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/GlebRadaev/examledger/pkg/auth"
	"github.com/spf13/cobra"
)

func tokenCmd(load loader) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint a bearer token for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.Atoi(args[0])
			if err != nil || userID <= 0 {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.IsProduction() {
				return errors.New("tokens are issued by the identity provider in production")
			}

			token, err := auth.NewJWTService(cfg.JWTSecret).GenerateJWT(userID, time.Now().Add(ttl))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
