// Command ledgerctl is the operator tool for the exam ledger: schema
// migrations, manual credit grants, one-off reconciliation and local tokens.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/GlebRadaev/examledger/internal/app"
	"github.com/GlebRadaev/examledger/internal/config"
	"github.com/GlebRadaev/examledger/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("ledgerctl failed")
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Operator tool for the exam credit ledger",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before the environment")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(envFile)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		if err := logger.InitLogger(cfg); err != nil {
			return nil, fmt.Errorf("can't init logger: %w", err)
		}
		return cfg, nil
	}

	cmd.AddCommand(migrateCmd(load))
	cmd.AddCommand(grantCmd(load))
	cmd.AddCommand(reconcileCmd(load))
	cmd.AddCommand(tokenCmd(load))
	return cmd
}

type loader func() (*config.Config, error)

func connect(ctx context.Context, load loader) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := app.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("can't connect to database: %w", err)
	}
	return cfg, pool, nil
}
