package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gethuk-security/api-security-lab/internal/auth"
	"github.com/gethuk-security/api-security-lab/internal/config"
	"github.com/gethuk-security/api-security-lab/internal/server"
	"github.com/gethuk-security/api-security-lab/internal/store"
)

func newServerCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the lab HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			st, err := store.Open(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			first, err := st.FirstRun(ctx)
			if err != nil {
				return err
			}
			if err := st.EnsureSchema(ctx); err != nil {
				return err
			}
			if first {
				logger.Info("first run, seeding database", slog.String("path", cfg.DatabasePath))
				if err := st.Seed(ctx, auth.NewPasswordService(), logger); err != nil {
					return err
				}
			}

			return server.New(cfg, st, logger).Run(ctx)
		},
	}
}
