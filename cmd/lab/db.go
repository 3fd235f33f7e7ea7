package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gethuk-security/api-security-lab/internal/auth"
	"github.com/gethuk-security/api-security-lab/internal/config"
	"github.com/gethuk-security/api-security-lab/internal/store"
)

func newInitCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database schema without seeding",
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

			if err := st.EnsureSchema(cmd.Context()); err != nil {
				return err
			}
			logger.Info("schema created", slog.String("path", cfg.DatabasePath))
			return nil
		},
	}
}

func newSeedCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo users, products, events, coupons and challenges",
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
			if err := st.EnsureSchema(ctx); err != nil {
				return err
			}
			if err := st.Seed(ctx, auth.NewPasswordService(), logger); err != nil {
				return err
			}
			logger.Info("database seeded", slog.String("path", cfg.DatabasePath))
			return nil
		},
	}
}

func newResetCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the database file and rebuild it with fresh seed data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := store.RemoveFile(cfg.DatabasePath); err != nil {
				return err
			}
			st, err := store.Open(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			if err := st.EnsureSchema(ctx); err != nil {
				return err
			}
			if err := st.Seed(ctx, auth.NewPasswordService(), logger); err != nil {
				return err
			}
			logger.Info("database reset", slog.String("path", cfg.DatabasePath))
			return nil
		},
	}
}
