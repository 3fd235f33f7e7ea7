// Command lab runs the API security training lab.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:           "lab",
		Short:         "Deliberately vulnerable API for OWASP API Security Top 10 training",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServerCmd(logger))
	root.AddCommand(newInitCmd(logger))
	root.AddCommand(newResetCmd(logger))
	root.AddCommand(newSeedCmd(logger))

	if err := root.Execute(); err != nil {
		logger.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
