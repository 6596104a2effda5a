// Command portalctl runs administrative tasks against the portal database
// and auth provider.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"agency-portal/internal/config"
	"agency-portal/internal/logger"
)

var (
	cfg       *config.Config
	appLogger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "portalctl",
	Short:         "Agency portal administration",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Read()
		if err != nil {
			return err
		}
		appLogger = logger.NewWithWriter(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, os.Stderr)
		return nil
	},
}

func main() {
	rootCmd.AddCommand(adminCmd(), migrateCmd(), invoiceCmd(), watchCmd())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
