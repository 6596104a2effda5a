package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"agency-portal/internal/database"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: withMigrator(func(m *database.Migrator) error {
				return m.Run()
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: withMigrator(func(m *database.Migrator) error {
				return m.Down()
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the state of every migration",
			RunE: withMigrator(func(m *database.Migrator) error {
				return m.Status()
			}),
		},
	)
	return cmd
}

// withMigrator holds a lock file for the duration of fn so two operators
// cannot migrate from the same host at once.
func withMigrator(fn func(*database.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Require("DATABASE_URL"); err != nil {
			return err
		}

		lock := flock.New(filepath.Join(os.TempDir(), "portalctl-migrate.lock"))
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("failed to acquire migration lock: %w", err)
		}
		if !locked {
			return fmt.Errorf("another migration is already running")
		}
		defer lock.Unlock()

		m, err := database.NewMigrator(cfg.DatabaseURL, appLogger)
		if err != nil {
			return err
		}
		defer m.Close()

		if err := fn(m); err != nil {
			return err
		}
		version, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "database at version %d\n", version)
		return nil
	}
}
