package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"agency-portal/internal/identity"
	"agency-portal/internal/supabase"
)

const provisionHelp = `Set ADMIN_EMAIL and ADMIN_PASSWORD, for example:

  ADMIN_EMAIL=owner@agency.com ADMIN_PASSWORD='s3cure-pass' portalctl admin provision

The password needs at least 8 characters with a letter and a digit.`

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "provision",
		Short: "Create an admin account, or promote an existing one",
		Long:  "Reads ADMIN_EMAIL and ADMIN_PASSWORD from the environment.\n\n" + provisionHelp,
		Args:  cobra.NoArgs,
		RunE:  runProvision,
	})
	return cmd
}

func runProvision(cmd *cobra.Command, _ []string) error {
	email, password := os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD are required\n\n%s", provisionHelp)
	}
	if err := cfg.Require("SUPABASE_URL", "SUPABASE_PUBLISHABLE_KEY", "SUPABASE_SERVICE_ROLE_KEY", "DATABASE_URL"); err != nil {
		return err
	}

	db, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	sb, err := supabase.NewClient(cfg)
	if err != nil {
		return err
	}

	id, created, err := identity.ProvisionAdmin(cmd.Context(), supabase.NewAuthClient(sb).WithUserLookup(db), db, email, password)
	switch {
	case errors.Is(err, identity.ErrInvalidEmail), errors.Is(err, identity.ErrWeakPassword):
		return fmt.Errorf("%w\n\n%s", err, provisionHelp)
	case err != nil:
		return err
	}

	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", id.Email, id.ID)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "promoted %s (%s) to admin\n", id.Email, id.ID)
	}
	return nil
}
