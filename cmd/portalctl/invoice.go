package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"agency-portal/internal/pdf"
	"agency-portal/internal/services"
	"agency-portal/internal/supabase"
)

func invoiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Work with invoices",
	}

	var outDir string
	render := &cobra.Command{
		Use:   "render <invoice-id>",
		Short: "Write an invoice as invoice-<number>.pdf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid invoice id %q", args[0])
			}
			if err := cfg.Require("DATABASE_URL"); err != nil {
				return err
			}

			db, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := services.NewInvoiceService(db, pdf.Issuer{
				Name:     cfg.AgencyName,
				Address:  cfg.AgencyAddress,
				Email:    cfg.AgencyEmail,
				Phone:    cfg.AgencyPhone,
				Website:  cfg.AgencyWebsite,
				Currency: cfg.AgencyCurrency,
			}, appLogger)

			data, filename, err := svc.Render(cmd.Context(), id)
			if err != nil {
				return err
			}
			path := filepath.Join(outDir, filename)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	render.Flags().StringVarP(&outDir, "output", "o", ".", "directory to write the PDF into")

	cmd.AddCommand(render)
	return cmd
}
