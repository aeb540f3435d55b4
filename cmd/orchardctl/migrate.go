package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/orchardcare/orchard-advisor/internal/infra/schema"
	"github.com/orchardcare/orchard-advisor/pkg/logger"
)

func migrateCmd() *cobra.Command {
	var (
		dsn    string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the Postgres tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dryRun {
				list, err := schema.Migrations()
				if err != nil {
					return err
				}
				for _, m := range list {
					fmt.Fprintln(cmd.OutOrStdout(), m.Name)
				}
				return nil
			}
			if strings.TrimSpace(dsn) == "" {
				dsn = os.Getenv("POSTGRES_DSN")
			}
			if strings.TrimSpace(dsn) == "" {
				return errors.New("--dsn or POSTGRES_DSN is required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			pool, err := pgxpool.New(ctx, dsn)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer pool.Close()
			if err := schema.Apply(ctx, pool, logger.New()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "Postgres connection string (defaults to POSTGRES_DSN)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List migrations without applying them")
	return cmd
}
