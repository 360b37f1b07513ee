package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/admin-console-api/internal/database"
)

func newMigrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the postgres schema",
		Long: `Apply, roll back or inspect golang-migrate migrations.

The sqlite driver migrates itself on open, so these commands only report
that for it.`,
	}

	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withPostgres(func(cmd *cobra.Command, db *database.DB, path string, _ []string) error {
				if err := db.RunMigrations(path); err != nil {
					return err
				}
				return printVersion(cmd, db, path)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  cobra.NoArgs,
			RunE: withPostgres(func(cmd *cobra.Command, db *database.DB, path string, _ []string) error {
				if err := db.MigrateDown(path); err != nil {
					return err
				}
				return printVersion(cmd, db, path)
			}),
		},
		&cobra.Command{
			Use:   "goto VERSION",
			Short: "Migrate up or down to a specific version",
			Args:  cobra.ExactArgs(1),
			RunE: withPostgres(func(cmd *cobra.Command, db *database.DB, path string, args []string) error {
				version, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				if err := db.MigrateToVersion(path, uint(version)); err != nil {
					return err
				}
				return printVersion(cmd, db, path)
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show the applied schema version",
			Args:  cobra.NoArgs,
			RunE: withPostgres(func(cmd *cobra.Command, db *database.DB, path string, _ []string) error {
				return printVersion(cmd, db, path)
			}),
		},
	)
	return migrate
}

type migrateFunc func(cmd *cobra.Command, db *database.DB, migrationsPath string, args []string) error

// withPostgres opens the store and hands a postgres connection to fn
func withPostgres(fn migrateFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, cfg, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		if store.Postgres == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "driver %s migrates its schema automatically\n", cfg.Driver)
			return nil
		}
		return fn(cmd, store.Postgres, cfg.MigrationsPath, args)
	}
}

func printVersion(cmd *cobra.Command, db *database.DB, path string) error {
	version, dirty, err := db.MigrationVersion(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", version, dirty)
	return nil
}
