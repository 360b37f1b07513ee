// Command adminctl is the operator tool for the admin console: schema
// migrations and admin account provisioning.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/admin-console-api/internal/config"
	"github.com/admin-console-api/internal/repository"
	"github.com/admin-console-api/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "adminctl",
		Short: "Operate the admin console store",
		Long: `adminctl manages the admin console document store.

Available subcommands:
  migrate      - Apply, roll back or inspect the postgres schema
  create-admin - Create or update an admin account

The store is selected with STORE_DRIVER and the same DB_* or SQLITE_PATH
variables the server reads.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newCreateAdminCmd())
	return root
}

// openStore opens the configured store without running migrations
func openStore(cmd *cobra.Command) (*repository.Store, *config.DatabaseConfig, zerolog.Logger, error) {
	dbCfg, logCfg, err := config.LoadDatabase()
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}
	log := logger.New(logger.Options{Level: logCfg.Level, Service: "adminctl", Out: cmd.ErrOrStderr()})

	store, err := repository.Open(dbCfg, false, log)
	if err != nil {
		return nil, nil, log, err
	}
	return store, dbCfg, log, nil
}
