package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/coreybb/mylist/datastore"
)

var errMissingDatabaseURL = errors.New("DB_CONNECTION_STRING is required")

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the users and tasks tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.DatabaseURL == "" {
				return a.fail("Invalid configuration", errMissingDatabaseURL)
			}
			db, err := a.openDatabase(cmd.Context())
			if err != nil {
				return a.fail("Database setup failed", err)
			}
			defer db.Close()

			if err := datastore.EnsureSchema(cmd.Context(), db); err != nil {
				return a.fail("Schema migration failed", err)
			}
			a.logger.Info("Schema applied")
			return nil
		},
	}
}
