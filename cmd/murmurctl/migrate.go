package main

import (
	"database/sql"

	"github.com/spf13/cobra"

	"Murmur/internal/db/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply, roll back or inspect schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE: withDB(func(cmd *cobra.Command, db *sql.DB) error {
		if err := migrations.Up(db); err != nil {
			return err
		}
		printSuccess("migrations applied")
		return nil
	}),
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	Args:  cobra.NoArgs,
	RunE: withDB(func(cmd *cobra.Command, db *sql.DB) error {
		if err := migrations.Down(db); err != nil {
			return err
		}
		printSuccess("rolled back one migration")
		return nil
	}),
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which migrations are applied",
	Args:  cobra.NoArgs,
	RunE: withDB(func(cmd *cobra.Command, db *sql.DB) error {
		return migrations.Status(db)
	}),
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	RootCmd.AddCommand(migrateCmd)
}

// withDB opens the database for the duration of one command
func withDB(run func(cmd *cobra.Command, db *sql.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()
		return run(cmd, db)
	}
}
