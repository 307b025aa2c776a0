package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/boardsvc/internal/repository/sqlstore"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSchema(func(db *sqlstore.DB) error {
			if err := db.MigrateUp(); err != nil {
				return err
			}
			return printVersion(cmd, db)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration, dropping all tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSchema(func(db *sqlstore.DB) error {
			if err := db.MigrateDown(); err != nil {
				return err
			}
			return printVersion(cmd, db)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSchema(func(db *sqlstore.DB) error {
			return printVersion(cmd, db)
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
}

// withSchema opens the database without migrating it.
func withSchema(fn func(db *sqlstore.DB) error) error {
	db, err := sqlstore.New(sqlstore.Config{
		Driver:         cfg.DatabaseDriver,
		DSN:            cfg.DatabaseDSN,
		SkipMigrations: true,
	}, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func printVersion(cmd *cobra.Command, db *sqlstore.DB) error {
	version, dirty, err := db.MigrationVersion()
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if dirty {
		fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty)\n", version)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version %d\n", version)
	return nil
}
