package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/boardsvc/internal/auth"
	"github.com/sakif/boardsvc/internal/repository/sqlstore"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo user and boards into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := sqlstore.New(sqlstore.Config{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseDSN}, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		seeded, err := db.Seed(cmd.Context(), auth.NewPasswordService())
		if err != nil {
			return err
		}
		if !seeded {
			fmt.Fprintln(cmd.OutOrStdout(), "database already has users; nothing seeded")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded user %q with %d boards\n", sqlstore.SeedUserName, sqlstore.SeedBoardCount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
