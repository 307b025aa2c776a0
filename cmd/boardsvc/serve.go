package main

import (
	"github.com/spf13/cobra"

	"github.com/sakif/boardsvc/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server. Pending migrations are applied first and, when
SEED_DATA is true, an empty database is filled with demo data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := server.Open(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		return srv.Start(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
