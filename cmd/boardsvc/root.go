package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/boardsvc/internal/config"
)

// Set by rootCmd's PersistentPreRunE before any subcommand runs.
var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:          "boardsvc",
	Short:        "Bulletin board with Google and Kakao login",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c
		logger = newLogger(cfg, os.Stdout)
		slog.SetDefault(logger)
		return nil
	},
}

// newLogger writes human-readable debug logs in development and JSON at
// info level everywhere else.
func newLogger(c *config.Config, w io.Writer) *slog.Logger {
	if c.IsDevelopment() {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
