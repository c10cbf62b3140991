package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/promptmaster/internal/config"
	"github.com/sakif/promptmaster/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the PromptMaster server",
	Long: `Start the PromptMaster HTTP server.

The server stores its data in a single SQLite file and seeds demo accounts
on first start (Admin User / Jane Doe, password "password").

Examples:
  promptmaster serve
  PROMPTMASTER_ADDR=:3000 promptmaster serve
  promptmaster serve --config /etc/promptmaster/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel(cfg.LogLevel),
		}))

		// Make sure the database directory exists before sqlite tries to
		// create the file.
		if cfg.DBPath != ":memory:" {
			if dir := filepath.Dir(cfg.DBPath); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
		}

		srv, err := server.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		return srv.Start()
	},
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
