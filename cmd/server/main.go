// Package main is the entry point for the reviewhub API server. It loads
// configuration, builds the logger and mail sender, and hands everything to
// internal/server.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/reviewhub/internal/config"
	"github.com/sakif/reviewhub/internal/notify"
	"github.com/sakif/reviewhub/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Logging.SlogLevel(),
	}))

	// The database directory must exist before the driver opens the file.
	// ":memory:" has no directory to create.
	if dir := filepath.Dir(cfg.Database.Path); cfg.Database.Path != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	var sender notify.Sender
	if cfg.Mail.Enabled {
		sender = notify.NewSMTPSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.From)
	} else {
		logger.Info("mail disabled, confirmation codes go to the log")
		sender = &notify.LogSender{Logger: logger}
	}

	srv, err := server.New(cfg, logger, sender)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Start()
}
