// Package main is the entry point for the inventory tool.
//
// MAIN PACKAGE IN GO:
// main stays minimal. It reads configuration, builds the logger, hands
// everything to internal/app, and turns the result into an exit code.
//
// WHY run() AND NOT EVERYTHING IN main()?
// os.Exit skips deferred calls. Keeping the work in run() means the database
// and the log file are closed on every path before the process exits.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sakif/inventory/internal/app"
	"github.com/sakif/inventory/internal/apperror"
	"github.com/sakif/inventory/internal/cli"
	"github.com/sakif/inventory/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	// === 1. READ CONFIGURATION ===
	cfg, err := config.Load()
	if err != nil {
		var help *config.HelpError
		if errors.As(err, &help) {
			fmt.Println(help.Usage)
			cli.PrintHelp(os.Stdout)
			return cli.ExitOK
		}
		fmt.Fprintln(os.Stderr, "✖ "+err.Error())
		return cli.ExitUsage
	}

	// === 2. SET UP LOGGING ===
	logger, closeLog, err := app.NewLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "✖ "+err.Error())
		return cli.ExitError
	}
	defer closeLog()

	logger.Debug("configuration loaded", slog.String("config", cfg.String()))

	// === 3. CANCEL ON CTRL+C / SIGTERM ===
	// The context reaches the TUI program and every store call.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// === 4. BUILD AND RUN ===
	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to start", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, "✖ "+apperror.Describe(err))
		return cli.ExitError
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()

	return a.Run(ctx, cfg.Args)
}
