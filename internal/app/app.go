// Package app wires the inventory together and picks a front end.
//
// COMPOSITION ROOT:
// Every dependency is built here and nowhere else:
//
//	config.Config → sqlite.DB → middleware.Logging → service.ItemService → tui / cli
//
// The service receives the repository interface, and the front ends receive
// their own narrow ItemService interfaces, so no package below this one
// knows which concrete store it is talking to.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/inventory/internal/cli"
	"github.com/sakif/inventory/internal/config"
	"github.com/sakif/inventory/internal/middleware"
	sqliteRepo "github.com/sakif/inventory/internal/repository/sqlite"
	"github.com/sakif/inventory/internal/service"
	"github.com/sakif/inventory/internal/tui"
)

// App owns the database handle; Close releases it.
type App struct {
	logger *slog.Logger
	db     *sqliteRepo.DB
	items  *service.ItemService
	sort   service.SortOrder

	stdout, stderr io.Writer
}

// New opens the store and builds the service layer.
//
// If the database cannot be opened or the items table cannot be created,
// New fails; there is no half-initialized App.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	sort, err := service.ParseSortOrder(cfg.Sort)
	if err != nil {
		return nil, err
	}

	// os.MkdirAll is like `mkdir -p`: a DB path such as data/inventory.db
	// works on first run.
	if cfg.DBPath != ":memory:" {
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
	}

	db, err := sqliteRepo.New(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	logger.Debug("inventory ready",
		slog.String("db", cfg.DBPath),
		slog.String("sort", string(sort)),
	)

	return &App{
		logger: logger,
		db:     db,
		items:  service.NewItemService(middleware.Logging(db, logger), logger),
		sort:   sort,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}, nil
}

// Run starts the terminal UI when args is empty and the CLI otherwise.
// It returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.logger.Info("starting terminal UI")
		if err := tui.Run(ctx, a.items, tui.Options{Sort: a.sort}); err != nil {
			a.logger.Error("terminal UI failed", slog.String("error", err.Error()))
			fmt.Fprintln(a.stderr, "✖ "+err.Error())
			return cli.ExitError
		}
		return cli.ExitOK
	}

	a.logger.Debug("running command", slog.Any("args", args))
	return cli.Run(ctx, a.items, args, cli.Options{
		Sort:   a.sort,
		Stdout: a.stdout,
		Stderr: a.stderr,
	})
}

// Close closes the database. It is safe to call more than once.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	if err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
