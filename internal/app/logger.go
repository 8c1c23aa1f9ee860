package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sakif/inventory/internal/config"
)

// NewLogger builds the process logger from cfg.
//
// LOG DESTINATION:
// The terminal UI draws over the whole screen, so logging to stdout would
// corrupt it. Logs are appended to cfg.LogFile instead; "-" sends them to
// stderr, which is handy for CLI debugging:
//
//	INVENTORY_LOG_FILE=- INVENTORY_LOG_LEVEL=debug inventory ls
//
// The returned function closes the log file.
func NewLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	var (
		w       io.Writer = os.Stderr
		closeFn           = func() error { return nil }
	)

	if cfg.LogFile != config.StderrLog {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w, closeFn = f, f.Close
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	return logger, closeFn, nil
}
