// Package middleware contains decorators for the item repository.
//
// WHAT IS MIDDLEWARE HERE?
// A middleware wraps a repository.ItemRepository and returns another one,
// adding cross-cutting behaviour (logging, timing) without touching the
// store itself:
//
//	repo := middleware.Logging(sqliteDB, logger)
//	svc := service.NewItemService(repo, logger)
//
// This is the "decorator pattern": the service can't tell the difference.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/sakif/inventory/internal/model"
	"github.com/sakif/inventory/internal/repository"
)

// loggingRepo embeds the wrapped repository, so any method it doesn't
// override falls through unchanged.
type loggingRepo struct {
	repository.ItemRepository
	logger *slog.Logger
}

var _ repository.ItemRepository = (*loggingRepo)(nil)

// Logging returns a repository that logs every call at Debug level with the
// operation, its duration and, on failure, the error.
func Logging(next repository.ItemRepository, logger *slog.Logger) repository.ItemRepository {
	return &loggingRepo{ItemRepository: next, logger: logger}
}

func (r *loggingRepo) log(ctx context.Context, op string, start time.Time, err error, attrs ...slog.Attr) {
	attrs = append(attrs,
		slog.String("op", op),
		slog.Duration("duration", time.Since(start)),
	)
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	r.logger.LogAttrs(ctx, slog.LevelDebug, "store call", attrs...)
}

func (r *loggingRepo) Create(ctx context.Context, item *model.Item) error {
	start := time.Now()
	err := r.ItemRepository.Create(ctx, item)
	r.log(ctx, "create", start, err, slog.String("id", item.ID))
	return err
}

func (r *loggingRepo) GetByID(ctx context.Context, id string) (*model.Item, error) {
	start := time.Now()
	item, err := r.ItemRepository.GetByID(ctx, id)
	r.log(ctx, "get", start, err, slog.String("id", id))
	return item, err
}

func (r *loggingRepo) List(ctx context.Context) ([]model.Item, error) {
	start := time.Now()
	items, err := r.ItemRepository.List(ctx)
	r.log(ctx, "list", start, err, slog.Int("rows", len(items)))
	return items, err
}

func (r *loggingRepo) Update(ctx context.Context, item *model.Item) error {
	start := time.Now()
	err := r.ItemRepository.Update(ctx, item)
	r.log(ctx, "update", start, err, slog.String("id", item.ID))
	return err
}

func (r *loggingRepo) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := r.ItemRepository.Delete(ctx, id)
	r.log(ctx, "delete", start, err, slog.String("id", id))
	return err
}
