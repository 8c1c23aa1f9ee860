package repository

import (
	"context"

	"github.com/sakif/inventory/internal/model"
)

// ItemRepository is the item store.
//
// Absent rows are not errors for Update and Delete (they are no-ops), while
// GetByID reports them as apperror.ErrNotFound. Every I/O failure comes back
// wrapped with apperror.ErrStorage.
type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	GetByID(ctx context.Context, id string) (*model.Item, error)
	List(ctx context.Context) ([]model.Item, error)
	Update(ctx context.Context, item *model.Item) error
	Delete(ctx context.Context, id string) error
}
