// Package service contains the business rules of the inventory.
//
// THE LAYERS:
//
//	TUI / CLI (presentation)  → reads keys or arguments, renders results
//	Service (business layer)  → trims input, validates, searches, sorts
//	Repository (data layer)   → reads/writes the items table
//
// Both front ends call the same ItemService, so the rules live here exactly
// once. The service takes a repository.ItemRepository (interface), never a
// *sqlite.DB, which is what lets item_test.go run against an in-memory fake.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/inventory/internal/apperror"
	"github.com/sakif/inventory/internal/model"
	"github.com/sakif/inventory/internal/repository"
)

// ItemService handles business logic for inventory items.
type ItemService struct {
	repo   repository.ItemRepository
	logger *slog.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(repo repository.ItemRepository, logger *slog.Logger) *ItemService {
	return &ItemService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and saves a new item.
//
// KEY CONCEPTS:
//
//  1. ACCEPT PRIMITIVES:
//     (ctx, name, description) instead of a form or flag struct, so the TUI
//     and the CLI share this method unchanged.
//
//  2. TRIM, THEN VALIDATE:
//     "  Hammer  " is stored as "Hammer", and a whitespace-only name counts
//     as empty. The length limits apply to the trimmed value.
//
//  3. RETURN DOMAIN ERRORS:
//     A rejected item comes back as apperror.ErrValidation carrying the
//     message the user should see; nothing is written.
func (s *ItemService) Create(ctx context.Context, name, description string) (*model.Item, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)

	if err := model.Validate(name, description); err != nil {
		return nil, err
	}

	item := model.NewItem(name, description)

	if err := s.repo.Create(ctx, item); err != nil {
		s.logger.Error("failed to create item",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating item: %w", err)
	}

	s.logger.Info("item created",
		slog.String("id", item.ID),
		slog.String("name", item.Name),
	)

	return item, nil
}

// GetByID retrieves an item by its ID.
// Returns apperror.ErrNotFound if the item doesn't exist.
func (s *ItemService) GetByID(ctx context.Context, id string) (*model.Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "item ID is required")
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		// NotFound is a normal answer; only real failures are logged.
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("failed to get item",
				slog.String("id", id),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	return item, nil
}

// List reloads every item from the store, then filters and sorts them.
//
// FULL RELOAD:
// There is no cache. Each call re-reads the table, so whatever the last
// mutation did (here or in another copy of the tool) is what the caller sees.
func (s *ItemService) List(ctx context.Context, q Query) ([]model.Item, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list items", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing items: %w", err)
	}

	items = Filter(items, q.Search)
	Sort(items, q.Sort)

	return items, nil
}

// Update changes the name and description of an existing item.
//
// STRATEGY: "Fetch then update"
// The repository's Update silently does nothing for an unknown ID. Fetching
// first turns that case into apperror.ErrNotFound, and the model's setters
// refresh UpdatedAt on the fetched copy before it is written back.
//
// An empty description clears it; the name is always required.
func (s *ItemService) Update(ctx context.Context, id, name, description string) (*model.Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "item ID is required")
	}

	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if err := model.Validate(name, description); err != nil {
		return nil, err
	}

	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item.SetName(name)
	item.SetDescription(description)

	if err := s.repo.Update(ctx, item); err != nil {
		s.logger.Error("failed to update item",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating item: %w", err)
	}

	s.logger.Info("item updated",
		slog.String("id", item.ID),
		slog.String("name", item.Name),
	)

	return item, nil
}

// Delete removes an item by its ID.
// Returns apperror.ErrNotFound if the item doesn't exist.
func (s *ItemService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "item ID is required")
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete item",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting item: %w", err)
	}

	s.logger.Info("item deleted", slog.String("id", id))
	return nil
}
