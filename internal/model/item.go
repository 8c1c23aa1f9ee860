// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data, similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Item represents one inventory record.
// The `json:"..."` tags tell Go's encoding/json package how to serialize/deserialize
// this struct to/from JSON. The CLI and TUI never serialize items, but the tags
// keep the field names identical to the columns of the items table.
//
// ZERO VALUES AS "ABSENT":
// An empty ID means "not persisted yet". An empty Description means "no
// description". Go strings cannot be nil, and for this entity the empty string
// and the missing value behave identically under validation.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewItem builds an unsaved item with both timestamps set to now.
//
// WHY A CONSTRUCTOR?
// CreatedAt is stamped once, at construction time, and is never touched again
// after the item is persisted. The store only fills timestamps that are still
// zero, so an item built with NewItem keeps the exact moment the user opened
// the "new item" form.
func NewItem(name, description string) *Item {
	now := time.Now()
	return &Item{
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SetName changes the name and refreshes UpdatedAt.
func (i *Item) SetName(name string) {
	i.Name = name
	i.touch()
}

// SetDescription changes the description and refreshes UpdatedAt.
func (i *Item) SetDescription(description string) {
	i.Description = description
	i.touch()
}

func (i *Item) touch() {
	i.UpdatedAt = time.Now()
}

// Same reports whether two items are the same record.
//
// IDENTITY, NOT EQUALITY:
// Only the ID is compared. An item that was edited in memory is still "the
// same" as the stale copy sitting in a list, which is exactly what the list
// needs when it removes a row after delete. Two unsaved items (both IDs empty)
// are also the same record.
func (i *Item) Same(other *Item) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.ID == other.ID
}

// Valid reports whether the item may be persisted. See Valid (package func).
func (i *Item) Valid() bool {
	return Valid(i.Name, i.Description)
}

// Validate is like Valid but explains the first violated constraint.
func (i *Item) Validate() error {
	return Validate(i.Name, i.Description)
}
