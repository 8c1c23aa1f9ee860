package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/inventory/internal/apperror"
	"github.com/sakif/inventory/internal/model"
	"github.com/sakif/inventory/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// If *DB ever stops implementing repository.ItemRepository, this line fails
// the build instead of some caller much later.
var _ repository.ItemRepository = (*DB)(nil)

// TIMESTAMP ENCODING:
// Timestamps are stored as ISO-8601 local date-time TEXT, e.g.
// "2024-03-01T14:05:09.123456". The layout drops trailing zeros from the
// fraction (and the dot when the fraction is zero), which is byte-for-byte the
// format older inventory.db files were written with. Parsing also accepts the
// minute-precision form "2024-03-01T14:05".
const timestampLayout = "2006-01-02T15:04:05.999999999"

var timestampLayouts = []string{timestampLayout, "2006-01-02T15:04"}

func formatTimestamp(t time.Time) string {
	return t.In(time.Local).Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed timestamp %q", s)
}

const selectItems = `SELECT id, name, description, createdAt, updatedAt FROM items`

// Create inserts a new item into the database.
//
// KEY CONCEPTS:
//
//  1. VALIDATE BEFORE I/O:
//     An invalid item is rejected with a validation error before a connection
//     is even borrowed from the pool. The CHECK constraints in the schema are
//     the second line of defence, not the first.
//
//  2. ID GENERATION WITH uuid:
//     A random (v4) UUID is assigned only if the item has no ID yet, so the
//     caller's item carries its new identifier after Create returns.
//
//  3. TIMESTAMPS:
//     Create does NOT refresh UpdatedAt. model.NewItem already stamped both
//     timestamps; only zero values (an Item built by hand) are filled in.
func (db *DB) Create(ctx context.Context, item *model.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = now
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO items (id, name, description, createdAt, updatedAt)
		 VALUES (?, ?, ?, ?, ?)`,
		item.ID,
		item.Name,
		item.Description,
		formatTimestamp(item.CreatedAt),
		formatTimestamp(item.UpdatedAt),
	)
	if err != nil {
		return translateError("creating item", item.ID, err)
	}

	return nil
}

// GetByID retrieves a single item by its ID.
// A missing row is reported as apperror.ErrNotFound, never as a storage error.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Item, error) {
	row := db.conn.QueryRowContext(ctx, selectItems+` WHERE id = ?`, id)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("item", id)
		}
		return nil, apperror.StorageFailed(fmt.Sprintf("sqlite: getting item %s", id), err)
	}

	return item, nil
}

// List returns every item in the table.
//
// ORDER:
// There is deliberately no ORDER BY. Rows come back in the storage engine's
// natural order (insertion order for a rowid table in practice); callers that
// care about order sort the result themselves (see service.Sort).
//
// An empty table yields an empty, non-nil slice and a nil error, so "no items"
// and "the query failed" are never confused.
func (db *DB) List(ctx context.Context) ([]model.Item, error) {
	rows, err := db.conn.QueryContext(ctx, selectItems)
	if err != nil {
		return nil, apperror.StorageFailed("sqlite: listing items", err)
	}
	// CRITICAL: always close rows when done! With a single pooled
	// connection, a leaked *sql.Rows blocks every later statement.
	defer rows.Close()

	items := make([]model.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, apperror.StorageFailed("sqlite: scanning item row", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, apperror.StorageFailed("sqlite: iterating items", err)
	}

	return items, nil
}

// Update writes name, description and updatedAt of an existing item.
//
// NO-OP ON MISSING ROWS:
// If no row has item.ID, nothing is written and nil is returned. The caller
// that needs "must exist" semantics fetches first (see service.Update).
//
// UpdatedAt is written exactly as the item carries it; the model's setters
// are what refresh it.
func (db *DB) Update(ctx context.Context, item *model.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	_, err := db.conn.ExecContext(ctx,
		`UPDATE items
		 SET name = ?, description = ?, updatedAt = ?
		 WHERE id = ?`,
		item.Name,
		item.Description,
		formatTimestamp(item.UpdatedAt),
		item.ID,
	)
	if err != nil {
		return translateError("updating item", item.ID, err)
	}

	return nil
}

// Delete removes an item by its ID. Deleting a missing item is a no-op.
func (db *DB) Delete(ctx context.Context, id string) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return translateError("deleting item", id, err)
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem reads one row in selectItems column order.
//
// NULLABLE DESCRIPTION:
// description has no NOT NULL constraint, so sql.NullString is used to read
// it; a NULL comes back as the empty description.
func scanItem(row rowScanner) (*model.Item, error) {
	var (
		item                 model.Item
		description          sql.NullString
		createdAt, updatedAt string
	)

	if err := row.Scan(&item.ID, &item.Name, &description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	item.Description = description.String

	var err error
	if item.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("item %s createdAt: %w", item.ID, err)
	}
	if item.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("item %s updatedAt: %w", item.ID, err)
	}

	return &item, nil
}

// translateError maps driver errors onto domain errors.
//
// SQLITE RESULT CODES:
// modernc.org/sqlite reports extended result codes, so a duplicate primary key
// (1555) can be told apart from a failed CHECK constraint (275). Everything
// that is not a constraint violation is an infrastructure failure.
func translateError(op, id string, err error) error {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return apperror.Conflict("item", id)
		case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			field := constraintColumn(sqliteErr.Error())
			if field == "" {
				return apperror.ValidationFailed("", "item rejected by storage constraints")
			}
			return apperror.ValidationFailed(field, field+" rejected by storage constraints")
		}
	}
	return apperror.StorageFailed(fmt.Sprintf("sqlite: %s %s", op, id), err)
}

var itemColumns = []string{"name", "description", "createdAt", "updatedAt"}

// constraintColumn finds the column a constraint message is about.
// SQLite words them as "CHECK constraint failed: LENGTH(name) BETWEEN 3 AND 50"
// or "NOT NULL constraint failed: items.name". It returns "" when no column
// is named.
func constraintColumn(msg string) string {
	for _, col := range itemColumns {
		if strings.Contains(msg, "("+col+")") || strings.Contains(msg, "items."+col) {
			return col
		}
	}
	return ""
}
