package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sakif/inventory/internal/apperror"
	"github.com/sakif/inventory/internal/model"
)

// TESTING WITH IN-MEMORY SQLITE:
// ":memory:" creates a fresh database that exists only during the test.
// Because New pins the pool to one connection, every statement in a test
// sees the same in-memory database.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:", discardLogger())
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestItem creates an item and fails the test if it errors.
func createTestItem(t *testing.T, db *DB, name, description string) *model.Item {
	t.Helper()
	item := model.NewItem(name, description)
	if err := db.Create(context.Background(), item); err != nil {
		t.Fatalf("failed to create test item: %v", err)
	}
	return item
}

func countItems(t *testing.T, db *DB) int {
	t.Helper()
	items, err := db.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	return len(items)
}

// =========================================================================
// INITIALIZATION TESTS
// =========================================================================

func TestNew_CreatesItemsTable(t *testing.T) {
	db := newTestDB(t)

	var name string
	err := db.conn.QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'items'`,
	).Scan(&name)
	if err != nil {
		t.Fatalf("items table not found: %v", err)
	}
}

func TestNew_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.db")

	first, err := New(path, discardLogger())
	if err != nil {
		t.Fatalf("New() first open: %v", err)
	}
	created := createTestItem(t, first, "Persistent", "kept across reopen")
	first.Close()

	// Opening the same file again must not fail or wipe the table.
	second, err := New(path, discardLogger())
	if err != nil {
		t.Fatalf("New() second open: %v", err)
	}
	defer second.Close()

	found, err := second.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() after reopen: %v", err)
	}
	if found.Name != "Persistent" {
		t.Errorf("Name = %q, want %q", found.Name, "Persistent")
	}
}

func TestNew_AdoptsExistingItemsTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.db")

	// A file created by an older build: the table exists, goose's
	// bookkeeping table does not, timestamps use the legacy text format.
	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening raw db: %v", err)
	}
	_, err = raw.Exec(`
		CREATE TABLE items (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL CHECK(LENGTH(name) BETWEEN 3 AND 50),
			description TEXT CHECK(LENGTH(description) <= 255),
			createdAt TEXT NOT NULL,
			updatedAt TEXT NOT NULL);
		INSERT INTO items VALUES
			('0b6f5f0e-8a1c-4c1e-9a57-3f0f4d1c2b11', 'Legacy Item', NULL,
			 '2024-05-01T12:30:45.123', '2024-05-01T12:31');
	`)
	raw.Close()
	if err != nil {
		t.Fatalf("seeding legacy table: %v", err)
	}

	db, err := New(path, discardLogger())
	if err != nil {
		t.Fatalf("New() on legacy file: %v", err)
	}
	defer db.Close()

	items, err := db.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("List() returned %d items, want 1", len(items))
	}

	got := items[0]
	if got.Description != "" {
		t.Errorf("NULL description = %q, want empty", got.Description)
	}
	wantCreated := time.Date(2024, 5, 1, 12, 30, 45, 123_000_000, time.Local)
	if !got.CreatedAt.Equal(wantCreated) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, wantCreated)
	}
	wantUpdated := time.Date(2024, 5, 1, 12, 31, 0, 0, time.Local)
	if !got.UpdatedAt.Equal(wantUpdated) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, wantUpdated)
	}
}

func TestNew_UnopenablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "inventory.db")

	if _, err := New(path, discardLogger()); err == nil {
		t.Fatal("New() should fail when the database file cannot be created")
	}
}

func TestSchema_CheckConstraints(t *testing.T) {
	db := newTestDB(t)
	now := formatTimestamp(time.Now())

	tests := []struct {
		name        string
		itemName    string
		description any
	}{
		{"name shorter than 3", "AB", nil},
		{"name longer than 50", strings.Repeat("n", 51), nil},
		{"description longer than 255", "Valid", strings.Repeat("d", 256)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.conn.Exec(
				`INSERT INTO items (id, name, description, createdAt, updatedAt) VALUES (?, ?, ?, ?, ?)`,
				uuid.NewString(), tt.itemName, tt.description, now, now,
			)
			if err == nil {
				t.Fatal("schema accepted a row the validation rule rejects")
			}
		})
	}
}

func TestTranslateError_NamesConstraintColumn(t *testing.T) {
	db := newTestDB(t)
	now := formatTimestamp(time.Now())

	tests := []struct {
		name        string
		itemName    any
		description any
		wantField   string
	}{
		{"short name", "AB", nil, "name"},
		{"long description", "Valid", strings.Repeat("d", 256), "description"},
		{"missing name", nil, nil, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.NewString()
			_, err := db.conn.Exec(
				`INSERT INTO items (id, name, description, createdAt, updatedAt) VALUES (?, ?, ?, ?, ?)`,
				id, tt.itemName, tt.description, now, now,
			)
			if err == nil {
				t.Fatal("schema accepted an invalid row")
			}

			got := translateError("creating item", id, err)

			var appErr *apperror.AppError
			if !errors.As(got, &appErr) || !errors.Is(got, apperror.ErrValidation) {
				t.Fatalf("translateError() = %v, want a validation error", got)
			}
			if appErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q (driver said %q)", appErr.Field, tt.wantField, err.Error())
			}
			if want := tt.wantField + " rejected by storage constraints"; appErr.Message != want {
				t.Errorf("Message = %q, want %q", appErr.Message, want)
			}
		})
	}
}

func TestCreate_NameRejectedBySchema(t *testing.T) {
	db := newTestDB(t)

	// 8 characters for the validation rule, but SQLite's LENGTH() stops at
	// the NUL and sees 2.
	item := model.NewItem("ab\x00cdefg", "")

	err := db.Create(context.Background(), item)

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Create() error = %v, want a validation error", err)
	}
	if appErr.Field != "name" {
		t.Errorf("Field = %q, want %q", appErr.Field, "name")
	}
	if n := countItems(t, db); n != 0 {
		t.Errorf("items in table = %d, want 0", n)
	}
}

func TestConstraintColumn(t *testing.T) {
	tests := map[string]string{
		"CHECK constraint failed: LENGTH(name) BETWEEN 3 AND 50": "name",
		"CHECK constraint failed: LENGTH(description) <= 255":    "description",
		"NOT NULL constraint failed: items.createdAt":            "createdAt",
		"CHECK constraint failed: items_ok":                      "",
	}
	for msg, want := range tests {
		if got := constraintColumn(msg); got != want {
			t.Errorf("constraintColumn(%q) = %q, want %q", msg, got, want)
		}
	}
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreate(t *testing.T) {
	db := newTestDB(t)

	item := model.NewItem("Valid Name", "Valid Description")
	createdAt, updatedAt := item.CreatedAt, item.UpdatedAt

	if err := db.Create(context.Background(), item); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := uuid.Parse(item.ID); err != nil {
		t.Errorf("Create() set ID %q, want a UUID: %v", item.ID, err)
	}
	if !item.CreatedAt.Equal(createdAt) || !item.UpdatedAt.Equal(updatedAt) {
		t.Error("Create() should not touch timestamps set at construction")
	}
}

func TestCreate_KeepsExistingID(t *testing.T) {
	db := newTestDB(t)

	item := model.NewItem("Preset ID", "")
	item.ID = "7d1a4c8e-2f0b-4a55-9b0e-1c2d3e4f5a6b"

	if err := db.Create(context.Background(), item); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if item.ID != "7d1a4c8e-2f0b-4a55-9b0e-1c2d3e4f5a6b" {
		t.Errorf("Create() replaced an existing ID with %q", item.ID)
	}
}

func TestCreate_FillsZeroTimestamps(t *testing.T) {
	db := newTestDB(t)

	item := &model.Item{Name: "Hand Built"}
	if err := db.Create(context.Background(), item); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if item.CreatedAt.IsZero() || item.UpdatedAt.IsZero() {
		t.Error("Create() did not fill zero timestamps")
	}
}

func TestCreate_InvalidItemIsNotWritten(t *testing.T) {
	db := newTestDB(t)
	before := countItems(t, db)

	err := db.Create(context.Background(), model.NewItem("A", ""))

	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Create() error = %v, want ErrValidation", err)
	}
	if after := countItems(t, db); after != before {
		t.Errorf("List() length = %d after rejected create, want %d", after, before)
	}
}

func TestCreate_DuplicateID(t *testing.T) {
	db := newTestDB(t)
	first := createTestItem(t, db, "Original", "")

	dup := model.NewItem("Duplicate", "")
	dup.ID = first.ID
	err := db.Create(context.Background(), dup)

	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// GET BY ID TESTS
// =========================================================================

func TestGetByID_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	created := createTestItem(t, db, "Fetch Me", "with a description")

	found, err := db.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
	if found.Name != created.Name {
		t.Errorf("Name = %q, want %q", found.Name, created.Name)
	}
	if found.Description != created.Description {
		t.Errorf("Description = %q, want %q", found.Description, created.Description)
	}
	if !found.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", found.CreatedAt, created.CreatedAt)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "nonexistent-id")

	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
	if errors.Is(err, apperror.ErrStorage) {
		t.Error("a missing row must not look like a storage failure")
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestList_Empty(t *testing.T) {
	db := newTestDB(t)

	items, err := db.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if items == nil {
		t.Error("List() returned nil, want an empty slice")
	}
	if len(items) != 0 {
		t.Errorf("List() returned %d items, want 0", len(items))
	}
}

func TestList_ReturnsAll(t *testing.T) {
	db := newTestDB(t)

	createTestItem(t, db, "first", "")
	createTestItem(t, db, "second", "")
	createTestItem(t, db, "third", "")

	if n := countItems(t, db); n != 3 {
		t.Errorf("List() returned %d items, want 3", n)
	}
}

func TestList_MalformedTimestamp(t *testing.T) {
	db := newTestDB(t)
	_, err := db.conn.Exec(
		`INSERT INTO items (id, name, description, createdAt, updatedAt)
		 VALUES ('bad-row', 'Broken', '', 'yesterday', 'today')`,
	)
	if err != nil {
		t.Fatalf("seeding malformed row: %v", err)
	}

	if _, err := db.List(context.Background()); !errors.Is(err, apperror.ErrStorage) {
		t.Errorf("List() error = %v, want ErrStorage", err)
	}
	if _, err := db.GetByID(context.Background(), "bad-row"); !errors.Is(err, apperror.ErrStorage) {
		t.Errorf("GetByID() error = %v, want ErrStorage", err)
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUpdate(t *testing.T) {
	db := newTestDB(t)
	item := createTestItem(t, db, "JUnit Test Item", "test item")
	before := item.UpdatedAt

	item.SetName("Updated Name")
	item.SetDescription("Updated Description")
	if err := db.Update(context.Background(), item); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID() after update error = %v", err)
	}
	if found.Name != "Updated Name" {
		t.Errorf("Name after update = %q, want %q", found.Name, "Updated Name")
	}
	if found.Description != "Updated Description" {
		t.Errorf("Description after update = %q, want %q", found.Description, "Updated Description")
	}
	if found.UpdatedAt.Before(before) {
		t.Errorf("UpdatedAt after update = %v, want >= %v", found.UpdatedAt, before)
	}
	if !found.CreatedAt.Equal(item.CreatedAt) {
		t.Errorf("Update() changed CreatedAt: got %v, want %v", found.CreatedAt, item.CreatedAt)
	}
}

func TestUpdate_MissingRowIsNoOp(t *testing.T) {
	db := newTestDB(t)

	ghost := model.NewItem("Ghost Item", "")
	ghost.ID = "nonexistent"
	if err := db.Update(context.Background(), ghost); err != nil {
		t.Errorf("Update() on missing row error = %v, want nil", err)
	}
	if n := countItems(t, db); n != 0 {
		t.Errorf("Update() on missing row created %d rows", n)
	}
}

func TestUpdate_InvalidItem(t *testing.T) {
	db := newTestDB(t)
	item := createTestItem(t, db, "Valid Name", "")

	item.SetName("no")
	err := db.Update(context.Background(), item)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Update() error = %v, want ErrValidation", err)
	}

	found, err := db.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Name != "Valid Name" {
		t.Errorf("rejected update was written: Name = %q", found.Name)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	item := createTestItem(t, db, "To Delete", "")

	if err := db.Delete(context.Background(), item.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := db.GetByID(context.Background(), item.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete: error = %v, want ErrNotFound", err)
	}
}

func TestDelete_MissingRowIsNoOp(t *testing.T) {
	db := newTestDB(t)

	if err := db.Delete(context.Background(), "nonexistent-id"); err != nil {
		t.Errorf("Delete() on missing row error = %v, want nil", err)
	}
}

// =========================================================================
// STORAGE FAILURE TESTS
// =========================================================================

// TestClosedDatabase_SurfacesStorageErrors checks that an I/O failure is
// never disguised as "no data".
func TestClosedDatabase_SurfacesStorageErrors(t *testing.T) {
	db := newTestDB(t)
	item := createTestItem(t, db, "Before Close", "")
	db.Close()

	ctx := context.Background()

	if _, err := db.List(ctx); !errors.Is(err, apperror.ErrStorage) {
		t.Errorf("List() error = %v, want ErrStorage", err)
	}
	if _, err := db.GetByID(ctx, item.ID); !errors.Is(err, apperror.ErrStorage) {
		t.Errorf("GetByID() error = %v, want ErrStorage", err)
	}
	if err := db.Create(ctx, model.NewItem("After Close", "")); !errors.Is(err, apperror.ErrStorage) {
		t.Errorf("Create() error = %v, want ErrStorage", err)
	}
	if err := db.Update(ctx, item); !errors.Is(err, apperror.ErrStorage) {
		t.Errorf("Update() error = %v, want ErrStorage", err)
	}
	if err := db.Delete(ctx, item.ID); !errors.Is(err, apperror.ErrStorage) {
		t.Errorf("Delete() error = %v, want ErrStorage", err)
	}
}

// =========================================================================
// TIMESTAMP ENCODING TESTS
// =========================================================================

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"microseconds", time.Date(2024, 3, 1, 14, 5, 9, 123_456_000, time.Local), "2024-03-01T14:05:09.123456"},
		{"milliseconds", time.Date(2024, 3, 1, 14, 5, 9, 120_000_000, time.Local), "2024-03-01T14:05:09.12"},
		{"whole seconds", time.Date(2024, 3, 1, 14, 5, 9, 0, time.Local), "2024-03-01T14:05:09"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatTimestamp(tt.in); got != tt.want {
				t.Errorf("formatTimestamp() = %q, want %q", got, tt.want)
			}
			back, err := parseTimestamp(tt.want)
			if err != nil {
				t.Fatalf("parseTimestamp(%q) error = %v", tt.want, err)
			}
			if !back.Equal(tt.in) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.want, back, tt.in)
			}
		})
	}
}

func TestParseTimestamp_Rejects(t *testing.T) {
	for _, s := range []string{"", "yesterday", "2024-03-01", "2024-03-01 14:05:09", "2024-03-01T14:05:09Z"} {
		if _, err := parseTimestamp(s); err == nil {
			t.Errorf("parseTimestamp(%q) = nil error, want failure", s)
		}
	}
}

// =========================================================================
// FULL CRUD LIFECYCLE TEST
// =========================================================================

// TestFullCRUDLifecycle: create ("Valid Name","Valid Description"), list
// length becomes 1, delete, list length returns to 0.
func TestFullCRUDLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	item := model.NewItem("Valid Name", "Valid Description")
	if !item.Valid() {
		t.Fatal("Valid() = false for the lifecycle item")
	}
	if err := db.Create(ctx, item); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if n := countItems(t, db); n != 1 {
		t.Fatalf("List returned %d, want 1", n)
	}

	if err := db.Delete(ctx, item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if n := countItems(t, db); n != 0 {
		t.Errorf("List after delete returned %d, want 0", n)
	}
}
