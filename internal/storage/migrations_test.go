package storage

import (
	"context"
	"testing"
)

func TestMigrate_Idempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	version, err := store.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != ExpectedSchemaVersion {
		t.Errorf("SchemaVersion() = %d, want %d", version, ExpectedSchemaVersion)
	}
}

func TestMigrate_CreatesSchema(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	objects := []struct {
		kind string
		name string
	}{
		{"table", "imputations"},
		{"table", "sap_orders"},
		{"table", "assignments"},
		{"table", "areas"},
		{"table", "extra_cycles"},
		{"table", "project_mappings"},
		{"table", "assignment_runs"},
		{"index", "idx_sap_orders_lookup"},
		{"index", "idx_assignments_loaded"},
	}

	for _, obj := range objects {
		var count int
		err := store.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?`, obj.kind, obj.name).Scan(&count)
		if err != nil {
			t.Fatalf("failed to inspect %s %s: %v", obj.kind, obj.name, err)
		}
		if count != 1 {
			t.Errorf("%s %s was not created", obj.kind, obj.name)
		}
	}
}

func TestSchemaVersion_FreshDatabase(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	version, err := store.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != 0 {
		t.Errorf("SchemaVersion() = %d, want 0 before migrating", version)
	}
}
