// Package testutil provides test helpers for sapflow: an isolated in-memory
// database and fluent builders for imputations and SAP orders.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/sapflow/internal/model"
	"github.com/Veraticus/sapflow/internal/storage"
)

// TestDB is a migrated in-memory database scoped to one test.
type TestDB struct {
	*storage.SQLiteStorage
	t *testing.T
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	db.MustSeed(testutil.Seed{
//		Orders: []model.SapOrder{testutil.NewOrder(1).Project("P1").Build()},
//	})
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{SQLiteStorage: store, t: t}
}

// Seed is reference and input data to load before a test.
type Seed struct {
	Imputations []model.Imputation
	Orders      []model.SapOrder
	Areas       []model.AreaDefinition
	ExtraCycles []model.ExtraCycleMapping
	Projects    []model.ProjectMapping
}

// MustSeed writes every non-empty part of seed or fails the test.
func (db *TestDB) MustSeed(seed Seed) {
	db.t.Helper()
	ctx := context.Background()

	if len(seed.Orders) > 0 {
		if err := db.SaveSapOrders(ctx, seed.Orders); err != nil {
			db.t.Fatalf("failed to seed orders: %v", err)
		}
	}
	if len(seed.Areas) > 0 {
		if err := db.SaveAreas(ctx, seed.Areas); err != nil {
			db.t.Fatalf("failed to seed areas: %v", err)
		}
	}
	if len(seed.ExtraCycles) > 0 {
		if err := db.SaveExtraCycles(ctx, seed.ExtraCycles); err != nil {
			db.t.Fatalf("failed to seed extra cycles: %v", err)
		}
	}
	if len(seed.Projects) > 0 {
		if err := db.SaveProjectMappings(ctx, seed.Projects); err != nil {
			db.t.Fatalf("failed to seed projects: %v", err)
		}
	}
	if len(seed.Imputations) > 0 {
		if _, err := db.SaveImputations(ctx, seed.Imputations); err != nil {
			db.t.Fatalf("failed to seed imputations: %v", err)
		}
	}
}

// MustAssignments returns every stored assignment or fails the test.
func (db *TestDB) MustAssignments() []model.Assignment {
	db.t.Helper()
	assignments, err := db.GetAssignments(context.Background(), storage.AssignmentFilter{})
	if err != nil {
		db.t.Fatalf("failed to read assignments: %v", err)
	}
	return assignments
}
