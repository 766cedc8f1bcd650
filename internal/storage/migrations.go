package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS project_mappings (
					internal_project TEXT PRIMARY KEY,
					external_project TEXT NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS areas (
					work_center TEXT PRIMARY KEY,
					area TEXT NOT NULL DEFAULT '',
					op_gg TEXT NOT NULL DEFAULT '',
					op_min_c TEXT NOT NULL DEFAULT ''
				)`,

				`CREATE TABLE IF NOT EXISTS extra_cycles (
					area_task TEXT PRIMARY KEY,
					work_center TEXT NOT NULL,
					task TEXT NOT NULL,
					cnc_type TEXT NOT NULL DEFAULT '',
					oasap TEXT NOT NULL DEFAULT ''
				)`,

				`CREATE TABLE IF NOT EXISTS imputations (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					date DATE NOT NULL,
					employee_code TEXT NOT NULL,
					time_slot TEXT NOT NULL DEFAULT '',
					hours REAL NOT NULL,
					project TEXT NOT NULL DEFAULT '',
					vertex TEXT NOT NULL DEFAULT '',
					car_number TEXT NOT NULL DEFAULT '',
					work_center TEXT NOT NULL DEFAULT '',
					task TEXT NOT NULL DEFAULT '',
					associated_task TEXT NOT NULL DEFAULT '',
					indirect_motive TEXT NOT NULL DEFAULT '',
					indirect_category TEXT NOT NULL DEFAULT '',
					area_task TEXT NOT NULL DEFAULT '',
					imputation_type TEXT NOT NULL DEFAULT '',
					imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_imputations_date ON imputations(date)`,

				`CREATE TABLE IF NOT EXISTS sap_orders (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					order_number TEXT NOT NULL DEFAULT '',
					project TEXT NOT NULL DEFAULT '',
					area TEXT NOT NULL DEFAULT '',
					vertex TEXT NOT NULL DEFAULT '',
					car_number INTEGER,
					operation TEXT NOT NULL DEFAULT '',
					operation_activity TEXT NOT NULL DEFAULT '',
					indirect_motive TEXT NOT NULL DEFAULT '',
					indirect_category TEXT NOT NULL DEFAULT '',
					description TEXT NOT NULL DEFAULT '',
					active BOOLEAN NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_sap_orders_project ON sap_orders(project)`,
				`CREATE INDEX idx_sap_orders_operation ON sap_orders(operation)`,

				`CREATE TABLE IF NOT EXISTS assignments (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					imputation_id INTEGER NOT NULL UNIQUE,
					sap_order_id INTEGER,
					employee_code TEXT NOT NULL,
					date DATE NOT NULL,
					hour_type TEXT NOT NULL,
					production_order TEXT NOT NULL DEFAULT '',
					operation TEXT NOT NULL DEFAULT '',
					operation_activity TEXT NOT NULL DEFAULT '',
					hours REAL NOT NULL,
					loaded BOOLEAN NOT NULL DEFAULT 0,
					fallback BOOLEAN NOT NULL DEFAULT 0,
					tier TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (imputation_id) REFERENCES imputations(id),
					FOREIGN KEY (sap_order_id) REFERENCES sap_orders(id)
				)`,
				`CREATE INDEX idx_assignments_loaded ON assignments(loaded)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add partial index for exact order lookups",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_sap_orders_lookup
				ON sap_orders(project, vertex, car_number, operation_activity)
				WHERE active = 1
			`)
			return err
		},
	},
	{
		Version:     3,
		Description: "Add run history for auditing",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS assignment_runs (
					id TEXT PRIMARY KEY,
					status TEXT NOT NULL,
					started_at DATETIME NOT NULL,
					finished_at DATETIME,
					cleaned INTEGER NOT NULL DEFAULT 0,
					pending INTEGER NOT NULL DEFAULT 0,
					assigned INTEGER NOT NULL DEFAULT 0,
					fallback INTEGER NOT NULL DEFAULT 0,
					discarded INTEGER NOT NULL DEFAULT 0,
					failed INTEGER NOT NULL DEFAULT 0
				)`,
				`CREATE INDEX IF NOT EXISTS idx_assignment_runs_started ON assignment_runs(started_at)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the schema up to ExpectedSchemaVersion.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion returns the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
