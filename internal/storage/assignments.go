package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/sapflow/internal/common"
	"github.com/Veraticus/sapflow/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// DeleteUnloadedAssignments removes every assignment SAP has not loaded yet.
// Loaded rows are never touched, which makes re-running an assignment idempotent.
func (s *SQLiteStorage) DeleteUnloadedAssignments(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM assignments WHERE loaded = 0`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete unloaded assignments: %w", err)
	}
	return result.RowsAffected()
}

// InsertAssignment persists one assignment in its own transaction.
// A uniqueness violation is reported as common.ErrDuplicateEntry.
func (s *SQLiteStorage) InsertAssignment(ctx context.Context, a *model.Assignment) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAssignment(a); err != nil {
		return err
	}

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	a.Hours = model.RoundHours(a.Hours)

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.NamedExecContext(ctx, `
			INSERT INTO assignments (
				imputation_id, sap_order_id, employee_code, date, hour_type,
				production_order, operation, operation_activity, hours,
				loaded, fallback, tier, created_at
			) VALUES (
				:imputation_id, :sap_order_id, :employee_code, :date, :hour_type,
				:production_order, :operation, :operation_activity, :hours,
				:loaded, :fallback, :tier, :created_at
			)`, a)
		if err != nil {
			if isConstraintError(err) {
				return fmt.Errorf("imputation %d: %w: %v", a.ImputationID, common.ErrDuplicateEntry, err)
			}
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get assignment ID: %w", err)
		}
		a.ID = id
		return nil
	})
}

// AssignmentFilter narrows assignment queries.
type AssignmentFilter struct {
	Loaded *bool
}

// GetAssignments returns assignments ordered by imputation id.
func (s *SQLiteStorage) GetAssignments(ctx context.Context, filter AssignmentFilter) ([]model.Assignment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT * FROM assignments`
	var args []any
	if filter.Loaded != nil {
		query += ` WHERE loaded = ?`
		args = append(args, *filter.Loaded)
	}
	query += ` ORDER BY imputation_id`

	assignments := []model.Assignment{}
	if err := s.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	return assignments, nil
}

// GetUnloadedAssignments returns the assignments waiting to be uploaded to SAP.
func (s *SQLiteStorage) GetUnloadedAssignments(ctx context.Context) ([]model.Assignment, error) {
	loaded := false
	return s.GetAssignments(ctx, AssignmentFilter{Loaded: &loaded})
}

// LoadedKey identifies an exported assignment in a SAP upload response.
type LoadedKey struct {
	Date              time.Time
	EmployeeCode      string
	ProductionOrder   string
	OperationActivity string
	Hours             float64
}

// MarkAssignmentLoaded flags the first unloaded assignment matching key as
// loaded. It reports false when nothing matched.
func (s *SQLiteStorage) MarkAssignmentLoaded(ctx context.Context, key LoadedKey) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}

	var marked bool
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var id int64
		err := tx.GetContext(ctx, &id, `
			SELECT id FROM assignments
			WHERE loaded = 0
				AND employee_code = ?
				AND substr(date, 1, 10) = ?
				AND production_order = ?
				AND operation_activity = ?
				AND ABS(hours - ?) < 0.005
			ORDER BY id
			LIMIT 1`,
			key.EmployeeCode, key.Date.Format("2006-01-02"), key.ProductionOrder,
			key.OperationActivity, model.RoundHours(key.Hours))
		if err != nil {
			if isNoRows(err) {
				return nil
			}
			return fmt.Errorf("failed to find assignment: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE assignments SET loaded = 1 WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to mark assignment %d loaded: %w", id, err)
		}
		marked = true
		return nil
	})
	return marked, err
}

// retryable marks lock contention as worth retrying. Reference reads can
// collide with an import writing the same tables.
func retryable(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
		return &common.RetryableError{Err: err, Retryable: true}
	}
	return err
}

func isConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return strings.Contains(err.Error(), "constraint failed")
}
