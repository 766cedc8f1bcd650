package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/sapflow/internal/common"
	"github.com/Veraticus/sapflow/internal/model"
	"github.com/jmoiron/sqlx"
)

const insertImputation = `
	INSERT INTO imputations (
		date, employee_code, time_slot, hours, project, vertex, car_number,
		work_center, task, associated_task, indirect_motive, indirect_category,
		area_task, imputation_type, imported_at
	) VALUES (
		:date, :employee_code, :time_slot, :hours, :project, :vertex, :car_number,
		:work_center, :task, :associated_task, :indirect_motive, :indirect_category,
		:area_task, :imputation_type, :imported_at
	)`

// SaveImputations inserts imputations in one transaction and returns how many were written.
// Assigned ids are written back into the slice.
func (s *SQLiteStorage) SaveImputations(ctx context.Context, imps []model.Imputation) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	for i := range imps {
		if err := validateImputation(&imps[i]); err != nil {
			return 0, fmt.Errorf("imputation at index %d: %w", i, err)
		}
	}

	now := time.Now()
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PrepareNamedContext(ctx, insertImputation)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i := range imps {
			imps[i].Hours = model.RoundHours(imps[i].Hours)
			if imps[i].ImportedAt.IsZero() {
				imps[i].ImportedAt = now
			}
			result, err := stmt.ExecContext(ctx, imps[i])
			if err != nil {
				return fmt.Errorf("failed to insert imputation at index %d: %w", i, err)
			}
			id, err := result.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get imputation ID: %w", err)
			}
			imps[i].ID = id
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(imps), nil
}

// GetImputation retrieves one imputation by id.
func (s *SQLiteStorage) GetImputation(ctx context.Context, id int64) (*model.Imputation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var imp model.Imputation
	err := s.db.GetContext(ctx, &imp, `SELECT * FROM imputations WHERE id = ?`, id)
	if isNoRows(err) {
		return nil, fmt.Errorf("imputation %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get imputation: %w", err)
	}
	return &imp, nil
}

// pendingFilter selects imputations with no assignment, or one SAP has not loaded yet.
const pendingFilter = `
	FROM imputations i
	LEFT JOIN assignments a ON a.imputation_id = i.id
	WHERE a.id IS NULL OR a.loaded = 0`

// GetPendingImputations returns the full rows of imputations awaiting assignment, ordered by id.
func (s *SQLiteStorage) GetPendingImputations(ctx context.Context) ([]model.Imputation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	imps := []model.Imputation{}
	if err := s.db.SelectContext(ctx, &imps, `SELECT i.* `+pendingFilter+` ORDER BY i.id`); err != nil {
		return nil, fmt.Errorf("failed to query pending imputations: %w", err)
	}
	return imps, nil
}

// ListPendingImputations returns a summary of pending imputations for display.
func (s *SQLiteStorage) ListPendingImputations(ctx context.Context) ([]model.PendingImputation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	pending := []model.PendingImputation{}
	query := `SELECT i.id, i.date, i.employee_code, i.hours, i.project, i.vertex, a.loaded ` +
		pendingFilter + ` ORDER BY i.id`
	if err := s.db.SelectContext(ctx, &pending, query); err != nil {
		return nil, fmt.Errorf("failed to list pending imputations: %w", err)
	}
	return pending, nil
}

// CountPendingImputations returns how many imputations await assignment.
func (s *SQLiteStorage) CountPendingImputations(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) `+pendingFilter); err != nil {
		return 0, fmt.Errorf("failed to count pending imputations: %w", err)
	}
	return count, nil
}
