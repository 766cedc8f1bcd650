package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/sapflow/internal/model"
	"github.com/jmoiron/sqlx"
)

// SaveSapOrders appends orders to the catalog. Orders are never updated in
// place: a re-imported order is a new row and wins by creation timestamp.
func (s *SQLiteStorage) SaveSapOrders(ctx context.Context, orders []model.SapOrder) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range orders {
		if err := validateOrder(&orders[i]); err != nil {
			return fmt.Errorf("order at index %d: %w", i, err)
		}
	}

	now := time.Now()
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PrepareNamedContext(ctx, `
			INSERT INTO sap_orders (
				order_number, project, area, vertex, car_number, operation,
				operation_activity, indirect_motive, indirect_category,
				description, active, created_at
			) VALUES (
				:order_number, :project, :area, :vertex, :car_number, :operation,
				:operation_activity, :indirect_motive, :indirect_category,
				:description, :active, :created_at
			)`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i := range orders {
			if orders[i].CreatedAt.IsZero() {
				orders[i].CreatedAt = now
			}
			result, err := stmt.ExecContext(ctx, orders[i])
			if err != nil {
				return fmt.Errorf("failed to insert order %q: %w", orders[i].OrderNumber, err)
			}
			if id, err := result.LastInsertId(); err == nil {
				orders[i].ID = id
			}
		}
		return nil
	})
}

// DeactivateProjectOrders marks every order of the given external projects inactive.
// Used before a full catalog reload of those projects.
func (s *SQLiteStorage) DeactivateProjectOrders(ctx context.Context, projects []string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if len(projects) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`UPDATE sap_orders SET active = 0 WHERE active = 1 AND project IN (?)`, projects)
	if err != nil {
		return 0, fmt.Errorf("failed to build deactivate query: %w", err)
	}
	result, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate orders: %w", err)
	}
	return result.RowsAffected()
}

// GetSapOrders returns the whole order catalog, active and inactive.
func (s *SQLiteStorage) GetSapOrders(ctx context.Context) ([]model.SapOrder, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	orders := []model.SapOrder{}
	if err := s.db.SelectContext(ctx, &orders, `SELECT * FROM sap_orders ORDER BY id`); err != nil {
		return nil, retryable(fmt.Errorf("failed to query sap orders: %w", err))
	}
	return orders, nil
}

// SaveAreas upserts area definitions keyed by work center.
func (s *SQLiteStorage) SaveAreas(ctx context.Context, areas []model.AreaDefinition) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i, a := range areas {
		if strings.TrimSpace(a.WorkCenter) == "" {
			return fmt.Errorf("area at index %d: %w: missing work center", i, ErrInvalidReference)
		}
	}

	return s.upsertAll(ctx, `
		INSERT INTO areas (work_center, area, op_gg, op_min_c)
		VALUES (:work_center, :area, :op_gg, :op_min_c)
		ON CONFLICT(work_center) DO UPDATE SET
			area = excluded.area,
			op_gg = excluded.op_gg,
			op_min_c = excluded.op_min_c`, toArgs(areas))
}

// GetAreas returns every area definition.
func (s *SQLiteStorage) GetAreas(ctx context.Context) ([]model.AreaDefinition, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	areas := []model.AreaDefinition{}
	if err := s.db.SelectContext(ctx, &areas, `SELECT * FROM areas ORDER BY work_center`); err != nil {
		return nil, retryable(fmt.Errorf("failed to query areas: %w", err))
	}
	return areas, nil
}

// SaveExtraCycles upserts extra-cycle mappings keyed by area-task.
func (s *SQLiteStorage) SaveExtraCycles(ctx context.Context, mappings []model.ExtraCycleMapping) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range mappings {
		if strings.TrimSpace(mappings[i].WorkCenter) == "" || strings.TrimSpace(mappings[i].Task) == "" {
			return fmt.Errorf("extra cycle at index %d: %w: missing work center or task", i, ErrInvalidReference)
		}
		if mappings[i].AreaTask == "" {
			mappings[i].AreaTask = model.AreaTaskKey(mappings[i].WorkCenter, mappings[i].Task)
		}
	}

	return s.upsertAll(ctx, `
		INSERT INTO extra_cycles (area_task, work_center, task, cnc_type, oasap)
		VALUES (:area_task, :work_center, :task, :cnc_type, :oasap)
		ON CONFLICT(area_task) DO UPDATE SET
			work_center = excluded.work_center,
			task = excluded.task,
			cnc_type = excluded.cnc_type,
			oasap = excluded.oasap`, toArgs(mappings))
}

// GetExtraCycles returns every extra-cycle mapping.
func (s *SQLiteStorage) GetExtraCycles(ctx context.Context) ([]model.ExtraCycleMapping, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	mappings := []model.ExtraCycleMapping{}
	if err := s.db.SelectContext(ctx, &mappings, `SELECT * FROM extra_cycles ORDER BY area_task`); err != nil {
		return nil, retryable(fmt.Errorf("failed to query extra cycles: %w", err))
	}
	return mappings, nil
}

// SaveProjectMappings upserts internal → external project translations.
func (s *SQLiteStorage) SaveProjectMappings(ctx context.Context, mappings []model.ProjectMapping) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i, m := range mappings {
		if strings.TrimSpace(m.InternalProject) == "" || strings.TrimSpace(m.ExternalProject) == "" {
			return fmt.Errorf("project mapping at index %d: %w: missing project", i, ErrInvalidReference)
		}
	}

	return s.upsertAll(ctx, `
		INSERT INTO project_mappings (internal_project, external_project)
		VALUES (:internal_project, :external_project)
		ON CONFLICT(internal_project) DO UPDATE SET
			external_project = excluded.external_project`, toArgs(mappings))
}

// GetProjectMappings returns every project mapping.
func (s *SQLiteStorage) GetProjectMappings(ctx context.Context) ([]model.ProjectMapping, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	mappings := []model.ProjectMapping{}
	if err := s.db.SelectContext(ctx, &mappings, `SELECT * FROM project_mappings ORDER BY internal_project`); err != nil {
		return nil, retryable(fmt.Errorf("failed to query project mappings: %w", err))
	}
	return mappings, nil
}

func (s *SQLiteStorage) upsertAll(ctx context.Context, query string, rows []any) error {
	if len(rows) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PrepareNamedContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i, row := range rows {
			if _, err := stmt.ExecContext(ctx, row); err != nil {
				return fmt.Errorf("failed to upsert row %d: %w", i, err)
			}
		}
		return nil
	})
}

func toArgs[T any](rows []T) []any {
	out := make([]any, len(rows))
	for i := range rows {
		out[i] = rows[i]
	}
	return out
}
