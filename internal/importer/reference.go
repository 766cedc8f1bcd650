package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Veraticus/sapflow/internal/model"
)

var areaColumns = map[string][]string{
	"work_center": {"work_center", "CentroTrabajo"},
	"area":        {"area", "Area"},
	"op_gg":       {"op_gg", "OpGG"},
	"op_min_c":    {"op_min_c", "OpMinC"},
}

var extraCycleColumns = map[string][]string{
	"area_task":   {"area_task", "AreaTarea"},
	"work_center": {"work_center", "CentroTrabajo"},
	"task":        {"task", "Tarea"},
	"cnc_type":    {"cnc_type", "TipoCNC"},
	"oasap":       {"oasap", "OASAP"},
}

var projectColumns = map[string][]string{
	"internal": {"internal_project", "Proyecto"},
	"external": {"external_project", "ProyectoSAP"},
}

// ImportAreas upserts per-work-center area definitions.
func (im *Importer) ImportAreas(ctx context.Context, r io.Reader) (Result, error) {
	t, err := readTable(r)
	if err != nil {
		return Result{}, err
	}
	cols, err := t.columns(areaColumns, "work_center", "area")
	if err != nil {
		return Result{}, err
	}

	var result Result
	var areas []model.AreaDefinition
	for i, row := range t.rows {
		if blank(row) {
			continue
		}
		result.Read++
		wc := cell(row, cols, "work_center")
		if wc == "" {
			result.Skipped++
			skipRow("area", i+2, "missing work center")
			continue
		}
		areas = append(areas, model.AreaDefinition{
			WorkCenter:              wc,
			Area:                    strings.ToUpper(cell(row, cols, "area")),
			GeneralExpenseOperation: cell(row, cols, "op_gg"),
			MinComplexityOperation:  cell(row, cols, "op_min_c"),
		})
	}

	if err := im.store.SaveAreas(ctx, areas); err != nil {
		return result, fmt.Errorf("failed to save areas: %w", err)
	}
	result.Imported = len(areas)
	slog.Info("Imported areas", "read", result.Read, "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

// ImportExtraCycles upserts extra-cycle mappings. A missing area-task key is
// built from the work center and task columns.
func (im *Importer) ImportExtraCycles(ctx context.Context, r io.Reader) (Result, error) {
	t, err := readTable(r)
	if err != nil {
		return Result{}, err
	}
	cols, err := t.columns(extraCycleColumns, "oasap")
	if err != nil {
		return Result{}, err
	}

	var result Result
	var mappings []model.ExtraCycleMapping
	for i, row := range t.rows {
		if blank(row) {
			continue
		}
		result.Read++

		m := model.ExtraCycleMapping{
			AreaTask:   cell(row, cols, "area_task"),
			WorkCenter: cell(row, cols, "work_center"),
			Task:       cell(row, cols, "task"),
			CNCType:    cell(row, cols, "cnc_type"),
			OASAP:      cell(row, cols, "oasap"),
		}
		if m.AreaTask == "" && m.WorkCenter != "" && m.Task != "" {
			m.AreaTask = model.AreaTaskKey(m.WorkCenter, m.Task)
		}
		if m.WorkCenter == "" || m.Task == "" {
			if wc, task, ok := strings.Cut(m.AreaTask, "-"); ok {
				m.WorkCenter, m.Task = wc, task
			}
		}
		if m.WorkCenter == "" || m.Task == "" || m.OASAP == "" {
			result.Skipped++
			skipRow("extra cycle", i+2, "missing area-task or OASAP")
			continue
		}
		mappings = append(mappings, m)
	}

	if err := im.store.SaveExtraCycles(ctx, mappings); err != nil {
		return result, fmt.Errorf("failed to save extra cycles: %w", err)
	}
	result.Imported = len(mappings)
	slog.Info("Imported extra cycles", "read", result.Read, "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

// ImportProjects upserts internal → external project mappings.
func (im *Importer) ImportProjects(ctx context.Context, r io.Reader) (Result, error) {
	t, err := readTable(r)
	if err != nil {
		return Result{}, err
	}
	cols, err := t.columns(projectColumns, "internal", "external")
	if err != nil {
		return Result{}, err
	}

	var result Result
	var mappings []model.ProjectMapping
	for i, row := range t.rows {
		if blank(row) {
			continue
		}
		result.Read++
		m := model.ProjectMapping{
			InternalProject: cell(row, cols, "internal"),
			ExternalProject: cell(row, cols, "external"),
		}
		if m.InternalProject == "" || m.ExternalProject == "" {
			result.Skipped++
			skipRow("project", i+2, "missing project code")
			continue
		}
		mappings = append(mappings, m)
	}

	if err := im.store.SaveProjectMappings(ctx, mappings); err != nil {
		return result, fmt.Errorf("failed to save project mappings: %w", err)
	}
	result.Imported = len(mappings)
	slog.Info("Imported project mappings", "read", result.Read, "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}
