package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/sapflow/internal/model"
)

// Column aliases for the labor-hours export. The first alias is the name
// reported when a required column is missing.
var imputationColumns = map[string][]string{
	"date":              {"date", "FechaImp", "Fecha"},
	"employee":          {"employee_code", "CodEmpleado", "employee"},
	"time_slot":         {"time_slot", "Timpu"},
	"hours":             {"hours", "Horas"},
	"project":           {"project", "Proyecto"},
	"vertex":            {"vertex", "TipoCoche"},
	"car":               {"car_number", "NumCoche"},
	"work_center":       {"work_center", "CentroTrabajo"},
	"task":              {"task", "Tarea"},
	"associated_task":   {"associated_task", "TareaAsoc"},
	"indirect_motive":   {"indirect_motive", "TipoMotivo"},
	"indirect_category": {"indirect_category", "TipoIndirecto"},
	"imputation_type":   {"imputation_type", "TipoImput"},
	"factory":           {"factory", "Factoria"},
	"comment":           {"comment", "Comentario"},
}

var errEmptyNumber = errors.New("empty number")

var dateLayouts = []string{"02/01/2006", "2006-01-02", "2006-01-02 15:04:05", "02/01/2006 15:04"}

// ImportImputations reads a labor-hours export and stores every usable row.
// Rows with an unparseable or future date are skipped. Identical rows are
// kept: the source legitimately repeats them.
func (im *Importer) ImportImputations(ctx context.Context, r io.Reader) (Result, error) {
	t, err := readTable(r)
	if err != nil {
		return Result{}, err
	}
	cols, err := t.columns(imputationColumns, "date", "employee", "hours")
	if err != nil {
		return Result{}, err
	}

	extraCycles, err := im.extraCycleKeys(ctx)
	if err != nil {
		return Result{}, err
	}

	today := truncateDay(im.opts.Now())
	var result Result
	imps := make([]model.Imputation, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		if blank(row) {
			continue
		}
		result.Read++

		imp, reason := im.parseImputation(row, cols, today)
		if reason != "" {
			result.Skipped++
			skipRow("imputation", line, reason)
			continue
		}
		if imp.HasAssociatedTask() {
			key := model.AreaTaskKey(imp.WorkCenter, imp.AssociatedTask)
			if extraCycles[key] {
				imp.AreaTask = key
			}
		}
		imps = append(imps, imp)
	}

	if len(imps) > 0 {
		n, err := im.store.SaveImputations(ctx, imps)
		if err != nil {
			return result, fmt.Errorf("failed to save imputations: %w", err)
		}
		result.Imported = n
	}

	slog.Info("Imported imputations", "read", result.Read, "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

func (im *Importer) parseImputation(row []string, cols map[string]int, today time.Time) (model.Imputation, string) {
	if im.opts.Factory != "" {
		if _, ok := cols["factory"]; ok && !strings.EqualFold(cell(row, cols, "factory"), im.opts.Factory) {
			return model.Imputation{}, "other factory"
		}
	}
	comment := cell(row, cols, "comment")
	if strings.Contains(comment, "FU") && strings.Contains(comment, "300") {
		return model.Imputation{}, "excluded by comment"
	}

	date, ok := parseDate(cell(row, cols, "date"))
	if !ok {
		return model.Imputation{}, "unparseable date"
	}
	if date.After(today) {
		return model.Imputation{}, "future date"
	}

	employee := cell(row, cols, "employee")
	if employee == "" {
		return model.Imputation{}, "missing employee"
	}

	hours, err := parseNumber(cell(row, cols, "hours"))
	if err != nil || hours < 0 {
		return model.Imputation{}, "invalid hours"
	}

	return model.Imputation{
		Date:             date,
		EmployeeCode:     employee,
		TimeSlot:         cell(row, cols, "time_slot"),
		Hours:            model.RoundHours(hours),
		Project:          cell(row, cols, "project"),
		Vertex:           strings.ToUpper(cell(row, cols, "vertex")),
		CarNumber:        cell(row, cols, "car"),
		WorkCenter:       cell(row, cols, "work_center"),
		Task:             im.aliasTask(cell(row, cols, "task")),
		AssociatedTask:   cell(row, cols, "associated_task"),
		IndirectMotive:   cell(row, cols, "indirect_motive"),
		IndirectCategory: cell(row, cols, "indirect_category"),
		ImputationType:   cell(row, cols, "imputation_type"),
	}, ""
}

func (im *Importer) extraCycleKeys(ctx context.Context) (map[string]bool, error) {
	mappings, err := im.store.GetExtraCycles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load extra cycles: %w", err)
	}
	keys := make(map[string]bool, len(mappings))
	for _, m := range mappings {
		keys[m.AreaTask] = true
	}
	return keys, nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return truncateDay(d), true
		}
	}
	return time.Time{}, false
}

// parseNumber accepts both "7.5" and the decimal-comma "7,5".
func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, errEmptyNumber
	}
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
