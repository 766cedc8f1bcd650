package importer

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Veraticus/sapflow/internal/model"
)

var orderColumns = map[string][]string{
	"order":       {"Order", "order_number"},
	"activity":    {"Operation Activity", "operation_activity"},
	"effectivity": {"Effectivity"},
}

// Patterns over the SAP task list export. An operation activity reads like
// "0040GG (Cleaning)", an effectivity like "AB1103. EA.C,12".
var (
	orderNumberRe  = regexp.MustCompile(`\((\d+)\)`)
	operationRe    = regexp.MustCompile(`(\d+)`)
	activityCodeRe = regexp.MustCompile(`^(\S+)`)
	descriptionRe  = regexp.MustCompile(`\((.*?)\)`)
	projectRe      = regexp.MustCompile(`([A-Z]{2})(\d+)\.`)
	areaRe         = regexp.MustCompile(`\.\s*([A-Z]+)\.`)
	vertexRe       = regexp.MustCompile(`([A-Z]+)\.([A-Z]),`)
	carRe          = regexp.MustCompile(`,(\d+)`)
)

// OrderOptions tunes an order import.
type OrderOptions struct {
	// ReplaceProjects retires the existing orders of every project present in
	// the file before the new rows are stored.
	ReplaceProjects bool
}

type orderKey struct {
	orderNumber string
	activity    string
	project     string
	area        string
	vertex      string
	car         int64
}

func keyOf(o model.SapOrder) orderKey {
	return orderKey{
		orderNumber: o.OrderNumber,
		activity:    o.OperationActivity,
		project:     o.Project,
		area:        o.Area,
		vertex:      o.Vertex,
		car:         o.CarNumber.Int64,
	}
}

// ImportOrders reads the SAP task list export and appends the orders not
// already in the catalog.
func (im *Importer) ImportOrders(ctx context.Context, r io.Reader, opts OrderOptions) (Result, error) {
	t, err := readTable(r)
	if err != nil {
		return Result{}, err
	}
	cols, err := t.columns(orderColumns, "order", "activity", "effectivity")
	if err != nil {
		return Result{}, err
	}

	existing, err := im.store.GetSapOrders(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load existing orders: %w", err)
	}
	seen := make(map[orderKey]bool, len(existing))
	if !opts.ReplaceProjects {
		for _, o := range existing {
			if o.Active {
				seen[keyOf(o)] = true
			}
		}
	}

	var result Result
	var orders []model.SapOrder
	projects := make(map[string]bool)
	for i, row := range t.rows {
		line := i + 2
		if blank(row) {
			continue
		}
		result.Read++

		order, ok := ParseOrder(cell(row, cols, "order"), cell(row, cols, "activity"), cell(row, cols, "effectivity"))
		if !ok {
			result.Skipped++
			skipRow("order", line, "empty operation activity")
			continue
		}
		key := keyOf(order)
		if seen[key] {
			result.Skipped++
			continue
		}
		seen[key] = true
		projects[order.Project] = true
		orders = append(orders, order)
	}

	if opts.ReplaceProjects && len(projects) > 0 {
		names := make([]string, 0, len(projects))
		for p := range projects {
			names = append(names, p)
		}
		sort.Strings(names)
		n, err := im.store.DeactivateProjectOrders(ctx, names)
		if err != nil {
			return result, fmt.Errorf("failed to retire project orders: %w", err)
		}
		result.Deactivated = n
	}

	if len(orders) > 0 {
		if err := im.store.SaveSapOrders(ctx, orders); err != nil {
			return result, fmt.Errorf("failed to save orders: %w", err)
		}
		result.Imported = len(orders)
	}

	slog.Info("Imported SAP orders",
		"read", result.Read,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"deactivated", result.Deactivated)
	return result, nil
}

// ParseOrder extracts an order from the three raw columns of the SAP task
// list. An activity without digits (the placeholder order) is its own
// operation. It reports false when the activity is empty.
func ParseOrder(orderCol, activityCol, effectivity string) (model.SapOrder, bool) {
	code := firstGroup(activityCodeRe, activityCol, 1)
	if code == "" {
		return model.SapOrder{}, false
	}
	operation := firstGroup(operationRe, activityCol, 1)
	if operation == "" {
		operation = code
	}

	orderNumber := firstGroup(orderNumberRe, orderCol, 1)
	if orderNumber == "" {
		orderNumber = strings.TrimSpace(orderCol)
	}

	order := model.SapOrder{
		OrderNumber:       orderNumber,
		Operation:         operation,
		OperationActivity: code,
		Description:       firstGroup(descriptionRe, activityCol, 1),
		Project:           firstGroup(projectRe, effectivity, 2),
		Area:              firstGroup(areaRe, effectivity, 1),
		Vertex:            firstGroup(vertexRe, effectivity, 2),
		Active:            true,
	}
	if car, err := strconv.ParseInt(firstGroup(carRe, effectivity, 1), 10, 64); err == nil {
		order.CarNumber = sql.NullInt64{Int64: car, Valid: true}
	}
	return order, true
}

func firstGroup(re *regexp.Regexp, s string, group int) string {
	m := re.FindStringSubmatch(s)
	if len(m) <= group {
		return ""
	}
	return strings.TrimSpace(m[group])
}
