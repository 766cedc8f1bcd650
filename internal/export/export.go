// Package export writes unloaded assignments as a SAP mass-upload CSV.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Veraticus/sapflow/internal/common"
	"github.com/Veraticus/sapflow/internal/model"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Header is the column order SAP expects.
var Header = []string{
	"Employee_Number",
	"Date",
	"HourType",
	"Project",
	"Wbs",
	"Cost Center",
	"Activity Type",
	"ProductionOrder",
	"Operation",
	"OperationActivity",
	"Hours",
	"Status",
	"Serial Number",
}

// SAP hour-type codes chosen by operation-activity suffix.
const (
	HourTypeIndirect      = "3"
	HourTypeGeneral       = "4"
	HourTypeMinComplexity = "5"
)

// Store provides the assignments to export.
type Store interface {
	GetUnloadedAssignments(ctx context.Context) ([]model.Assignment, error)
}

// MapHourType derives the SAP hour type from the operation activity.
func MapHourType(operationActivity, original string) string {
	n := len(operationActivity)
	switch {
	case n >= 2 && operationActivity[n-2:] == "XX":
		return HourTypeIndirect
	case n >= 2 && operationActivity[n-2:] == "GG":
		return HourTypeGeneral
	case n >= 2 && operationActivity[n-2] == 'C':
		return HourTypeMinComplexity
	default:
		return original
	}
}

// Record renders one assignment as a CSV row.
func Record(a model.Assignment) []string {
	date := ""
	if !a.Date.IsZero() {
		date = a.Date.Format("02/01/2006")
	}
	return []string{
		a.EmployeeCode,
		date,
		MapHourType(a.OperationActivity, a.HourType),
		"", "", "", "",
		a.ProductionOrder,
		a.Operation,
		a.OperationActivity,
		strconv.FormatFloat(model.RoundHours(a.Hours), 'f', -1, 64),
		"",
		"",
	}
}

// Write encodes assignments as ';'-separated, CRLF-terminated Windows-1252 CSV.
// Characters outside the code page are replaced rather than failing the export.
func Write(w io.Writer, assignments []model.Assignment) error {
	tw := transform.NewWriter(w, encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()))
	cw := csv.NewWriter(tw)
	cw.Comma = ';'
	cw.UseCRLF = true

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, a := range assignments {
		if err := cw.Write(Record(a)); err != nil {
			return fmt.Errorf("failed to write assignment %d: %w", a.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to encode CSV: %w", err)
	}
	return nil
}

// Exporter produces mass-upload files from the store.
type Exporter struct {
	store Store
	now   func() time.Time
	dir   string
}

// New creates an exporter writing files into dir.
func New(store Store, dir string) *Exporter {
	return &Exporter{store: store, dir: dir, now: time.Now}
}

// Stream writes every unloaded assignment to w and returns how many rows
// were written.
func (e *Exporter) Stream(ctx context.Context, w io.Writer) (int, error) {
	assignments, err := e.store.GetUnloadedAssignments(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load assignments: %w", err)
	}
	if err := Write(w, assignments); err != nil {
		return 0, err
	}
	return len(assignments), nil
}

// FileName returns the timestamped export file name.
func (e *Exporter) FileName() string {
	return fmt.Sprintf("mass_upload_%s.csv", e.now().Format("20060102_150405"))
}

// ExportFile writes the unloaded assignments into a new file under the
// export directory and returns its path.
func (e *Exporter) ExportFile(ctx context.Context) (string, int, error) {
	if err := os.MkdirAll(e.dir, 0o750); err != nil {
		return "", 0, fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(e.dir, e.FileName())
	f, err := os.Create(path) //nolint:gosec // path is built from the configured export directory
	if err != nil {
		return "", 0, fmt.Errorf("failed to create export file: %w", err)
	}

	n, err := e.Stream(ctx, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close export file: %w", closeErr)
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, err
	}

	common.LogInfo("Exported assignments", common.Fields{"path": path, "rows": n})
	return path, n, nil
}
