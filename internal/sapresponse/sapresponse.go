// Package sapresponse reconciles a SAP mass-upload result file with the
// assignments that were exported, marking the accepted ones as loaded.
package sapresponse

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Veraticus/sapflow/internal/common"
	"github.com/Veraticus/sapflow/internal/storage"
	"golang.org/x/text/encoding/charmap"
)

// Positions of the fields used for matching, in export column order.
const (
	colEmployee          = 0
	colDate              = 1
	colProductionOrder   = 7
	colOperationActivity = 9
	colHours             = 10
	colStatus            = 12
)

// StatusSuccess marks a row SAP accepted.
const StatusSuccess = "Success"

// ErrTooFewColumns indicates the file is not a SAP upload response.
var ErrTooFewColumns = fmt.Errorf("%w: response row has too few columns", common.ErrInvalidInput)

// Store marks assignments as loaded.
type Store interface {
	MarkAssignmentLoaded(ctx context.Context, key storage.LoadedKey) (bool, error)
}

// Result reports what a reconciliation did.
type Result struct {
	Rows      int `json:"rows"`
	Succeeded int `json:"succeeded"`
	Marked    int `json:"marked"`
	Unmatched int `json:"unmatched"`
	Invalid   int `json:"invalid"`
}

// Apply reads a response file and marks every successful row's assignment
// as loaded. Each successful row marks at most one assignment.
func Apply(ctx context.Context, store Store, r io.Reader) (Result, error) {
	records, err := readRecords(r)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for i, rec := range records {
		if i == 0 && isHeader(rec) {
			continue
		}
		result.Rows++
		if len(rec) <= colStatus {
			return result, fmt.Errorf("%w: line %d has %d", ErrTooFewColumns, i+1, len(rec))
		}
		if strings.TrimSpace(rec[colStatus]) != StatusSuccess {
			continue
		}
		result.Succeeded++

		key, err := parseKey(rec)
		if err != nil {
			result.Invalid++
			slog.Warn("Unreadable SAP response row", "line", i+1, "error", err)
			continue
		}

		marked, err := store.MarkAssignmentLoaded(ctx, key)
		if err != nil {
			return result, fmt.Errorf("failed to mark line %d loaded: %w", i+1, err)
		}
		if marked {
			result.Marked++
		} else {
			result.Unmatched++
			common.LogDebug("No unloaded assignment for SAP response row", common.Fields{
				"line":     i + 1,
				"employee": key.EmployeeCode,
				"order":    key.ProductionOrder,
			})
		}
	}

	slog.Info("Applied SAP response",
		"rows", result.Rows,
		"succeeded", result.Succeeded,
		"marked", result.Marked,
		"unmatched", result.Unmatched,
		"invalid", result.Invalid)
	return result, nil
}

func readRecords(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(raw) {
		if raw, err = charmap.Windows1252.NewDecoder().Bytes(raw); err != nil {
			return nil, fmt.Errorf("%w: failed to decode response: %w", common.ErrInvalidInput, err)
		}
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = ';'
	if first, _, _ := bytes.Cut(raw, []byte("\n")); !bytes.Contains(first, []byte(";")) {
		reader.Comma = ','
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %w", common.ErrInvalidInput, err)
	}
	return records, nil
}

func isHeader(rec []string) bool {
	return len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[colEmployee]), "Employee_Number")
}

func parseKey(rec []string) (storage.LoadedKey, error) {
	date, err := parseDate(strings.TrimSpace(rec[colDate]))
	if err != nil {
		return storage.LoadedKey{}, err
	}
	hours, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(rec[colHours]), ",", ".", 1), 64)
	if err != nil {
		return storage.LoadedKey{}, fmt.Errorf("invalid hours %q: %w", rec[colHours], err)
	}
	return storage.LoadedKey{
		EmployeeCode:      cleanCode(rec[colEmployee]),
		Date:              date,
		ProductionOrder:   cleanCode(rec[colProductionOrder]),
		OperationActivity: cleanCode(rec[colOperationActivity]),
		Hours:             hours,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"02/01/2006", "2006-01-02", "02.01.2006"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// cleanCode strips the ".0" spreadsheets append to numeric codes.
func cleanCode(s string) string {
	return strings.TrimSuffix(strings.TrimSpace(s), ".0")
}
