package export

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sapflow/internal/model"
)

type fakeStore struct {
	err         error
	assignments []model.Assignment
}

func (f *fakeStore) GetUnloadedAssignments(_ context.Context) ([]model.Assignment, error) {
	return f.assignments, f.err
}

func testAssignment(employee, activity string, hours float64) model.Assignment {
	return model.Assignment{
		Date:              time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		EmployeeCode:      employee,
		HourType:          model.DefaultHourType,
		ProductionOrder:   "500100",
		Operation:         activity[:4],
		OperationActivity: activity,
		Hours:             hours,
	}
}

func TestMapHourType(t *testing.T) {
	tests := []struct {
		activity string
		expected string
	}{
		{activity: "0300XX", expected: HourTypeIndirect},
		{activity: "0900GG", expected: HourTypeGeneral},
		{activity: "0700C1", expected: HourTypeMinComplexity},
		{activity: "0120ZC11", expected: model.DefaultHourType},
		{activity: "G", expected: model.DefaultHourType},
		{activity: "", expected: model.DefaultHourType},
	}
	for _, tt := range tests {
		t.Run(tt.activity, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapHourType(tt.activity, model.DefaultHourType))
		})
	}
}

func TestRecord(t *testing.T) {
	rec := Record(testAssignment("E1", "0900GG", 7.456))

	require.Len(t, rec, len(Header))
	assert.Equal(t, "E1", rec[0])
	assert.Equal(t, "05/03/2024", rec[1])
	assert.Equal(t, HourTypeGeneral, rec[2])
	assert.Equal(t, []string{"", "", "", ""}, rec[3:7])
	assert.Equal(t, "500100", rec[7])
	assert.Equal(t, "0900", rec[8])
	assert.Equal(t, "0900GG", rec[9])
	assert.Equal(t, "7.46", rec[10])
	assert.Empty(t, rec[12])
}

func TestWrite(t *testing.T) {
	a := testAssignment("Muñoz", "0120ZC11", 8)
	b := testAssignment("E2", "0120ZC11", 1.5)
	b.EmployeeCode = "E2 €"
	c := testAssignment("日本", "0120ZC11", 2)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []model.Assignment{a, b, c}))

	raw := buf.Bytes()
	lines := strings.Split(strings.TrimSuffix(string(raw), "\r\n"), "\r\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Employee_Number;Date;HourType;"))

	assert.True(t, bytes.Contains(raw, []byte{'M', 'u', 0xF1, 'o', 'z', ';'}), "ñ is written as a single cp1252 byte")
	assert.True(t, bytes.Contains(raw, []byte{'E', '2', ' ', 0x80}), "€ maps to 0x80")
	assert.True(t, strings.HasPrefix(lines[3], "\x1a\x1a;"), "unsupported characters are replaced")
	assert.NotContains(t, string(raw), "\n\n")
}

func TestExporter_ExportFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	store := &fakeStore{assignments: []model.Assignment{testAssignment("E1", "0900GG", 8)}}
	e := New(store, dir)
	e.now = func() time.Time { return time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC) }

	path, n, err := e.ExportFile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, filepath.Join(dir, "mass_upload_20240305_143000.csv"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "E1;05/03/2024;4;")
}

func TestExporter_ExportFileRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	e := New(&fakeStore{err: errors.New("database is locked")}, dir)

	_, _, err := e.ExportFile(context.Background())
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExporter_StreamEmpty(t *testing.T) {
	var buf bytes.Buffer
	n, err := New(&fakeStore{}, "").Stream(context.Background(), &buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, strings.Join(Header, ";")+"\r\n", buf.String())
}
