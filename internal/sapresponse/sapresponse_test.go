package sapresponse

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sapflow/internal/common"
	"github.com/Veraticus/sapflow/internal/storage"
)

type fakeStore struct {
	err     error
	known   map[string]bool
	applied []storage.LoadedKey
}

func (f *fakeStore) MarkAssignmentLoaded(_ context.Context, key storage.LoadedKey) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.applied = append(f.applied, key)
	if f.known[key.EmployeeCode] {
		delete(f.known, key.EmployeeCode)
		return true, nil
	}
	return false, nil
}

const header = "Employee_Number;Date;HourType;Project;Wbs;Cost Center;Activity Type;ProductionOrder;Operation;OperationActivity;Hours;Status;Serial Number\n"

func row(employee, date, order, activity, hours, status string) string {
	return strings.Join([]string{employee, date, "4", "", "", "", "", order, "0900", activity, hours, "", status}, ";") + "\n"
}

func TestApply(t *testing.T) {
	input := header +
		row("E1.0", "05/03/2024", "500100.0", "0900GG", "7,5", "Success") +
		row("E2", "05/03/2024", "500100", "0900GG", "8", "Error") +
		row("E3", "2024-03-06", "500101", "0120ZC11", "4", " Success ") +
		row("E4", "someday", "500101", "0120ZC11", "4", "Success") +
		row("E1", "05/03/2024", "500100", "0900GG", "7.5", "Success")

	store := &fakeStore{known: map[string]bool{"E1": true, "E3": true}}
	result, err := Apply(context.Background(), store, strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, Result{Rows: 5, Succeeded: 4, Marked: 2, Unmatched: 1, Invalid: 1}, result)
	require.Len(t, store.applied, 3)

	first := store.applied[0]
	assert.Equal(t, "E1", first.EmployeeCode)
	assert.Equal(t, "500100", first.ProductionOrder)
	assert.Equal(t, "0900GG", first.OperationActivity)
	assert.Equal(t, 7.5, first.Hours)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), first.Date)

	assert.Equal(t, "E1", store.applied[2].EmployeeCode, "a repeated row matches nothing once its assignment is loaded")
}

func TestApply_CommaSeparatedWithoutHeader(t *testing.T) {
	input := "E1,05/03/2024,4,,,,,500100,0900,0900GG,8,,Success\n"
	store := &fakeStore{known: map[string]bool{"E1": true}}

	result, err := Apply(context.Background(), store, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rows)
	assert.Equal(t, 1, result.Marked)
}

func TestApply_Errors(t *testing.T) {
	t.Run("too few columns", func(t *testing.T) {
		_, err := Apply(context.Background(), &fakeStore{}, strings.NewReader(header+"E1;05/03/2024;4\n"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTooFewColumns)
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})

	t.Run("store failure", func(t *testing.T) {
		store := &fakeStore{err: errors.New("disk I/O error")}
		_, err := Apply(context.Background(), store, strings.NewReader(header+row("E1", "05/03/2024", "1", "0900GG", "8", "Success")))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})
}

func TestApply_Empty(t *testing.T) {
	result, err := Apply(context.Background(), &fakeStore{}, strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Result{}, result)
}

func TestCleanCode(t *testing.T) {
	assert.Equal(t, "500100", cleanCode(" 500100.0 "))
	assert.Equal(t, "0900GG", cleanCode("0900GG"))
	assert.Equal(t, "10.05", cleanCode("10.05"))
}
