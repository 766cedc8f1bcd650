package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError(t *testing.T) {
	cause := fmt.Errorf("open: %w", ErrNotFound)
	err := NewUserError("Could not open imputations.csv", cause)

	assert.Equal(t, "Could not open imputations.csv: open: not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)

	var userErr *UserError
	require.True(t, errors.As(fmt.Errorf("import: %w", err), &userErr))
	assert.Equal(t, "Could not open imputations.csv", userErr.UserMessage)

	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}

func TestRecordError(t *testing.T) {
	err := &RecordError{ImputationID: 42, Err: ErrDuplicateEntry}
	assert.Equal(t, "imputation 42: duplicate entry", err.Error())
	assert.ErrorIs(t, err, ErrDuplicateEntry)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, expected := range tests {
		level, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, expected, level, in)
	}

	_, err := ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSetupLoggerTo(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	require.NoError(t, SetupLoggerTo(&buf, slog.LevelInfo, "json"))

	LogDebug("hidden", Fields{"k": 1})
	LogWarn("Failed to record run", Fields{"run_id": "r1"})
	LogError(errors.New("boom"), "Export failed", Fields{"rows": 3})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	assert.Equal(t, "WARN", first["level"])
	assert.Equal(t, "r1", first["run_id"])

	var second map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.Equal(t, "boom", second["error"])
	assert.InDelta(t, 3, second["rows"], 0)

	assert.ErrorIs(t, SetupLoggerTo(&buf, slog.LevelInfo, "xml"), ErrInvalidConfig)
}
