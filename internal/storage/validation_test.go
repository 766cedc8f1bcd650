package storage

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/sapflow/internal/model"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name      string
		str       string
		paramName string
		wantErr   bool
	}{
		{
			name:      "valid string",
			str:       "test",
			paramName: "param",
			wantErr:   false,
		},
		{
			name:      "empty string",
			str:       "",
			paramName: "param",
			wantErr:   true,
		},
		{
			name:      "whitespace only",
			str:       "   ",
			paramName: "param",
			wantErr:   true,
		},
		{
			name:      "string with spaces",
			str:       "  test  ",
			paramName: "param",
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, tt.paramName)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.paramName) {
				t.Errorf("validateString() error should contain param name %s, got %v", tt.paramName, err)
			}
		})
	}
}


func TestValidateImputation(t *testing.T) {
	valid := model.Imputation{
		Date:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EmployeeCode: "E1",
		Hours:        7.5,
	}

	tests := []struct {
		imp     *model.Imputation
		modify  func(*model.Imputation)
		name    string
		wantErr bool
	}{
		{name: "valid imputation", imp: &valid},
		{name: "nil imputation", imp: nil, wantErr: true},
		{name: "missing date", imp: &valid, modify: func(i *model.Imputation) { i.Date = time.Time{} }, wantErr: true},
		{name: "missing employee", imp: &valid, modify: func(i *model.Imputation) { i.EmployeeCode = " " }, wantErr: true},
		{name: "negative hours", imp: &valid, modify: func(i *model.Imputation) { i.Hours = -1 }, wantErr: true},
		{name: "zero hours allowed", imp: &valid, modify: func(i *model.Imputation) { i.Hours = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var imp *model.Imputation
			if tt.imp != nil {
				copied := *tt.imp
				imp = &copied
				if tt.modify != nil {
					tt.modify(imp)
				}
			}
			err := validateImputation(imp)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateImputation() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateOrder(t *testing.T) {
	if err := validateOrder(&model.SapOrder{Operation: "0010"}); err != nil {
		t.Errorf("validateOrder() unexpected error: %v", err)
	}
	if err := validateOrder(&model.SapOrder{Operation: "  "}); err == nil {
		t.Error("validateOrder() should reject an order without operation")
	}
	if err := validateOrder(nil); err == nil {
		t.Error("validateOrder() should reject nil")
	}
}

func TestValidateAssignment(t *testing.T) {
	valid := model.Assignment{
		ImputationID: 1,
		SapOrderID:   sql.NullInt64{Int64: 3, Valid: true},
		Date:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		modify  func(*model.Assignment)
		name    string
		wantErr bool
	}{
		{name: "valid assignment"},
		{name: "missing imputation", modify: func(a *model.Assignment) { a.ImputationID = 0 }, wantErr: true},
		{name: "missing order", modify: func(a *model.Assignment) { a.SapOrderID.Valid = false }, wantErr: true},
		{name: "missing date", modify: func(a *model.Assignment) { a.Date = time.Time{} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			if tt.modify != nil {
				tt.modify(&a)
			}
			err := validateAssignment(&a)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAssignment() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
