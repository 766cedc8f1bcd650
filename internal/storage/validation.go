package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/sapflow/internal/model"
)

// Validation errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrNilParameter      = errors.New("parameter cannot be nil")
	ErrInvalidImputation = errors.New("invalid imputation")
	ErrInvalidOrder      = errors.New("invalid sap order")
	ErrInvalidAssignment = errors.New("invalid assignment")
	ErrInvalidReference  = errors.New("invalid reference row")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateImputation(imp *model.Imputation) error {
	if imp == nil {
		return fmt.Errorf("%w: imputation", ErrNilParameter)
	}
	if imp.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidImputation)
	}
	if strings.TrimSpace(imp.EmployeeCode) == "" {
		return fmt.Errorf("%w: missing employee code", ErrInvalidImputation)
	}
	if imp.Hours < 0 {
		return fmt.Errorf("%w: negative hours %.2f", ErrInvalidImputation, imp.Hours)
	}
	return nil
}

func validateOrder(o *model.SapOrder) error {
	if o == nil {
		return fmt.Errorf("%w: order", ErrNilParameter)
	}
	if strings.TrimSpace(o.Operation) == "" {
		return fmt.Errorf("%w: missing operation", ErrInvalidOrder)
	}
	return nil
}

func validateAssignment(a *model.Assignment) error {
	if a == nil {
		return fmt.Errorf("%w: assignment", ErrNilParameter)
	}
	if a.ImputationID <= 0 {
		return fmt.Errorf("%w: missing imputation id", ErrInvalidAssignment)
	}
	if !a.SapOrderID.Valid {
		return fmt.Errorf("%w: missing sap order", ErrInvalidAssignment)
	}
	if a.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidAssignment)
	}
	return nil
}
