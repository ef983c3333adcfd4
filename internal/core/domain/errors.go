package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidInput    = errors.New("invalid input")
	// ErrExtractionFailed marks whole-file extraction failure; it is carried
	// on the DocumentRecord, not returned as a hard error from ingestion.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrBudgetExceededByFixedCost means system instructions plus the user
	// query alone do not fit the budget; no partial prompt is ever sent.
	ErrBudgetExceededByFixedCost = errors.New("budget exceeded by fixed cost")
	ErrTemporary                 = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
