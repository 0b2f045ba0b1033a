package data

import (
	"errors"
	"strings"
)

// Common repository errors
var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidID         = errors.New("invalid ID")
	ErrDuplicateRecord   = errors.New("duplicate record")
	ErrStaleStatus       = errors.New("status changed concurrently")
	ErrDatabaseOperation = errors.New("database operation failed")
)

// isDuplicateError checks if the error is a duplicate key error
func isDuplicateError(err error, constraintName string) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key") &&
		strings.Contains(err.Error(), constraintName)
}
