package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the referenced row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when an insert violates a unique constraint
	ErrConflict = errors.New("record already exists")
	// ErrUnavailable is returned when the store is busy or the operation timed out.
	// Callers may retry.
	ErrUnavailable = errors.New("storage temporarily unavailable")
)

// translateError maps driver and gorm errors onto the package sentinels
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
		case sqlite3.ErrConstraint:
			if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
				return fmt.Errorf("%s: %w", op, ErrConflict)
			}
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
