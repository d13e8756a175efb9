package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"erp-inventory/src/models"
	"erp-inventory/src/repositories"
)

// ErrNotFound is wrapped by every lookup that misses.
var ErrNotFound = repositories.ErrNotFound

// Ledger failures surface unchanged from the repository layer.
type (
	InactiveLocationError = repositories.InactiveLocationError
	NegativeStockError    = repositories.NegativeStockError
)

// ValidationError reports malformed or inconsistent input. It is always
// returned before any ledger row has been touched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IllegalStateTransitionError reports a workflow action attempted from a
// state that does not allow it.
type IllegalStateTransitionError struct {
	Entity string
	ID     uint
	From   string
	Action string
}

func (e *IllegalStateTransitionError) Error() string {
	return fmt.Sprintf("%s %d: cannot %s from %s", e.Entity, e.ID, e.Action, e.From)
}

func notFound(entity string, id uint) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

// translate maps driver level errors onto the service taxonomy.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%v: %w", err, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &ValidationError{Message: "a record with the same unique value already exists"}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &ValidationError{Message: "referenced record does not exist or is still in use"}
	case errors.Is(err, models.ErrQuantityOutOfRange):
		return &ValidationError{Field: "quantity", Message: err.Error()}
	}
	return err
}
