package repositories

import (
	"errors"
	"fmt"

	"erp-inventory/src/models"
)

var ErrNotFound = errors.New("record not found")

// InactiveLocationError is returned when a mutation targets a store or sale
// point whose status is not active.
type InactiveLocationError struct {
	Location models.Location
	Status   models.LocationStatus
}

func (e *InactiveLocationError) Error() string {
	return fmt.Sprintf("%s %d is %s, stock cannot be updated", e.Location.Kind, e.Location.ID, e.Status)
}

// NegativeStockError is returned when a mutation would take a ledger row below zero.
type NegativeStockError struct {
	Location models.Location
	ItemID   uint
	Current  int
	Delta    int
}

func (e *NegativeStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d at %s %d: have %d, change %d",
		e.ItemID, e.Location.Kind, e.Location.ID, e.Current, e.Delta)
}
