package models

import "time"

type LocationStatus string

const (
	LocationActive      LocationStatus = "active"
	LocationInactive    LocationStatus = "inactive"
	LocationMaintenance LocationStatus = "maintenance"
)

func (s LocationStatus) Valid() bool {
	switch s {
	case LocationActive, LocationInactive, LocationMaintenance:
		return true
	}
	return false
}

// Store is back-room custody: stock not yet on the shop floor.
type Store struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"type:varchar(200);uniqueIndex;not null" json:"name"`
	Address         string         `gorm:"type:varchar(200)" json:"address"`
	BranchID        uint           `gorm:"index" json:"branch_id"`
	ContactPersonID uint           `json:"contact_person_id"`
	ContactNumber   string         `gorm:"type:varchar(20)" json:"contact_number"`
	Status          LocationStatus `gorm:"type:varchar(20);not null" json:"status"`
	Notes           string         `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (Store) TableName() string {
	return "stores"
}

func (s Store) IsActive() bool { return s.Status == LocationActive }

type SalePoint struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"type:varchar(200);uniqueIndex;not null" json:"name"`
	Address         string         `gorm:"type:varchar(200)" json:"address"`
	BranchID        uint           `gorm:"index" json:"branch_id"`
	ContactPersonID uint           `json:"contact_person_id"`
	ContactNumber   string         `gorm:"type:varchar(20)" json:"contact_number"`
	Status          LocationStatus `gorm:"type:varchar(20);not null" json:"status"`
	Notes           string         `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (SalePoint) TableName() string {
	return "sale_points"
}

func (s SalePoint) IsActive() bool { return s.Status == LocationActive }

type SupplierStatus string

const (
	SupplierActive      SupplierStatus = "active"
	SupplierInactive    SupplierStatus = "inactive"
	SupplierBlacklisted SupplierStatus = "blacklisted"
)

type Supplier struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"type:varchar(200);uniqueIndex;not null" json:"name"`
	Address       string         `gorm:"type:varchar(200)" json:"address"`
	ContactPerson string         `gorm:"type:varchar(200)" json:"contact_person"`
	ContactNumber string         `gorm:"type:varchar(20)" json:"contact_number"`
	Email         string         `gorm:"type:varchar(254)" json:"email"`
	Status        SupplierStatus `gorm:"type:varchar(20);not null" json:"status"`
	PaymentTerms  string         `gorm:"type:varchar(100)" json:"payment_terms"`
	TaxNumber     string         `gorm:"type:varchar(50)" json:"tax_number"`
	Notes         string         `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (Supplier) TableName() string {
	return "suppliers"
}
