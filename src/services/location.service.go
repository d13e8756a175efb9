package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"erp-inventory/src/models"
	"erp-inventory/src/repositories"
)

type LocationInput struct {
	Name            string `validate:"required,max=200"`
	Address         string `validate:"max=200"`
	BranchID        uint
	ContactPersonID uint
	ContactNumber   string `validate:"max=20"`
	Status          models.LocationStatus
	Notes           string
}

type SupplierInput struct {
	Name          string `validate:"required,max=200"`
	Address       string `validate:"max=200"`
	ContactPerson string `validate:"max=200"`
	ContactNumber string `validate:"max=20"`
	Email         string `validate:"omitempty,email,max=254"`
	Status        models.SupplierStatus
	PaymentTerms  string `validate:"max=100"`
	TaxNumber     string `validate:"max=50"`
	Notes         string
}

// LocationStock is the valued snapshot of one store or sale point.
type LocationStock struct {
	Location   models.Location           `json:"location"`
	Name       string                    `json:"name"`
	Status     models.LocationStatus     `json:"status"`
	Lines      []repositories.LedgerLine `json:"lines"`
	TotalUnits int                       `json:"total_units"`
	TotalValue decimal.Decimal           `json:"total_value"`
}

type LocationService struct {
	DB     *gorm.DB
	Ledger *repositories.LedgerRepository
}

func locationStatus(s models.LocationStatus) (models.LocationStatus, error) {
	if s == "" {
		return models.LocationActive, nil
	}
	if !s.Valid() {
		return "", invalid("status", "unknown status %q", s)
	}
	return s, nil
}

func (s *LocationService) CreateStore(ctx context.Context, in LocationInput) (*models.Store, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	status, err := locationStatus(in.Status)
	if err != nil {
		return nil, err
	}
	store := &models.Store{
		Name:            strings.TrimSpace(in.Name),
		Address:         in.Address,
		BranchID:        in.BranchID,
		ContactPersonID: in.ContactPersonID,
		ContactNumber:   in.ContactNumber,
		Status:          status,
		Notes:           in.Notes,
	}
	if err := s.DB.WithContext(ctx).Create(store).Error; err != nil {
		return nil, translate(err)
	}
	return store, nil
}

func (s *LocationService) CreateSalePoint(ctx context.Context, in LocationInput) (*models.SalePoint, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	status, err := locationStatus(in.Status)
	if err != nil {
		return nil, err
	}
	point := &models.SalePoint{
		Name:            strings.TrimSpace(in.Name),
		Address:         in.Address,
		BranchID:        in.BranchID,
		ContactPersonID: in.ContactPersonID,
		ContactNumber:   in.ContactNumber,
		Status:          status,
		Notes:           in.Notes,
	}
	if err := s.DB.WithContext(ctx).Create(point).Error; err != nil {
		return nil, translate(err)
	}
	return point, nil
}

// SetStoreStatus - Activate, deactivate or put a store under maintenance.
// Only active stores accept ledger mutations.
func (s *LocationService) SetStoreStatus(ctx context.Context, id uint, status models.LocationStatus) (*models.Store, error) {
	if !status.Valid() {
		return nil, invalid("status", "unknown status %q", status)
	}
	res := s.DB.WithContext(ctx).Model(&models.Store{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, notFound("store", id)
	}
	return s.GetStore(ctx, id)
}

func (s *LocationService) SetSalePointStatus(ctx context.Context, id uint, status models.LocationStatus) (*models.SalePoint, error) {
	if !status.Valid() {
		return nil, invalid("status", "unknown status %q", status)
	}
	res := s.DB.WithContext(ctx).Model(&models.SalePoint{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, notFound("sale point", id)
	}
	return s.GetSalePoint(ctx, id)
}

func (s *LocationService) GetStore(ctx context.Context, id uint) (*models.Store, error) {
	var store models.Store
	if err := s.DB.WithContext(ctx).First(&store, id).Error; err != nil {
		if repositories.IsNotFound(err) {
			return nil, notFound("store", id)
		}
		return nil, err
	}
	return &store, nil
}

func (s *LocationService) GetSalePoint(ctx context.Context, id uint) (*models.SalePoint, error) {
	var point models.SalePoint
	if err := s.DB.WithContext(ctx).First(&point, id).Error; err != nil {
		if repositories.IsNotFound(err) {
			return nil, notFound("sale point", id)
		}
		return nil, err
	}
	return &point, nil
}

func (s *LocationService) ListStores(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	err := s.DB.WithContext(ctx).Order("name").Find(&stores).Error
	return stores, err
}

func (s *LocationService) ListSalePoints(ctx context.Context) ([]models.SalePoint, error) {
	var points []models.SalePoint
	err := s.DB.WithContext(ctx).Order("name").Find(&points).Error
	return points, err
}

// StoreStock - Valued snapshot of a store at buying price
func (s *LocationService) StoreStock(ctx context.Context, id uint) (*LocationStock, error) {
	store, err := s.GetStore(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, models.StoreLocation(id), store.Name, store.Status)
}

// SalePointStock - Valued snapshot of a sale point at selling price
func (s *LocationService) SalePointStock(ctx context.Context, id uint) (*LocationStock, error) {
	point, err := s.GetSalePoint(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, models.SalePointLocation(id), point.Name, point.Status)
}

func (s *LocationService) snapshot(ctx context.Context, loc models.Location, name string, status models.LocationStatus) (*LocationStock, error) {
	lines, err := s.Ledger.Snapshot(s.DB.WithContext(ctx), loc)
	if err != nil {
		return nil, err
	}
	out := &LocationStock{Location: loc, Name: name, Status: status, Lines: lines, TotalValue: decimal.Zero}
	for _, l := range lines {
		out.TotalUnits += l.Quantity
		out.TotalValue = out.TotalValue.Add(l.UnitValue.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return out, nil
}

// ============ SUPPLIERS ============

func (s *LocationService) CreateSupplier(ctx context.Context, in SupplierInput) (*models.Supplier, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	status := in.Status
	switch status {
	case "":
		status = models.SupplierActive
	case models.SupplierActive, models.SupplierInactive, models.SupplierBlacklisted:
	default:
		return nil, invalid("status", "unknown status %q", status)
	}
	supplier := &models.Supplier{
		Name:          strings.TrimSpace(in.Name),
		Address:       in.Address,
		ContactPerson: in.ContactPerson,
		ContactNumber: in.ContactNumber,
		Email:         in.Email,
		Status:        status,
		PaymentTerms:  in.PaymentTerms,
		TaxNumber:     in.TaxNumber,
		Notes:         in.Notes,
	}
	if err := s.DB.WithContext(ctx).Create(supplier).Error; err != nil {
		return nil, translate(err)
	}
	return supplier, nil
}

func (s *LocationService) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := s.DB.WithContext(ctx).Order("name").Find(&suppliers).Error
	return suppliers, err
}

func (s *LocationService) GetSupplier(ctx context.Context, id uint) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := s.DB.WithContext(ctx).First(&supplier, id).Error; err != nil {
		if repositories.IsNotFound(err) {
			return nil, notFound("supplier", id)
		}
		return nil, err
	}
	return &supplier, nil
}

// UpdateSupplier - Replace contact details, and status when given. Blacklisting
// blocks new receivings but leaves recorded ones untouched.
func (s *LocationService) UpdateSupplier(ctx context.Context, id uint, in SupplierInput) (*models.Supplier, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	values := map[string]interface{}{
		"name":           strings.TrimSpace(in.Name),
		"address":        in.Address,
		"contact_person": in.ContactPerson,
		"contact_number": in.ContactNumber,
		"email":          in.Email,
		"payment_terms":  in.PaymentTerms,
		"tax_number":     in.TaxNumber,
		"notes":          in.Notes,
	}
	switch in.Status {
	case "":
	case models.SupplierActive, models.SupplierInactive, models.SupplierBlacklisted:
		values["status"] = in.Status
	default:
		return nil, invalid("status", "unknown status %q", in.Status)
	}
	res := s.DB.WithContext(ctx).Model(&models.Supplier{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFound("supplier", id)
	}
	return s.GetSupplier(ctx, id)
}

// SupplierTotalPurchases - Sum of received line totals across every
// receiving from the supplier.
func (s *LocationService) SupplierTotalPurchases(ctx context.Context, id uint) (decimal.Decimal, error) {
	if _, err := s.GetSupplier(ctx, id); err != nil {
		return decimal.Zero, err
	}
	var total decimal.NullDecimal
	err := s.DB.WithContext(ctx).
		Table("received_items").
		Select("SUM(received_items.total_cost)").
		Joins("JOIN receivings ON receivings.id = received_items.receiving_id").
		Where("receivings.supplier_id = ?", id).
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
