package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"erp-inventory/src/models"
	"erp-inventory/src/repositories"
)

type ItemStockLine struct {
	ItemID       uint            `json:"item_id"`
	Name         string          `json:"name"`
	StoreStock   int             `json:"store_stock"`
	ShopStock    int             `json:"shop_stock"`
	TotalStock   int             `json:"total_stock"`
	MinimumStock int             `json:"minimum_stock"`
	NeedsReorder bool            `json:"needs_reorder"`
	StockValue   decimal.Decimal `json:"stock_value"`
	Stores       map[uint]int    `json:"stores"`
	SalePoints   map[uint]int    `json:"sale_points"`
}

type StockReport struct {
	GeneratedAt  time.Time       `json:"generated_at"`
	Items        []ItemStockLine `json:"items"`
	ReorderCount int             `json:"reorder_count"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

// Discrepancy is an item whose cached aggregate differs from its ledger rows.
type Discrepancy struct {
	ItemID     uint `json:"item_id"`
	StoreStock int  `json:"store_stock"`
	StoreSum   int  `json:"store_sum"`
	ShopStock  int  `json:"shop_stock"`
	ShopSum    int  `json:"shop_sum"`
}

type ReportService struct {
	DB     *gorm.DB
	Ledger *repositories.LedgerRepository
}

type ledgerState struct {
	items     []models.Item
	storeRows []models.StoreItem
	pointRows []models.SalePointItem
}

// load reads items and both ledger tiers concurrently.
func (s *ReportService) load(ctx context.Context) (*ledgerState, error) {
	state := &ledgerState{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.DB.WithContext(gctx).Order("name, id").Find(&state.items).Error
	})
	g.Go(func() error {
		rows, err := s.Ledger.StoreRows(s.DB.WithContext(gctx))
		state.storeRows = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.Ledger.SalePointRows(s.DB.WithContext(gctx))
		state.pointRows = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return state, nil
}

// StockReport - Per item totals with the per-location breakdown
func (s *ReportService) StockReport(ctx context.Context) (*StockReport, error) {
	state, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	stores := make(map[uint]map[uint]int)
	for _, r := range state.storeRows {
		if stores[r.ItemID] == nil {
			stores[r.ItemID] = make(map[uint]int)
		}
		stores[r.ItemID][r.StoreID] = r.Quantity
	}
	points := make(map[uint]map[uint]int)
	for _, r := range state.pointRows {
		if points[r.ItemID] == nil {
			points[r.ItemID] = make(map[uint]int)
		}
		points[r.ItemID][r.SalePointID] = r.Quantity
	}

	report := &StockReport{
		GeneratedAt: time.Now().UTC(),
		Items:       make([]ItemStockLine, 0, len(state.items)),
		TotalValue:  decimal.Zero,
	}
	for _, it := range state.items {
		line := ItemStockLine{
			ItemID:       it.ID,
			Name:         it.Name,
			StoreStock:   it.StoreStock,
			ShopStock:    it.ShopStock,
			TotalStock:   it.TotalStock(),
			MinimumStock: it.MinimumStock,
			NeedsReorder: it.NeedsReorder(),
			StockValue:   it.StockValue(),
			Stores:       stores[it.ID],
			SalePoints:   points[it.ID],
		}
		if line.NeedsReorder {
			report.ReorderCount++
		}
		report.TotalValue = report.TotalValue.Add(line.StockValue)
		report.Items = append(report.Items, line)
	}
	return report, nil
}

// Reconcile - Items whose store_stock or shop_stock disagrees with the sum of
// their ledger rows. An empty result means the aggregates are consistent.
func (s *ReportService) Reconcile(ctx context.Context) ([]Discrepancy, error) {
	state, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	storeSum := make(map[uint]int)
	for _, r := range state.storeRows {
		storeSum[r.ItemID] += r.Quantity
	}
	shopSum := make(map[uint]int)
	for _, r := range state.pointRows {
		shopSum[r.ItemID] += r.Quantity
	}

	out := make([]Discrepancy, 0)
	for _, it := range state.items {
		if it.StoreStock == storeSum[it.ID] && it.ShopStock == shopSum[it.ID] {
			continue
		}
		out = append(out, Discrepancy{
			ItemID:     it.ID,
			StoreStock: it.StoreStock,
			StoreSum:   storeSum[it.ID],
			ShopStock:  it.ShopStock,
			ShopSum:    shopSum[it.ID],
		})
	}
	return out, nil
}

// Movements - Journal rows, newest first
func (s *ReportService) Movements(ctx context.Context, f repositories.MovementFilter, page, limit int) ([]models.StockMovement, int64, error) {
	page, limit = pageBounds(page, limit)
	return s.Ledger.Movements(s.DB.WithContext(ctx), f, page, limit)
}
