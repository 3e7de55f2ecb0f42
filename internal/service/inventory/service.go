package inventory

import (
	"context"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
	"github.com/mamadbah2/erp-avicola/internal/querycache"
	"github.com/mamadbah2/erp-avicola/pkg/textsearch"
)

// Repository reads inventory items.
type Repository interface {
	ListActiveItems(ctx context.Context) ([]models.InventoryItem, error)
}

// Service backs the inventory table.
type Service struct {
	repo   Repository
	cache  *querycache.Cache
	logger *zap.Logger
}

// NewService wires the inventory service.
func NewService(repo Repository, cache *querycache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// List returns the active items whose name or SKU contains search.
func (s *Service) List(ctx context.Context, search string) ([]models.InventoryRow, error) {
	items, err := querycache.Fetch(ctx, s.cache, querycache.KeyInventoryItems, s.repo.ListActiveItems)
	if err != nil {
		return nil, err
	}

	matched := textsearch.Filter(items, search, func(i models.InventoryItem) (string, string) {
		return i.ItemName, i.SKU
	})

	rows := make([]models.InventoryRow, len(matched))
	for i, item := range matched {
		rows[i] = NewRow(item)
	}
	return rows, nil
}

// LowStock returns the rows at or below their minimum, out of stock first.
func (s *Service) LowStock(ctx context.Context) ([]models.InventoryRow, error) {
	rows, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}

	var out, low []models.InventoryRow
	for _, row := range rows {
		switch row.Status {
		case models.StockOut:
			out = append(out, row)
		case models.StockLow:
			low = append(low, row)
		}
	}
	return append(out, low...), nil
}

// NewRow decorates an item with its category, stock status and display figures.
func NewRow(item models.InventoryItem) models.InventoryRow {
	status := models.ClassifyStock(item.CurrentStock, item.MinStock)
	return models.InventoryRow{
		InventoryItem:       item,
		CategoryLabel:       item.CategoryName(),
		Status:              status,
		StatusLabel:         status.Label(),
		CurrentStockDisplay: quantity(item.CurrentStock, item.UnitOfMeasure),
		MinStockDisplay:     quantity(item.MinStock, item.UnitOfMeasure),
		UnitCostDisplay:     "$" + humanize.FormatFloat("#,###.##", item.UnitCost),
	}
}

func quantity(value float64, unit string) string {
	formatted := humanize.CommafWithDigits(value, 2)
	if unit == "" {
		return formatted
	}
	return formatted + " " + unit
}
