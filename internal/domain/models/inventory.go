package models

import "time"

// InventoryCategory is the joined inventory_categories projection.
type InventoryCategory struct {
	CategoryName string `json:"category_name"`
}

// InventoryItem is a stock-keeping unit (inventory_items table).
type InventoryItem struct {
	ID            string             `json:"id"`
	SKU           string             `json:"sku"`
	ItemName      string             `json:"item_name"`
	Description   *string            `json:"description,omitempty"`
	CategoryID    *string            `json:"category_id,omitempty"`
	UnitOfMeasure string             `json:"unit_of_measure"`
	MinStock      float64            `json:"min_stock"`
	MaxStock      *float64           `json:"max_stock,omitempty"`
	CurrentStock  float64            `json:"current_stock"`
	UnitCost      float64            `json:"unit_cost"`
	Barcode       *string            `json:"barcode,omitempty"`
	IsActive      bool               `json:"is_active"`
	RequiresBatch bool               `json:"requires_batch"`
	Notes         *string            `json:"notes,omitempty"`
	Category      *InventoryCategory `json:"inventory_categories,omitempty"`
	CreatedAt     *time.Time         `json:"created_at,omitempty"`
	UpdatedAt     *time.Time         `json:"updated_at,omitempty"`
}

// CategoryName returns the joined category name or "-" when the item has none.
func (i InventoryItem) CategoryName() string {
	if i.Category == nil || i.Category.CategoryName == "" {
		return "-"
	}
	return i.Category.CategoryName
}

// StockLevel is the minimal projection used for low-stock counting.
type StockLevel struct {
	CurrentStock float64 `json:"current_stock"`
	MinStock     float64 `json:"min_stock"`
}

// IsLow reports whether the stock is at or below its minimum.
func (l StockLevel) IsLow() bool {
	return l.CurrentStock <= l.MinStock
}

// StockStatus classifies an item's stock against its minimum.
type StockStatus string

const (
	StockOut StockStatus = "out_of_stock"
	StockLow StockStatus = "low_stock"
	StockOK  StockStatus = "in_stock"
)

// ClassifyStock returns out_of_stock at zero, low_stock at or below min, in_stock otherwise.
func ClassifyStock(current, minimum float64) StockStatus {
	switch {
	case current == 0:
		return StockOut
	case current <= minimum:
		return StockLow
	default:
		return StockOK
	}
}

// Label returns the Spanish display name used in the inventory table.
func (s StockStatus) Label() string {
	switch s {
	case StockOut:
		return "Sin stock"
	case StockLow:
		return "Stock bajo"
	default:
		return "En stock"
	}
}

// InventoryRow is one line of the inventory table.
type InventoryRow struct {
	InventoryItem
	CategoryLabel       string      `json:"category_label"`
	Status              StockStatus `json:"stock_status"`
	StatusLabel         string      `json:"stock_status_label"`
	CurrentStockDisplay string      `json:"current_stock_display"`
	MinStockDisplay     string      `json:"min_stock_display"`
	UnitCostDisplay     string      `json:"unit_cost_display"`
}
