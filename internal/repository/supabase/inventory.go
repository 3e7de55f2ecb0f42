package supabase

import (
	"context"
	"fmt"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
)

// ListActiveItems returns active inventory items by name, with their category name joined.
func (r *Repository) ListActiveItems(ctx context.Context) ([]models.InventoryItem, error) {
	var rows []models.InventoryItem
	err := r.rest.From(tableInventoryItems).
		Select("*, inventory_categories(category_name)").
		Eq("is_active", true).
		Order("item_name", true).
		Find(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	return rows, nil
}

// ListStockLevels returns current and minimum stock for every item, active or not.
func (r *Repository) ListStockLevels(ctx context.Context) ([]models.StockLevel, error) {
	var rows []models.StockLevel
	if err := r.rest.From(tableInventoryItems).Select("current_stock, min_stock").Find(ctx, &rows); err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}
	return rows, nil
}
