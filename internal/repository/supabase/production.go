package supabase

import (
	"context"
	"fmt"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
)

// RecentProduction returns the latest production days, newest first.
func (r *Repository) RecentProduction(ctx context.Context, limit int) ([]models.ProductionSample, error) {
	var rows []models.ProductionSample
	err := r.rest.From(tableDailyProduction).
		Select("total_eggs, laying_percentage").
		Order("production_date", false).
		Limit(limit).
		Find(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list recent production: %w", err)
	}
	return rows, nil
}
