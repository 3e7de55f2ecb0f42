package supabase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
)

// ListModules returns every module descriptor ordered by sort_order.
func (r *Repository) ListModules(ctx context.Context) ([]models.SystemModule, error) {
	var rows []models.SystemModule
	err := r.rest.From(tableModules).
		Select("*").
		Order("sort_order", true).
		Find(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return rows, nil
}

// SetModuleEnabled writes the enabled flag of a module.
func (r *Repository) SetModuleEnabled(ctx context.Context, moduleKey string, enabled bool) error {
	err := r.rest.From(tableModules).
		Eq("module_key", moduleKey).
		Update(ctx, map[string]bool{"is_enabled": enabled}, nil)
	if err != nil {
		return fmt.Errorf("set module %s enabled=%t: %w", moduleKey, enabled, err)
	}

	r.logger.Debug("module flag written", zap.String("module", moduleKey), zap.Bool("enabled", enabled))
	return nil
}
