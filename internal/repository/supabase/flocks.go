package supabase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
)

// ListFlocks returns every flock, newest entry first.
func (r *Repository) ListFlocks(ctx context.Context) ([]models.Flock, error) {
	var rows []models.Flock
	err := r.rest.From(tableFlocks).
		Select("*").
		Order("entry_date", false).
		Find(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list flocks: %w", err)
	}
	return rows, nil
}

// CountActiveFlocks returns the exact number of flocks in the active state.
func (r *Repository) CountActiveFlocks(ctx context.Context) (int, error) {
	var rows []models.Flock
	total, err := r.rest.From(tableFlocks).
		Select("*").
		Eq("status", models.FlockActive).
		FindWithCount(ctx, &rows)
	if err != nil {
		return 0, fmt.Errorf("count active flocks: %w", err)
	}
	return int(total), nil
}

// GetFlock returns one flock by id.
func (r *Repository) GetFlock(ctx context.Context, id string) (*models.Flock, error) {
	var rows []models.Flock
	err := r.rest.From(tableFlocks).
		Select("*").
		Eq("id", id).
		Limit(1).
		Find(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("get flock %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("get flock %s: %w", id, ErrNotFound)
	}
	return &rows[0], nil
}

// InsertFlock creates a flock and returns the stored row.
func (r *Repository) InsertFlock(ctx context.Context, flock models.FlockWrite) (*models.Flock, error) {
	var rows []models.Flock
	if err := r.rest.From(tableFlocks).Select("*").Insert(ctx, flock, &rows); err != nil {
		return nil, fmt.Errorf("insert flock %s: %w", flock.FlockNumber, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert flock %s: %w", flock.FlockNumber, ErrNotFound)
	}
	return &rows[0], nil
}

// UpdateFlock overwrites the editable columns of a flock.
func (r *Repository) UpdateFlock(ctx context.Context, id string, flock models.FlockWrite) (*models.Flock, error) {
	var rows []models.Flock
	if err := r.rest.From(tableFlocks).Select("*").Eq("id", id).Update(ctx, flock, &rows); err != nil {
		return nil, fmt.Errorf("update flock %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("update flock %s: %w", id, ErrNotFound)
	}
	return &rows[0], nil
}

// DeleteFlock removes a flock.
func (r *Repository) DeleteFlock(ctx context.Context, id string) error {
	if err := r.rest.From(tableFlocks).Eq("id", id).Delete(ctx); err != nil {
		return fmt.Errorf("delete flock %s: %w", id, err)
	}

	r.logger.Debug("flock deleted", zap.String("id", id))
	return nil
}
