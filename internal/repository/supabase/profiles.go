package supabase

import (
	"context"
	"fmt"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
)

// GetProfile returns the profile of an identity, or nil when it has none.
func (r *Repository) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var rows []models.Profile
	err := r.rest.From(tableProfiles).
		Select("*").
		Eq("id", userID).
		Limit(1).
		Find(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// CreateProfile inserts the profile row of a new identity and returns it.
func (r *Repository) CreateProfile(ctx context.Context, profile models.NewProfile) (*models.Profile, error) {
	var rows []models.Profile
	if err := r.rest.From(tableProfiles).Select("*").Insert(ctx, profile, &rows); err != nil {
		return nil, fmt.Errorf("create profile %s: %w", profile.ID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create profile %s: %w", profile.ID, ErrNotFound)
	}
	return &rows[0], nil
}
