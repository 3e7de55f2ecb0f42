package supabase

import (
	"context"
	"fmt"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
)

// ListActiveAccounts returns the active chart of accounts ordered by code.
func (r *Repository) ListActiveAccounts(ctx context.Context) ([]models.Account, error) {
	var rows []models.Account
	err := r.rest.From(tableChartOfAccounts).
		Select("*").
		Eq("is_active", true).
		Order("account_code", true).
		Find(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return rows, nil
}
