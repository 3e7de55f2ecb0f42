package supabase

import (
	"errors"

	"go.uber.org/zap"

	client "github.com/mamadbah2/erp-avicola/pkg/clients/supabase"
)

// ErrNotFound is returned when a single-row lookup matches nothing.
var ErrNotFound = errors.New("row not found")

const (
	tableProfiles        = "user_profiles"
	tableModules         = "system_modules"
	tableFlocks          = "flocks"
	tableInventoryItems  = "inventory_items"
	tableChartOfAccounts = "chart_of_accounts"
	tableDailyProduction = "daily_production"
)

// Repository reads and writes ERP rows through the hosted rows API.
type Repository struct {
	rest   *client.RestClient
	logger *zap.Logger
}

// NewRepository wires a repository on top of a rows client.
func NewRepository(rest *client.RestClient, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{rest: rest, logger: logger}
}
