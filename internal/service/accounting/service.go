package accounting

import (
	"context"
	"math"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
	"github.com/mamadbah2/erp-avicola/internal/querycache"
	"github.com/mamadbah2/erp-avicola/pkg/textsearch"
)

// Repository reads the chart of accounts.
type Repository interface {
	ListActiveAccounts(ctx context.Context) ([]models.Account, error)
}

// Service backs the chart-of-accounts table.
type Service struct {
	repo   Repository
	cache  *querycache.Cache
	logger *zap.Logger
}

// NewService wires the chart-of-accounts service.
func NewService(repo Repository, cache *querycache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// List returns the active accounts, by code, whose name or code contains search.
func (s *Service) List(ctx context.Context, search string) ([]models.AccountRow, error) {
	accounts, err := querycache.Fetch(ctx, s.cache, querycache.KeyChartOfAccounts, s.repo.ListActiveAccounts)
	if err != nil {
		return nil, err
	}

	matched := textsearch.Filter(accounts, search, func(a models.Account) (string, string) {
		return a.AccountName, a.AccountCode
	})

	rows := make([]models.AccountRow, len(matched))
	for i, a := range matched {
		rows[i] = models.AccountRow{
			Account:            a,
			TypeLabel:          a.AccountType.Label(),
			NormalBalanceLabel: a.NormalBalance.Label(),
			BalanceDisplay:     FormatCurrency(a.CurrentBalance),
		}
	}
	return rows, nil
}

// FormatCurrency renders an amount with thousands separators and two decimals.
func FormatCurrency(amount float64) string {
	if amount < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", math.Abs(amount))
	}
	return "$" + humanize.FormatFloat("#,###.##", amount)
}
