package dashboard

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
	"github.com/mamadbah2/erp-avicola/internal/querycache"
)

// productionWindow is the number of trailing production days averaged.
const productionWindow = 7

// Repository exposes the reads the dashboard aggregates.
type Repository interface {
	CountActiveFlocks(ctx context.Context) (int, error)
	ListStockLevels(ctx context.Context) ([]models.StockLevel, error)
	RecentProduction(ctx context.Context, limit int) ([]models.ProductionSample, error)
	ListActiveItems(ctx context.Context) ([]models.InventoryItem, error)
}

// Service computes the dashboard headline figures.
type Service struct {
	repo   Repository
	cache  *querycache.Cache
	logger *zap.Logger
}

// NewService wires the dashboard service.
func NewService(repo Repository, cache *querycache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Stats returns the cached figures, running the three source queries
// concurrently on a miss.
func (s *Service) Stats(ctx context.Context) (models.DashboardStats, error) {
	return querycache.Fetch(ctx, s.cache, querycache.KeyDashboardStats, s.load)
}

func (s *Service) load(ctx context.Context) (models.DashboardStats, error) {
	var (
		activeFlocks int
		levels       []models.StockLevel
		samples      []models.ProductionSample
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountActiveFlocks(gctx)
		activeFlocks = n
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.ListStockLevels(gctx)
		levels = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.RecentProduction(gctx, productionWindow)
		samples = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, fmt.Errorf("load dashboard stats: %w", err)
	}

	stats := ComputeStats(activeFlocks, levels, samples)
	s.logger.Debug("dashboard stats computed",
		zap.Int("active_flocks", stats.ActiveFlocks),
		zap.Int("low_stock_items", stats.LowStockItems),
	)
	return stats, nil
}

// ComputeStats combines the three query results. Low stock counts every level
// at or below its minimum; averages divide by at least one.
func ComputeStats(activeFlocks int, levels []models.StockLevel, samples []models.ProductionSample) models.DashboardStats {
	lowStock := 0
	for _, l := range levels {
		if l.IsLow() {
			lowStock++
		}
	}

	var eggs, laying float64
	for _, p := range samples {
		eggs += float64(p.TotalEggs)
		laying += p.LayingPercentage
	}
	n := float64(max(len(samples), 1))

	return models.DashboardStats{
		ActiveFlocks:        activeFlocks,
		LowStockItems:       lowStock,
		AvgProduction:       int(math.Round(eggs / n)),
		AvgLayingPercentage: fmt.Sprintf("%.1f", laying/n),
	}
}

// LowStockAlerts lists the active items at or below their minimum stock.
func (s *Service) LowStockAlerts(ctx context.Context) ([]models.StockAlert, error) {
	items, err := s.repo.ListActiveItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}

	alerts := make([]models.StockAlert, 0)
	for _, item := range items {
		level := models.StockLevel{CurrentStock: item.CurrentStock, MinStock: item.MinStock}
		if !level.IsLow() {
			continue
		}
		alerts = append(alerts, models.StockAlert{
			SKU:          item.SKU,
			ItemName:     item.ItemName,
			CurrentStock: item.CurrentStock,
			MinStock:     item.MinStock,
			Status:       models.ClassifyStock(item.CurrentStock, item.MinStock),
		})
	}
	return alerts, nil
}
