package modules

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
)

// Repository reads and writes module descriptors.
type Repository interface {
	ListModules(ctx context.Context) ([]models.SystemModule, error)
	SetModuleEnabled(ctx context.Context, moduleKey string, enabled bool) error
}

// Store keeps the last fetched module list and its enabled subset.
// requires_modules is carried on each descriptor but not enforced.
type Store struct {
	repo   Repository
	logger *zap.Logger

	mu      sync.RWMutex
	all     []models.SystemModule
	enabled []models.SystemModule
	loading bool
}

// NewStore builds an empty store.
func NewStore(repo Repository, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{repo: repo, logger: logger}
}

// FetchModules reloads every descriptor in sort order and replaces the cached
// lists in one step. On error the previous lists are kept.
func (s *Store) FetchModules(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	all, err := s.repo.ListModules(ctx)
	if err != nil {
		return fmt.Errorf("fetch modules: %w", err)
	}
	enabled := models.EnabledOnly(all)

	s.mu.Lock()
	s.all = all
	s.enabled = enabled
	s.mu.Unlock()

	s.logger.Debug("modules fetched", zap.Int("total", len(all)), zap.Int("enabled", len(enabled)))
	return nil
}

// ToggleModule writes the enabled flag remotely, then re-fetches the list.
func (s *Store) ToggleModule(ctx context.Context, moduleKey string, enabled bool) error {
	if err := s.repo.SetModuleEnabled(ctx, moduleKey, enabled); err != nil {
		return fmt.Errorf("toggle module: %w", err)
	}

	s.logger.Info("module toggled", zap.String("module", moduleKey), zap.Bool("enabled", enabled))
	return s.FetchModules(ctx)
}

// IsModuleEnabled checks the enabled set of the last fetch.
func (s *Store) IsModuleEnabled(moduleKey string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.enabled {
		if m.ModuleKey == moduleKey {
			return true
		}
	}
	return false
}

// Modules returns every descriptor of the last fetch.
func (s *Store) Modules() []models.SystemModule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SystemModule(nil), s.all...)
}

// EnabledModules returns the enabled descriptors of the last fetch, in sort order.
func (s *Store) EnabledModules() []models.SystemModule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SystemModule(nil), s.enabled...)
}

// Loading reports whether a fetch is in progress.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}
