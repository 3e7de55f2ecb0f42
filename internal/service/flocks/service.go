package flocks

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
	"github.com/mamadbah2/erp-avicola/internal/querycache"
	"github.com/mamadbah2/erp-avicola/pkg/textsearch"
)

// Repository persists flocks.
type Repository interface {
	ListFlocks(ctx context.Context) ([]models.Flock, error)
	GetFlock(ctx context.Context, id string) (*models.Flock, error)
	InsertFlock(ctx context.Context, flock models.FlockWrite) (*models.Flock, error)
	UpdateFlock(ctx context.Context, id string, flock models.FlockWrite) (*models.Flock, error)
	DeleteFlock(ctx context.Context, id string) error
}

// Service backs the flock list and form.
type Service struct {
	repo     Repository
	cache    *querycache.Cache
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService wires the flock service.
func NewService(repo Repository, cache *querycache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		cache:    cache,
		validate: newValidator(),
		logger:   logger,
	}
}

// List returns the flocks, newest entry first, whose number or breed contains search.
func (s *Service) List(ctx context.Context, search string) ([]models.FlockView, error) {
	flocks, err := querycache.Fetch(ctx, s.cache, querycache.KeyFlocks, s.repo.ListFlocks)
	if err != nil {
		return nil, err
	}

	matched := textsearch.Filter(flocks, search, func(f models.Flock) (string, string) {
		return f.FlockNumber, f.Breed
	})

	views := make([]models.FlockView, len(matched))
	for i, f := range matched {
		views[i] = models.NewFlockView(f)
	}
	return views, nil
}

// Active returns the flocks currently in the active state.
func (s *Service) Active(ctx context.Context) ([]models.FlockView, error) {
	all, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}

	active := make([]models.FlockView, 0, len(all))
	for _, f := range all {
		if f.Status == models.FlockActive {
			active = append(active, f)
		}
	}
	return active, nil
}

// Get returns one flock.
func (s *Service) Get(ctx context.Context, id string) (*models.Flock, error) {
	return s.repo.GetFlock(ctx, id)
}

// Defaults returns the values an empty flock form starts with.
func (s *Service) Defaults() models.FlockInput {
	return models.DefaultFlockInput()
}

// Create validates input and inserts a flock whose current quantity starts at
// the initial quantity.
func (s *Service) Create(ctx context.Context, input models.FlockInput) (*models.Flock, error) {
	input = normalize(input)
	if err := validate(s.validate, input); err != nil {
		return nil, err
	}

	write := toWrite(input)
	quantity := input.InitialQuantity
	write.CurrentQuantity = &quantity

	flock, err := s.repo.InsertFlock(ctx, write)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info("flock created", zap.String("id", flock.ID), zap.String("flock_number", flock.FlockNumber))
	return flock, nil
}

// Update validates input and overwrites the editable columns of a flock. The
// stored current quantity is not touched.
func (s *Service) Update(ctx context.Context, id string, input models.FlockInput) (*models.Flock, error) {
	input = normalize(input)
	if err := validate(s.validate, input); err != nil {
		return nil, err
	}

	flock, err := s.repo.UpdateFlock(ctx, id, toWrite(input))
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info("flock updated", zap.String("id", id))
	return flock, nil
}

// Delete removes a flock.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteFlock(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)
	s.logger.Info("flock deleted", zap.String("id", id))
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, querycache.KeyFlocks); err != nil {
		s.logger.Warn("flock cache invalidation failed", zap.Error(err))
	}
}

func normalize(input models.FlockInput) models.FlockInput {
	input.FlockNumber = strings.TrimSpace(input.FlockNumber)
	input.Breed = strings.TrimSpace(input.Breed)
	input.EntryDate = strings.TrimSpace(input.EntryDate)
	input.BirthDate = strings.TrimSpace(input.BirthDate)
	input.ExpectedEndDate = strings.TrimSpace(input.ExpectedEndDate)
	input.Notes = strings.TrimSpace(input.Notes)
	return input
}

func toWrite(input models.FlockInput) models.FlockWrite {
	return models.FlockWrite{
		FlockNumber:     input.FlockNumber,
		FlockType:       input.FlockType,
		Breed:           input.Breed,
		EntryDate:       input.EntryDate,
		InitialQuantity: input.InitialQuantity,
		BirthDate:       optional(input.BirthDate),
		ExpectedEndDate: optional(input.ExpectedEndDate),
		Notes:           optional(input.Notes),
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
