package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/config"
	"github.com/mamadbah2/erp-avicola/internal/domain/models"
)

const (
	reportTimeout  = 2 * time.Minute
	refreshTimeout = 30 * time.Second
	// refreshMargin renews the access token this long before it expires.
	refreshMargin = 5 * time.Minute
)

// Reporter publishes the daily stock report.
type Reporter interface {
	Publish(ctx context.Context) (models.DashboardSnapshot, error)
}

// SessionRefresher renews the process session before its token expires.
type SessionRefresher interface {
	RefreshIfExpiring(ctx context.Context, margin time.Duration) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	reporter  Reporter
	refresher SessionRefresher
	cfg       config.ReportingConfig
	logger    *zap.Logger
}

// NewScheduler creates a scheduler whose schedules are read in loc.
func NewScheduler(cfg config.ReportingConfig, loc *time.Location, reporter Reporter, refresher SessionRefresher, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		reporter:  reporter,
		refresher: refresher,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("report_schedule", s.cfg.CronSchedule),
		zap.String("refresh_schedule", s.cfg.RefreshSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.publishReport); err != nil {
		return fmt.Errorf("schedule daily report: %w", err)
	}

	if s.refresher != nil && s.cfg.RefreshSchedule != "" {
		if _, err := s.cron.AddFunc(s.cfg.RefreshSchedule, s.refreshSession); err != nil {
			return fmt.Errorf("schedule session refresh: %w", err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) publishReport() {
	s.logger.Info("generating daily report")
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	snapshot, err := s.reporter.Publish(ctx)
	if err != nil {
		s.logger.Error("daily report incomplete", zap.String("id", snapshot.ID), zap.Error(err))
		return
	}
	s.logger.Info("daily report sent successfully", zap.String("id", snapshot.ID))
}

func (s *Scheduler) refreshSession() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := s.refresher.RefreshIfExpiring(ctx, refreshMargin); err != nil {
		s.logger.Warn("session refresh failed, signed out", zap.Error(err))
	}
}
