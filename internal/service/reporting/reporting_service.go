package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
	"github.com/mamadbah2/erp-avicola/internal/service/commands"
	"github.com/mamadbah2/erp-avicola/internal/service/session"
)

const dateLayout = "2006-01-02"

// StatsSource provides the figures a report is built from.
type StatsSource interface {
	Stats(ctx context.Context) (models.DashboardStats, error)
	LowStockAlerts(ctx context.Context) ([]models.StockAlert, error)
}

// SessionSource exposes the process session the reads run under.
type SessionSource interface {
	Snapshot() session.Snapshot
}

// SnapshotStore keeps report history.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot models.DashboardSnapshot) error
}

// SnapshotExporter copies reports to an external sheet.
type SnapshotExporter interface {
	AppendSnapshot(ctx context.Context, snapshot models.DashboardSnapshot) error
}

// Notifier delivers the report digest to the operator.
type Notifier interface {
	Notify(ctx context.Context, body string) error
}

// Sinks are the optional destinations of a report. Nil sinks are skipped.
type Sinks struct {
	Store    SnapshotStore
	Exporter SnapshotExporter
	Notifier Notifier
}

// Service builds and publishes the daily stock report.
type Service struct {
	stats    StatsSource
	sessions SessionSource
	sinks    Sinks
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new reporting service instance. Report dates are rendered in loc.
func NewService(stats StatsSource, sessions SessionSource, sinks Sinks, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		stats:    stats,
		sessions: sessions,
		sinks:    sinks,
		location: loc,
		logger:   logger,
		now:      time.Now,
	}
}

// BuildSnapshot reads the current figures and low-stock alerts.
func (s *Service) BuildSnapshot(ctx context.Context) (models.DashboardSnapshot, error) {
	if !s.sessions.Snapshot().Authenticated() {
		return models.DashboardSnapshot{}, fmt.Errorf("build snapshot: %w", session.ErrNotAuthenticated)
	}

	stats, err := s.stats.Stats(ctx)
	if err != nil {
		return models.DashboardSnapshot{}, fmt.Errorf("build snapshot: %w", err)
	}
	alerts, err := s.stats.LowStockAlerts(ctx)
	if err != nil {
		return models.DashboardSnapshot{}, fmt.Errorf("build snapshot: %w", err)
	}

	now := s.now().UTC()
	return models.DashboardSnapshot{
		ID:        uuid.NewString(),
		TakenAt:   now,
		Stats:     stats,
		Alerts:    alerts,
		CreatedAt: now,
	}, nil
}

// Publish builds a snapshot and sends it to every configured sink. Sink
// failures do not stop the remaining sinks; they are returned joined.
func (s *Service) Publish(ctx context.Context) (models.DashboardSnapshot, error) {
	snapshot, err := s.BuildSnapshot(ctx)
	if err != nil {
		return models.DashboardSnapshot{}, err
	}

	var errs []error
	if s.sinks.Store != nil {
		if err := s.sinks.Store.SaveSnapshot(ctx, snapshot); err != nil {
			errs = append(errs, fmt.Errorf("store snapshot: %w", err))
		}
	}
	if s.sinks.Exporter != nil {
		if err := s.sinks.Exporter.AppendSnapshot(ctx, snapshot); err != nil {
			errs = append(errs, fmt.Errorf("export snapshot: %w", err))
		}
	}
	if s.sinks.Notifier != nil {
		if err := s.sinks.Notifier.Notify(ctx, FormatDigest(snapshot, s.location)); err != nil {
			errs = append(errs, fmt.Errorf("notify snapshot: %w", err))
		}
	}

	s.logger.Info("daily report published",
		zap.String("id", snapshot.ID),
		zap.Int("alerts", len(snapshot.Alerts)),
		zap.Int("failed_sinks", len(errs)))
	return snapshot, errors.Join(errs...)
}

// FormatDigest renders a snapshot as a chat message.
func FormatDigest(snapshot models.DashboardSnapshot, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reporte diario %s\n\n", snapshot.TakenAt.In(loc).Format(dateLayout))
	b.WriteString(commands.FormatSummary(snapshot.Stats))

	if len(snapshot.Alerts) == 0 {
		b.WriteString("\n\nSin alertas de inventario.")
		return b.String()
	}

	b.WriteString("\n\nAlertas de inventario:")
	for _, a := range snapshot.Alerts {
		fmt.Fprintf(&b, "\n%s %s: %g / mín. %g (%s)", a.SKU, a.ItemName, a.CurrentStock, a.MinStock, a.Status.Label())
	}
	return b.String()
}
