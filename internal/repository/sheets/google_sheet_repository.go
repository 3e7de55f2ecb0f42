package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/erp-avicola/internal/config"
	"github.com/mamadbah2/erp-avicola/internal/domain/models"
)

const (
	snapshotsRange = "Snapshots!A:G"
	alertsRange    = "Alertas!A:F"
	dateTimeLayout = "2006-01-02 15:04"
)

// Repository exports dashboard snapshots to a spreadsheet.
type Repository interface {
	AppendSnapshot(ctx context.Context, snapshot models.DashboardSnapshot) error
}

// GoogleSheetRepository implements Repository using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	location      *time.Location
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
// Timestamps are written in loc.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, loc *time.Location, logger *zap.Logger) (*GoogleSheetRepository, error) {
	return newRepository(ctx, cfg.SpreadsheetID, loc, logger,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope))
}

func newRepository(ctx context.Context, spreadsheetID string, loc *time.Location, logger *zap.Logger, opts ...option.ClientOption) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	service, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: spreadsheetID,
		location:      loc,
		logger:        logger,
	}, nil
}

// AppendSnapshot writes one summary row and one row per stock alert.
func (r *GoogleSheetRepository) AppendSnapshot(ctx context.Context, snapshot models.DashboardSnapshot) error {
	if err := r.appendRows(ctx, snapshotsRange, [][]interface{}{SnapshotRow(snapshot, r.location)}); err != nil {
		return err
	}
	if len(snapshot.Alerts) == 0 {
		return nil
	}
	return r.appendRows(ctx, alertsRange, AlertRows(snapshot, r.location))
}

func (r *GoogleSheetRepository) appendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	payload := &sheetsapi.ValueRange{Values: rows}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append rows into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("rows appended to sheet", zap.String("range", sheetRange), zap.Int("rows", len(rows)))
	return nil
}

// SnapshotRow is the Snapshots sheet row: id, time, the four figures and the alert count.
func SnapshotRow(s models.DashboardSnapshot, loc *time.Location) []interface{} {
	return []interface{}{
		s.ID,
		s.TakenAt.In(loc).Format(dateTimeLayout),
		s.Stats.ActiveFlocks,
		s.Stats.LowStockItems,
		s.Stats.AvgProduction,
		s.Stats.AvgLayingPercentage,
		len(s.Alerts),
	}
}

// AlertRows are the Alertas sheet rows of a snapshot.
func AlertRows(s models.DashboardSnapshot, loc *time.Location) [][]interface{} {
	taken := s.TakenAt.In(loc).Format(dateTimeLayout)
	rows := make([][]interface{}, len(s.Alerts))
	for i, a := range s.Alerts {
		rows[i] = []interface{}{taken, a.SKU, a.ItemName, a.CurrentStock, a.MinStock, a.Status.Label()}
	}
	return rows
}
