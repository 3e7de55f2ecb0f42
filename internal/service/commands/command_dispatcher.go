package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
	"github.com/mamadbah2/erp-avicola/internal/service/session"
)

// maxListed caps the rows listed in a single reply.
const maxListed = 10

const (
	helpMessage = "Comandos disponibles:\n" +
		"/resumen - indicadores del dashboard\n" +
		"/stock - artículos con stock bajo\n" +
		"/stock <texto> - buscar por nombre o SKU\n" +
		"/parvadas - parvadas activas"
	noSessionMessage = "El sistema no tiene una sesión activa. Inicia sesión en el panel e inténtalo de nuevo."
)

// DashboardReader provides the headline figures.
type DashboardReader interface {
	Stats(ctx context.Context) (models.DashboardStats, error)
}

// InventoryReader provides inventory rows.
type InventoryReader interface {
	List(ctx context.Context, search string) ([]models.InventoryRow, error)
	LowStock(ctx context.Context) ([]models.InventoryRow, error)
}

// FlockReader provides the active flocks.
type FlockReader interface {
	Active(ctx context.Context) ([]models.FlockView, error)
}

// SessionSource exposes the process session the reads run under.
type SessionSource interface {
	Snapshot() session.Snapshot
}

// Dispatcher answers parsed operator commands.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements Dispatcher over the view services.
type Service struct {
	dashboard DashboardReader
	inventory InventoryReader
	flocks    FlockReader
	sessions  SessionSource
	logger    *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(dashboard DashboardReader, inventory InventoryReader, flocks FlockReader, sessions SessionSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		dashboard: dashboard,
		inventory: inventory,
		flocks:    flocks,
		sessions:  sessions,
		logger:    logger,
	}
}

// HandleCommand runs the query behind cmd and formats the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandHelp, models.CommandUnknown:
		return helpMessage, nil
	}

	if !s.sessions.Snapshot().Authenticated() {
		return noSessionMessage, nil
	}

	switch cmd.Type {
	case models.CommandSummary:
		stats, err := s.dashboard.Stats(ctx)
		if err != nil {
			return "", fmt.Errorf("summary command: %w", err)
		}
		return FormatSummary(stats), nil
	case models.CommandStock:
		return s.stock(ctx, strings.Join(cmd.Args, " "))
	case models.CommandFlocks:
		flocks, err := s.flocks.Active(ctx)
		if err != nil {
			return "", fmt.Errorf("flocks command: %w", err)
		}
		return formatFlocks(flocks), nil
	default:
		return helpMessage, nil
	}
}

func (s *Service) stock(ctx context.Context, term string) (string, error) {
	if term == "" {
		rows, err := s.inventory.LowStock(ctx)
		if err != nil {
			return "", fmt.Errorf("stock command: %w", err)
		}
		if len(rows) == 0 {
			return "Sin artículos con stock bajo.", nil
		}
		return formatStock("Artículos con stock bajo", rows), nil
	}

	rows, err := s.inventory.List(ctx, term)
	if err != nil {
		return "", fmt.Errorf("stock command: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Sprintf("Sin resultados para %q.", term), nil
	}
	return formatStock(fmt.Sprintf("Resultados para %q", term), rows), nil
}

// FormatSummary renders the dashboard figures as a chat message.
func FormatSummary(stats models.DashboardStats) string {
	var b strings.Builder
	b.WriteString("Resumen del dashboard\n")
	fmt.Fprintf(&b, "Parvadas activas: %d\n", stats.ActiveFlocks)
	fmt.Fprintf(&b, "Artículos con stock bajo: %d\n", stats.LowStockItems)
	fmt.Fprintf(&b, "Producción promedio (7 días): %s huevos\n", humanize.Comma(int64(stats.AvgProduction)))
	fmt.Fprintf(&b, "Porcentaje de postura: %s%%", stats.AvgLayingPercentage)
	return b.String()
}

func formatStock(title string, rows []models.InventoryRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d):", title, len(rows))
	for i, row := range rows {
		if i == maxListed {
			fmt.Fprintf(&b, "\n... y %d más", len(rows)-maxListed)
			break
		}
		fmt.Fprintf(&b, "\n%s %s: %s (%s)", row.SKU, row.ItemName, row.CurrentStockDisplay, row.StatusLabel)
	}
	return b.String()
}

func formatFlocks(flocks []models.FlockView) string {
	if len(flocks) == 0 {
		return "No hay parvadas activas."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Parvadas activas (%d):", len(flocks))
	for i, f := range flocks {
		if i == maxListed {
			fmt.Fprintf(&b, "\n... y %d más", len(flocks)-maxListed)
			break
		}
		fmt.Fprintf(&b, "\n%s %s, %s aves (%s)", f.FlockNumber, f.Breed, humanize.Comma(int64(f.CurrentQuantity)), f.TypeLabel)
	}
	return b.String()
}
