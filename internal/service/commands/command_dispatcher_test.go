package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mamadbah2/erp-avicola/internal/domain/models"
	"github.com/mamadbah2/erp-avicola/internal/service/session"
	"github.com/mamadbah2/erp-avicola/pkg/clients/supabase"
)

type fakeDashboard struct {
	stats models.DashboardStats
	err   error
}

func (f fakeDashboard) Stats(ctx context.Context) (models.DashboardStats, error) {
	return f.stats, f.err
}

type fakeInventory struct {
	rows   []models.InventoryRow
	search string
}

func (f *fakeInventory) List(ctx context.Context, search string) ([]models.InventoryRow, error) {
	f.search = search
	return f.rows, nil
}

func (f *fakeInventory) LowStock(ctx context.Context) ([]models.InventoryRow, error) {
	return f.rows, nil
}

type fakeFlocks []models.FlockView

func (f fakeFlocks) Active(ctx context.Context) ([]models.FlockView, error) { return f, nil }

type fakeSession session.Snapshot

func (f fakeSession) Snapshot() session.Snapshot { return session.Snapshot(f) }

var signedIn = fakeSession{Status: session.StatusAuthenticated, User: &supabase.User{ID: "u1"}}

func TestSummary(t *testing.T) {
	svc := NewService(fakeDashboard{stats: models.DashboardStats{
		ActiveFlocks: 4, LowStockItems: 2, AvgProduction: 12500, AvgLayingPercentage: "91.3",
	}}, &fakeInventory{}, fakeFlocks{}, signedIn, nil)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/resumen"), "521")
	if err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}
	for _, want := range []string{"Parvadas activas: 4", "stock bajo: 2", "12,500 huevos", "91.3%"} {
		if !strings.Contains(reply, want) {
			t.Errorf("expected %q in reply %q", want, reply)
		}
	}
}

func TestStockSearch(t *testing.T) {
	inventory := &fakeInventory{rows: []models.InventoryRow{{
		InventoryItem:       models.InventoryItem{SKU: "VAC-010", ItemName: "Vacuna"},
		CurrentStockDisplay: "3 dosis",
		StatusLabel:         "Stock bajo",
	}}}
	svc := NewService(fakeDashboard{}, inventory, fakeFlocks{}, signedIn, nil)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/stock vacuna newcastle"), "521")
	if err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}
	if inventory.search != "vacuna newcastle" {
		t.Errorf("expected joined search term, got %q", inventory.search)
	}
	if !strings.Contains(reply, "VAC-010 Vacuna: 3 dosis (Stock bajo)") {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestStockWithoutLowItems(t *testing.T) {
	svc := NewService(fakeDashboard{}, &fakeInventory{}, fakeFlocks{}, signedIn, nil)

	reply, _ := svc.HandleCommand(context.Background(), models.ParseCommand("stock"), "521")
	if reply != "Sin artículos con stock bajo." {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestFlocksTruncates(t *testing.T) {
	var flocks fakeFlocks
	for i := 0; i < 12; i++ {
		flocks = append(flocks, models.FlockView{Flock: models.Flock{FlockNumber: "PAR", Breed: "Ross 308", CurrentQuantity: 1500}, TypeLabel: "Engorda"})
	}
	svc := NewService(fakeDashboard{}, &fakeInventory{}, flocks, signedIn, nil)

	reply, _ := svc.HandleCommand(context.Background(), models.ParseCommand("/parvadas"), "521")
	if !strings.HasPrefix(reply, "Parvadas activas (12):") {
		t.Errorf("unexpected header in %q", reply)
	}
	if !strings.Contains(reply, "1,500 aves") || !strings.HasSuffix(reply, "... y 2 más") {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestRequiresSession(t *testing.T) {
	svc := NewService(fakeDashboard{}, &fakeInventory{}, fakeFlocks{}, fakeSession{Status: session.StatusAnonymous}, nil)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/resumen"), "521")
	if err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}
	if reply != noSessionMessage {
		t.Errorf("expected no-session reply, got %q", reply)
	}

	help, _ := svc.HandleCommand(context.Background(), models.ParseCommand("hola"), "521")
	if help != helpMessage {
		t.Errorf("expected help without a session, got %q", help)
	}
}

func TestSummaryError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(fakeDashboard{err: boom}, &fakeInventory{}, fakeFlocks{}, signedIn, nil)

	if _, err := svc.HandleCommand(context.Background(), models.ParseCommand("/resumen"), "521"); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}
