package memory

import (
	"context"
	"testing"

	"frontdesk/pkg/domain"
)

func TestGatewayLoadSave(t *testing.T) {
	ctx := context.Background()
	g := New()
	if _, ok, err := g.Load(ctx); err != nil || ok {
		t.Fatalf("expected empty load, got ok=%v err=%v", ok, err)
	}
	snap := domain.Snapshot{Rooms: []domain.Room{{Base: domain.Base{ID: "1"}, Name: "A", Status: domain.StatusReserved, Reservation: &domain.Reservation{Date: "2024-01-01", Time: "10:00"}}}}
	snap.Sequences.Movements = 3
	if err := g.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap.Rooms[0].Reservation.Time = "23:00"

	got, ok, err := g.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.Rooms[0].Reservation.Time != "10:00" {
		t.Fatalf("gateway shares memory with caller")
	}
	if got.Sequences.Movements != 3 {
		t.Fatalf("sequences lost, got %+v", got.Sequences)
	}
	got.Rooms[0].Name = "mutated"
	again, _, _ := g.Load(ctx)
	if again.Rooms[0].Name != "A" {
		t.Fatalf("load result shares memory with gateway")
	}
	if g.Saves() != 1 {
		t.Fatalf("expected 1 save, got %d", g.Saves())
	}
}

func TestGatewayHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := New()
	if err := g.Save(ctx, domain.Snapshot{}); err == nil {
		t.Fatalf("expected canceled save to fail")
	}
	if _, _, err := g.Load(ctx); err == nil {
		t.Fatalf("expected canceled load to fail")
	}
}
