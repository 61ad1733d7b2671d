package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"frontdesk/pkg/domain"
)

func TestGatewayPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "desk.db")
	g, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok, err := g.Load(ctx); err != nil || ok {
		t.Fatalf("fresh database should be empty: ok=%v err=%v", ok, err)
	}
	prev := domain.StatusVacant
	snap := domain.Snapshot{
		Rooms: []domain.Room{{Base: domain.Base{ID: "101"}, Name: "Garden", Status: domain.StatusCleaning}},
		Movements: []domain.MovementRecord{{
			ID: 1, RoomID: "101", RoomName: "Garden", Type: domain.MovementStatusChange,
			PreviousStatus: &prev, NewStatus: domain.StatusCleaning, Date: "2024-03-02", Time: "08:15", Actor: "Recepcionista",
		}},
	}
	if err := g.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap.Rooms[0].Status = domain.StatusVacant
	if err := g.Save(ctx, snap); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if reopened.Path() != path {
		t.Fatalf("unexpected path %s", reopened.Path())
	}
	got, ok, err := reopened.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if len(got.Rooms) != 1 || got.Rooms[0].Status != domain.StatusVacant {
		t.Fatalf("expected upserted room, got %+v", got.Rooms)
	}
	if len(got.Movements) != 1 || *got.Movements[0].PreviousStatus != domain.StatusVacant {
		t.Fatalf("movement lost: %+v", got.Movements)
	}
	var count int
	if err := reopened.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM state`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected 5 buckets, got %d", count)
	}
}

func TestGatewayRejectsCorruptBucket(t *testing.T) {
	ctx := context.Background()
	g, err := Open(ctx, filepath.Join(t.TempDir(), "desk.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = g.Close() }()
	if _, err := g.DB().ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES('rooms', '{')`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, _, err := g.Load(ctx); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestGatewaySaveHonoursCanceledContext(t *testing.T) {
	g, err := Open(context.Background(), filepath.Join(t.TempDir(), "desk.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = g.Close() }()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.Save(ctx, domain.Snapshot{}); err == nil {
		t.Fatalf("expected canceled save to fail")
	}
}
