package blobsnap

import (
	"context"
	"strings"
	"testing"

	"frontdesk/internal/infra/blob/core"
	"frontdesk/internal/infra/blob/fs"
	"frontdesk/internal/infra/blob/memory"
	"frontdesk/internal/infra/blob/s3"
	"frontdesk/pkg/domain"
)

func TestGatewayOverBlobStores(t *testing.T) {
	fsStore, err := fs.New(t.TempDir())
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	stores := map[string]core.Store{
		"memory": memory.New(),
		"fs":     fsStore,
		"s3":     s3.NewMock("desk"),
	}
	for name, store := range stores {
		store := store
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			g := New(store, "")
			if g.Key() != DefaultKey {
				t.Fatalf("expected default key, got %s", g.Key())
			}
			if _, ok, err := g.Load(ctx); err != nil || ok {
				t.Fatalf("expected empty load: ok=%v err=%v", ok, err)
			}
			snap := domain.Snapshot{
				Rooms:     []domain.Room{{Base: domain.Base{ID: "9"}, Name: "Attic", Status: domain.StatusVacant}},
				Movements: []domain.MovementRecord{{ID: 1, RoomID: "9", Type: domain.MovementStatusChange, NewStatus: domain.StatusVacant, Date: "2024-01-01", Time: "09:00"}},
			}
			for i := 0; i < 2; i++ {
				if err := g.Save(ctx, snap); err != nil {
					t.Fatalf("save %d: %v", i, err)
				}
			}
			got, ok, err := g.Load(ctx)
			if err != nil || !ok {
				t.Fatalf("load: ok=%v err=%v", ok, err)
			}
			if len(got.Rooms) != 1 || got.Rooms[0].Name != "Attic" || len(got.Movements) != 1 {
				t.Fatalf("unexpected snapshot %+v", got)
			}
			info, err := store.Head(ctx, DefaultKey)
			if err != nil {
				t.Fatalf("head: %v", err)
			}
			if info.ContentType != "application/json" {
				t.Fatalf("unexpected content type %q", info.ContentType)
			}
		})
	}
}

func TestGatewayRejectsCorruptObject(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	if _, err := store.Put(ctx, "k.json", strings.NewReader("not json"), core.PutOptions{}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, _, err := New(store, "k.json").Load(ctx); err == nil {
		t.Fatalf("expected decode error")
	}
}
