// Package memory keeps snapshots in process memory. It backs tests and the
// ephemeral "memory" storage driver.
package memory

import (
	"context"
	"sync"

	"frontdesk/pkg/domain"
)

var _ domain.Gateway = (*Gateway)(nil)

// Gateway stores a deep copy of the last saved snapshot.
type Gateway struct {
	mu    sync.Mutex
	snap  domain.Snapshot
	saved bool
	saves int
}

// New returns an empty gateway.
func New() *Gateway { return &Gateway{} }

// Load returns the last saved snapshot, or ok=false before the first Save.
func (g *Gateway) Load(ctx context.Context) (domain.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, false, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.saved {
		return domain.Snapshot{}, false, nil
	}
	return cloneSnapshot(g.snap), true, nil
}

// Save replaces the stored snapshot.
func (g *Gateway) Save(ctx context.Context, snap domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.snap = cloneSnapshot(snap)
	g.saved = true
	g.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (g *Gateway) Saves() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saves
}

func cloneSnapshot(s domain.Snapshot) domain.Snapshot {
	out := domain.Snapshot{Sequences: s.Sequences}
	if s.Rooms != nil {
		out.Rooms = make([]domain.Room, len(s.Rooms))
		for i, r := range s.Rooms {
			out.Rooms[i] = r.Clone()
		}
	}
	if s.Movements != nil {
		out.Movements = make([]domain.MovementRecord, len(s.Movements))
		for i, m := range s.Movements {
			out.Movements[i] = m.Clone()
		}
	}
	if s.StockItems != nil {
		out.StockItems = make([]domain.StockItem, len(s.StockItems))
		for i, it := range s.StockItems {
			out.StockItems[i] = it.Clone()
		}
	}
	if s.StockMovements != nil {
		out.StockMovements = make([]domain.StockMovement, len(s.StockMovements))
		for i, m := range s.StockMovements {
			out.StockMovements[i] = m.Clone()
		}
	}
	return out
}
