// Package desk is the composition root: it owns the lifecycle engine and the
// inventory, loads their state from a gateway, saves after every successful
// mutation and publishes new movement records.
package desk

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"frontdesk/internal/core"
	"frontdesk/pkg/domain"
)

// SaveError reports that a mutation was applied in memory but the snapshot
// could not be persisted. The in-memory state stays authoritative and Flush
// retries the save.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string { return "save snapshot: " + e.Err.Error() }

// Unwrap exposes the gateway error.
func (e *SaveError) Unwrap() error { return e.Err }

// IsSaveError reports whether err wraps a SaveError.
func IsSaveError(err error) bool {
	var target *SaveError
	return errors.As(err, &target)
}

// Deps lists the collaborators of a Desk. Gateway is required.
type Deps struct {
	Gateway   domain.Gateway
	Publisher domain.MovementPublisher
	Logger    core.Logger
	Options   []core.Option
}

// Desk serialises mutations so that each save captures a consistent snapshot.
type Desk struct {
	mu        sync.Mutex
	svc       *core.Service
	inv       *core.Inventory
	gateway   domain.Gateway
	publisher domain.MovementPublisher
	logger    core.Logger
	dirty     bool
	pending   []domain.MovementRecord
}

// Open builds the engine and inventory and restores the last snapshot, if any.
func Open(ctx context.Context, deps Deps) (*Desk, error) {
	if deps.Gateway == nil {
		return nil, errors.New("desk: gateway is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = core.NewZapLogger(nil)
	}
	opts := append([]core.Option{core.WithLogger(logger)}, deps.Options...)
	d := &Desk{
		svc:       core.NewInMemoryService(opts...),
		inv:       core.NewInventory(core.NewStockLedger(), opts...),
		gateway:   deps.Gateway,
		publisher: deps.Publisher,
		logger:    logger,
	}
	snap, ok, err := deps.Gateway.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if ok {
		d.svc.Restore(snap)
		d.inv.Restore(snap.StockItems, snap.StockMovements, snap.Sequences.StockMovements)
		logger.Info("snapshot restored", "rooms", len(snap.Rooms), "movements", len(snap.Movements))
	}
	return d, nil
}

// Service exposes the engine for queries.
func (d *Desk) Service() *core.Service { return d.svc }

// Inventory exposes the inventory for queries.
func (d *Desk) Inventory() *core.Inventory { return d.inv }

// Snapshot returns the full persisted shape of the desk.
func (d *Desk) Snapshot() domain.Snapshot {
	snap := d.svc.Snapshot()
	snap.StockItems, snap.StockMovements = d.inv.Snapshot()
	snap.Sequences.StockMovements = d.inv.Movements().Seq()
	return snap
}

// Dirty reports whether the last save failed.
func (d *Desk) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

// Flush saves the current snapshot if a previous save failed.
func (d *Desk) Flush(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dirty {
		return nil
	}
	return d.persistLocked(ctx)
}

// errUnchanged tells mutate that fn succeeded without changing state.
var errUnchanged = errors.New("desk: state unchanged")

// mutate runs fn under the desk lock and persists when fn changed state.
func (d *Desk) mutate(ctx context.Context, fn func() ([]domain.MovementRecord, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	records, err := fn()
	if errors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}
	d.pending = append(d.pending, records...)
	d.dirty = true
	return d.persistLocked(ctx)
}

func (d *Desk) persistLocked(ctx context.Context) error {
	if err := d.gateway.Save(ctx, d.Snapshot()); err != nil {
		d.logger.Error("snapshot save failed", "error", err)
		return &SaveError{Err: err}
	}
	d.dirty = false
	pending := d.pending
	d.pending = nil
	if d.publisher == nil {
		return nil
	}
	for _, rec := range pending {
		if err := d.publisher.Publish(ctx, rec); err != nil {
			d.logger.Warn("movement publish failed", "movement_id", rec.ID, "error", err)
		}
	}
	return nil
}

func recordsOf(out core.Outcome) []domain.MovementRecord {
	if out.Movement == nil {
		return nil
	}
	return []domain.MovementRecord{*out.Movement}
}

func (d *Desk) lifecycle(ctx context.Context, op func() (core.Outcome, error)) (core.Outcome, error) {
	var out core.Outcome
	err := d.mutate(ctx, func() ([]domain.MovementRecord, error) {
		var err error
		out, err = op()
		if err == nil && !out.Applied() {
			return nil, errUnchanged
		}
		return recordsOf(out), err
	})
	return out, err
}

// AddRoom registers a room.
func (d *Desk) AddRoom(ctx context.Context, room domain.Room) (domain.Room, error) {
	var created domain.Room
	err := d.mutate(ctx, func() ([]domain.MovementRecord, error) {
		var err error
		created, _, err = d.svc.AddRoom(ctx, room)
		return nil, err
	})
	return created, err
}

// UpdateRoomDetails edits name or price.
func (d *Desk) UpdateRoomDetails(ctx context.Context, id string, details core.RoomDetails) (domain.Room, error) {
	var updated domain.Room
	err := d.mutate(ctx, func() ([]domain.MovementRecord, error) {
		var err error
		updated, _, err = d.svc.UpdateRoomDetails(ctx, id, details)
		return nil, err
	})
	return updated, err
}

// DeleteRoom removes a room; its movement records remain.
func (d *Desk) DeleteRoom(ctx context.Context, id string) error {
	return d.mutate(ctx, func() ([]domain.MovementRecord, error) {
		_, err := d.svc.DeleteRoom(ctx, id)
		return nil, err
	})
}

// Reserve places a reservation.
func (d *Desk) Reserve(ctx context.Context, roomID, date, clock string, opts ...core.ActionOption) (core.Outcome, error) {
	return d.lifecycle(ctx, func() (core.Outcome, error) { return d.svc.Reserve(ctx, roomID, date, clock, opts...) })
}

// CheckIn registers a guest.
func (d *Desk) CheckIn(ctx context.Context, roomID, guestName, guestDocument, date, clock string, opts ...core.ActionOption) (core.Outcome, error) {
	return d.lifecycle(ctx, func() (core.Outcome, error) {
		return d.svc.CheckIn(ctx, roomID, guestName, guestDocument, date, clock, opts...)
	})
}

// CheckOut releases a room.
func (d *Desk) CheckOut(ctx context.Context, roomID, date, clock string, requiresCleaning bool, opts ...core.ActionOption) (core.Outcome, error) {
	return d.lifecycle(ctx, func() (core.Outcome, error) {
		return d.svc.CheckOut(ctx, roomID, date, clock, requiresCleaning, opts...)
	})
}

// CancelReservation clears a reservation.
func (d *Desk) CancelReservation(ctx context.Context, roomID string, opts ...core.ActionOption) (core.Outcome, error) {
	return d.lifecycle(ctx, func() (core.Outcome, error) { return d.svc.CancelReservation(ctx, roomID, opts...) })
}

// ChangeStatus applies a manual status change.
func (d *Desk) ChangeStatus(ctx context.Context, roomID string, status domain.RoomStatus, opts ...core.ActionOption) (core.Outcome, error) {
	return d.lifecycle(ctx, func() (core.Outcome, error) { return d.svc.ChangeStatus(ctx, roomID, status, opts...) })
}

// ImportRooms replaces the room set.
func (d *Desk) ImportRooms(ctx context.Context, rooms []domain.Room) (core.ImportReport, error) {
	var report core.ImportReport
	err := d.mutate(ctx, func() ([]domain.MovementRecord, error) {
		var err error
		report, err = d.svc.ImportRooms(ctx, rooms)
		return nil, err
	})
	return report, err
}

// ImportMovements merges movement records by id. Imported records are not
// republished.
func (d *Desk) ImportMovements(ctx context.Context, records []domain.MovementRecord) (core.ImportReport, error) {
	var report core.ImportReport
	err := d.mutate(ctx, func() ([]domain.MovementRecord, error) {
		var err error
		report, err = d.svc.ImportMovements(ctx, records)
		return nil, err
	})
	return report, err
}

// AdminDeleteMovement removes a movement record.
func (d *Desk) AdminDeleteMovement(ctx context.Context, id int64, actor string) error {
	return d.mutate(ctx, func() ([]domain.MovementRecord, error) {
		return nil, d.svc.AdminDeleteMovement(ctx, id, actor)
	})
}

// AddStockItem registers an inventory item.
func (d *Desk) AddStockItem(ctx context.Context, item domain.StockItem) (domain.StockItem, error) {
	var created domain.StockItem
	err := d.mutate(ctx, func() ([]domain.MovementRecord, error) {
		var err error
		created, err = d.inv.AddItem(ctx, item)
		return nil, err
	})
	return created, err
}

// AdjustStock records a stock movement.
func (d *Desk) AdjustStock(ctx context.Context, itemID string, kind domain.StockMovementKind, qty float64, reason string, opts ...core.ActionOption) (domain.StockItem, domain.StockMovement, error) {
	var (
		item domain.StockItem
		mov  domain.StockMovement
	)
	err := d.mutate(ctx, func() ([]domain.MovementRecord, error) {
		var err error
		item, mov, err = d.inv.Adjust(ctx, itemID, kind, qty, reason, opts...)
		return nil, err
	})
	return item, mov, err
}
