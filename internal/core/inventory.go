package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"frontdesk/pkg/domain"
)

// Inventory tracks stock items whose quantities change only through
// movements recorded in a stock ledger.
type Inventory struct {
	mu      sync.Mutex
	items   map[string]domain.StockItem
	ledger  *Ledger[domain.StockMovement]
	clock   Clock
	logger  Logger
	metrics MetricsRecorder
	newID   func() string
}

// NewStockLedger builds a stock ledger whose open state is a depleted item.
func NewStockLedger() *Ledger[domain.StockMovement] {
	return NewLedger(WithOpenState(func(m domain.StockMovement) bool {
		return m.After <= 0
	}))
}

// NewInventory constructs an empty inventory. A nil ledger discards movements.
func NewInventory(ledger *Ledger[domain.StockMovement], opts ...Option) *Inventory {
	cfg := buildSettings(opts)
	if ledger == nil {
		ledger = NewDiscardLedger[domain.StockMovement]()
	}
	return &Inventory{
		items:   make(map[string]domain.StockItem),
		ledger:  ledger,
		clock:   cfg.clock,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		newID:   cfg.newID,
	}
}

// Movements returns the stock ledger.
func (inv *Inventory) Movements() *Ledger[domain.StockMovement] {
	return inv.ledger
}

// AddItem registers a stock item with its opening quantity.
func (inv *Inventory) AddItem(ctx context.Context, item domain.StockItem) (created domain.StockItem, err error) {
	start := time.Now()
	defer func() { inv.metrics.Observe(ctx, "add_stock_item", err == nil, time.Since(start)) }()

	item.ID = strings.TrimSpace(item.ID)
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return domain.StockItem{}, domain.ValidationError{Field: "name", Message: "is required"}
	}
	if item.Quantity < 0 {
		return domain.StockItem{}, domain.ValidationError{Field: "quantity", Message: "must not be negative"}
	}
	if item.ID == "" {
		item.ID = inv.newID()
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if _, exists := inv.items[item.ID]; exists {
		return domain.StockItem{}, domain.ValidationError{Field: "id", Message: fmt.Sprintf("item %s already exists", item.ID)}
	}
	now := inv.clock.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	inv.items[item.ID] = item
	inv.logger.Info("stock item added", "item_id", item.ID, "name", item.Name)
	return item.Clone(), nil
}

// Item returns one stock item.
func (inv *Inventory) Item(id string) (domain.StockItem, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	item, ok := inv.items[id]
	if !ok {
		return domain.StockItem{}, domain.ErrNotFound{Entity: domain.EntityStockItem, ID: id}
	}
	return item.Clone(), nil
}

// Items returns every stock item ordered by name.
func (inv *Inventory) Items() []domain.StockItem {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	out := make([]domain.StockItem, 0, len(inv.items))
	for _, item := range inv.items {
		out = append(out, item.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Adjust changes an item's quantity and records the movement. In and out take
// a positive quantity; adjust takes a signed delta. The quantity never goes
// below zero.
func (inv *Inventory) Adjust(ctx context.Context, itemID string, kind domain.StockMovementKind, qty float64, reason string, opts ...ActionOption) (item domain.StockItem, mov domain.StockMovement, err error) {
	start := time.Now()
	defer func() { inv.metrics.Observe(ctx, "adjust_stock", err == nil, time.Since(start)) }()

	if !kind.Valid() {
		return domain.StockItem{}, domain.StockMovement{}, domain.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown kind %q", kind)}
	}
	var delta float64
	switch kind {
	case domain.StockIn, domain.StockOut:
		if qty <= 0 {
			return domain.StockItem{}, domain.StockMovement{}, domain.ValidationError{Field: "quantity", Message: "must be positive"}
		}
		delta = qty
		if kind == domain.StockOut {
			delta = -qty
		}
	case domain.StockAdjust:
		if qty == 0 {
			return domain.StockItem{}, domain.StockMovement{}, domain.ValidationError{Field: "quantity", Message: "must not be zero"}
		}
		delta = qty
	}
	cfg := buildAction(DefaultDeskActor, opts)

	inv.mu.Lock()
	defer inv.mu.Unlock()
	current, ok := inv.items[itemID]
	if !ok {
		return domain.StockItem{}, domain.StockMovement{}, domain.ErrNotFound{Entity: domain.EntityStockItem, ID: itemID}
	}
	after := current.Quantity + delta
	if after < 0 {
		return domain.StockItem{}, domain.StockMovement{}, domain.ValidationError{
			Field:   "quantity",
			Message: fmt.Sprintf("%s has %g %s, cannot remove %g", current.Name, current.Quantity, current.Unit, -delta),
		}
	}
	now := inv.clock.Now()
	mov = inv.ledger.Append(domain.StockMovement{
		ItemID:   current.ID,
		ItemName: current.Name,
		Kind:     kind,
		Quantity: qty,
		Before:   current.Quantity,
		After:    after,
		Date:     now.Format(domain.DateLayout),
		Time:     now.Format(domain.TimeLayout),
		Reason:   strings.TrimSpace(reason),
		Actor:    cfg.actor,
	})
	current.Quantity = after
	current.UpdatedAt = now
	inv.items[itemID] = current
	inv.logger.Info("stock adjusted", "item_id", itemID, "kind", kind, "before", mov.Before, "after", mov.After)
	return current.Clone(), mov, nil
}

// Stats summarises stock movements as of now.
func (inv *Inventory) Stats(recent int) LedgerStats[domain.StockMovement] {
	return inv.ledger.Stats(inv.clock.Now(), recent)
}

// Snapshot returns items and movements for persistence.
func (inv *Inventory) Snapshot() ([]domain.StockItem, []domain.StockMovement) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	items := make([]domain.StockItem, 0, len(inv.items))
	for _, item := range inv.items {
		items = append(items, item.Clone())
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, inv.ledger.All()
}

// Restore replaces items and movements from a persisted snapshot. seq is the
// last stock movement id issued before the snapshot was taken.
func (inv *Inventory) Restore(items []domain.StockItem, movements []domain.StockMovement, seq int64) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.items = make(map[string]domain.StockItem, len(items))
	for _, item := range items {
		inv.items[item.ID] = item.Clone()
	}
	inv.ledger.Replace(movements, seq)
}
