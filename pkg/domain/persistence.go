package domain

import "context"

// Snapshot is the full persisted state of the front desk. Gateways store it
// as opaque blobs and only guarantee that the record lists round-trip.
type Snapshot struct {
	Rooms          []Room           `json:"rooms"`
	Movements      []MovementRecord `json:"movements"`
	StockItems     []StockItem      `json:"stockItems,omitempty"`
	StockMovements []StockMovement  `json:"stockMovements,omitempty"`
	Sequences      Sequences        `json:"sequences"`
}

// Sequences holds the last id each ledger issued. Records removed by an
// administrator leave gaps, so the ids cannot be derived from the records.
type Sequences struct {
	Movements      int64 `json:"movements"`
	StockMovements int64 `json:"stockMovements"`
}

// Empty reports whether the snapshot carries no records at all.
func (s Snapshot) Empty() bool {
	return len(s.Rooms) == 0 && len(s.Movements) == 0 && len(s.StockItems) == 0 && len(s.StockMovements) == 0 &&
		s.Sequences == (Sequences{})
}

// Gateway loads and saves snapshots. Load reports ok=false when nothing has
// been persisted yet. Retry policy belongs to the gateway, never the core.
type Gateway interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Save(ctx context.Context, snapshot Snapshot) error
}

// MovementPublisher fans out committed movement records to interested
// collaborators such as housekeeping.
type MovementPublisher interface {
	Publish(ctx context.Context, record MovementRecord) error
}
