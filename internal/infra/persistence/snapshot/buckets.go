// Package snapshot splits a domain.Snapshot into named JSON buckets so that
// table and key-value gateways can store each record list separately.
package snapshot

import (
	"encoding/json"
	"fmt"

	"frontdesk/pkg/domain"
)

// Bucket names, in write order.
const (
	BucketRooms          = "rooms"
	BucketMovements      = "movements"
	BucketStockItems     = "stock_items"
	BucketStockMovements = "stock_movements"
	BucketSequences      = "sequences"
)

// Buckets lists every bucket a gateway persists.
var Buckets = []string{BucketRooms, BucketMovements, BucketStockItems, BucketStockMovements, BucketSequences}

// Bucket is one encoded record list.
type Bucket struct {
	Name    string
	Payload []byte
}

func targets(s *domain.Snapshot) map[string]any {
	return map[string]any{
		BucketRooms:          &s.Rooms,
		BucketMovements:      &s.Movements,
		BucketStockItems:     &s.StockItems,
		BucketStockMovements: &s.StockMovements,
		BucketSequences:      &s.Sequences,
	}
}

// Encode marshals every bucket of s. Nil lists encode as empty arrays.
func Encode(s domain.Snapshot) ([]Bucket, error) {
	if s.Rooms == nil {
		s.Rooms = []domain.Room{}
	}
	if s.Movements == nil {
		s.Movements = []domain.MovementRecord{}
	}
	if s.StockItems == nil {
		s.StockItems = []domain.StockItem{}
	}
	if s.StockMovements == nil {
		s.StockMovements = []domain.StockMovement{}
	}
	tgt := targets(&s)
	out := make([]Bucket, 0, len(Buckets))
	for _, name := range Buckets {
		data, err := json.Marshal(tgt[name])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		out = append(out, Bucket{Name: name, Payload: data})
	}
	return out, nil
}

// Decode rebuilds a snapshot from raw bucket payloads. Unknown buckets and
// empty payloads are ignored.
func Decode(raw map[string][]byte) (domain.Snapshot, error) {
	var s domain.Snapshot
	tgt := targets(&s)
	for name, payload := range raw {
		target, ok := tgt[name]
		if !ok || len(payload) == 0 {
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return domain.Snapshot{}, fmt.Errorf("decode %s: %w", name, err)
		}
	}
	return s, nil
}
