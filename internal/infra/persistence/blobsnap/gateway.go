// Package blobsnap stores the front-desk snapshot as a single JSON object in
// a blob store (filesystem, S3 or memory).
package blobsnap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"frontdesk/internal/infra/blob/core"
	"frontdesk/pkg/domain"
)

var _ domain.Gateway = (*Gateway)(nil)

// DefaultKey is the object key used when none is configured.
const DefaultKey = "snapshots/frontdesk.json"

// Gateway reads and overwrites one key.
type Gateway struct {
	store core.Store
	key   string
}

// New wraps store. An empty key selects DefaultKey.
func New(store core.Store, key string) *Gateway {
	if key == "" {
		key = DefaultKey
	}
	return &Gateway{store: store, key: key}
}

// Key returns the object key.
func (g *Gateway) Key() string { return g.key }

// Load fetches and decodes the snapshot object. A missing key reports ok=false.
func (g *Gateway) Load(ctx context.Context) (domain.Snapshot, bool, error) {
	_, rc, err := g.store.Get(ctx, g.key)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return domain.Snapshot{}, false, nil
		}
		return domain.Snapshot{}, false, fmt.Errorf("get snapshot: %w", err)
	}
	defer func() { _ = rc.Close() }()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("read snapshot: %w", err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("decode snapshot %s: %w", g.key, err)
	}
	return snap, true, nil
}

// Save overwrites the snapshot object.
func (g *Gateway) Save(ctx context.Context, snap domain.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = g.store.Put(ctx, g.key, bytes.NewReader(raw), core.PutOptions{
		ContentType: "application/json",
		Metadata: map[string]string{
			"rooms":     strconv.Itoa(len(snap.Rooms)),
			"movements": strconv.Itoa(len(snap.Movements)),
		},
		Overwrite: true,
	})
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}
