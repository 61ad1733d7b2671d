// Package sqlite persists front-desk snapshots into a single SQLite table,
// one JSON payload per bucket.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"frontdesk/internal/infra/persistence/snapshot"
	"frontdesk/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ domain.Gateway = (*Gateway)(nil)

// DefaultPath is used when no path is configured.
const DefaultPath = "frontdesk.db"

// Gateway writes the whole snapshot in one database transaction.
type Gateway struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// Open creates the database file and state table if needed.
func Open(ctx context.Context, path string) (*Gateway, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Gateway{db: db, path: path}, nil
}

// Load reads every bucket. ok is false when the table is empty.
func (g *Gateway) Load(ctx context.Context) (domain.Snapshot, bool, error) {
	rows, err := g.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	raw := map[string][]byte{}
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return domain.Snapshot{}, false, fmt.Errorf("scan: %w", err)
		}
		raw[bucket] = payload
	}
	if err := rows.Err(); err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("iterate state: %w", err)
	}
	if len(raw) == 0 {
		return domain.Snapshot{}, false, nil
	}
	snap, err := snapshot.Decode(raw)
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	return snap, true, nil
}

// Save upserts every bucket inside one transaction.
func (g *Gateway) Save(ctx context.Context, snap domain.Snapshot) (retErr error) {
	buckets, err := snapshot.Encode(snap)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, b := range buckets {
		if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, b.Name, b.Payload); err != nil {
			return fmt.Errorf("upsert %s: %w", b.Name, err)
		}
	}
	return tx.Commit()
}

// Close releases the database handle.
func (g *Gateway) Close() error { return g.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (g *Gateway) DB() *sql.DB { return g.db }

// Path returns the configured database path.
func (g *Gateway) Path() string { return g.path }
