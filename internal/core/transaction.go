package core

import (
	"context"
	"sort"
	"time"

	"frontdesk/pkg/domain"
)

// Transaction stages room mutations and movement records. Nothing is visible
// outside the transaction until the rules engine approves and it commits.
type Transaction struct {
	rooms     *RoomStore
	ledger    *Ledger[domain.MovementRecord]
	now       time.Time
	staged    map[string]domain.Room
	created   map[string]bool
	deleted   map[string]bool
	order     []string
	records   []domain.MovementRecord
	changes   []domain.Change
	committed map[string]domain.Room
	appended  []domain.MovementRecord
}

func newTransaction(rooms *RoomStore, ledger *Ledger[domain.MovementRecord], now time.Time) *Transaction {
	return &Transaction{
		rooms:     rooms,
		ledger:    ledger,
		now:       now,
		staged:    make(map[string]domain.Room),
		created:   make(map[string]bool),
		deleted:   make(map[string]bool),
		committed: make(map[string]domain.Room),
	}
}

// Now returns the instant the transaction started at.
func (tx *Transaction) Now() time.Time {
	return tx.now
}

// Room returns the staged view of a room.
func (tx *Transaction) Room(id string) (domain.Room, error) {
	if tx.deleted[id] {
		return domain.Room{}, domain.ErrNotFound{Entity: domain.EntityRoom, ID: id}
	}
	if room, ok := tx.staged[id]; ok {
		return room.Clone(), nil
	}
	return tx.rooms.Get(id)
}

// AddRoom stages a new room.
func (tx *Transaction) AddRoom(room domain.Room) (domain.Room, error) {
	if room.ID == "" {
		return domain.Room{}, domain.ValidationError{Field: "id", Message: "is required"}
	}
	if _, err := tx.Room(room.ID); err == nil {
		return domain.Room{}, domain.ValidationError{Field: "id", Message: "room " + room.ID + " already exists"}
	}
	room.CreatedAt = tx.now
	room.UpdatedAt = tx.now
	tx.touch(room.ID)
	tx.created[room.ID] = true
	delete(tx.deleted, room.ID)
	tx.staged[room.ID] = room.Clone()
	tx.changes = append(tx.changes, domain.Change{Entity: domain.EntityRoom, Action: domain.ActionCreate, After: room.Clone()})
	return room.Clone(), nil
}

// UpdateRoom stages a mutation of a room and returns its before and after views.
func (tx *Transaction) UpdateRoom(id string, mutator func(*domain.Room) error) (domain.Room, domain.Room, error) {
	before, err := tx.Room(id)
	if err != nil {
		return domain.Room{}, domain.Room{}, err
	}
	after := before.Clone()
	if err := mutator(&after); err != nil {
		return domain.Room{}, domain.Room{}, err
	}
	after.ID = before.ID
	after.CreatedAt = before.CreatedAt
	after.UpdatedAt = tx.now
	tx.touch(id)
	tx.staged[id] = after.Clone()
	tx.changes = append(tx.changes, domain.Change{Entity: domain.EntityRoom, Action: domain.ActionUpdate, Before: before, After: after.Clone()})
	return before, after, nil
}

// DeleteRoom stages the removal of a room.
func (tx *Transaction) DeleteRoom(id string) (domain.Room, error) {
	before, err := tx.Room(id)
	if err != nil {
		return domain.Room{}, err
	}
	tx.touch(id)
	tx.deleted[id] = true
	delete(tx.staged, id)
	tx.changes = append(tx.changes, domain.Change{Entity: domain.EntityRoom, Action: domain.ActionDelete, Before: before})
	return before, nil
}

// AppendMovement stages a movement record. Its id is provisional until commit.
func (tx *Transaction) AppendMovement(rec domain.MovementRecord) domain.MovementRecord {
	rec = rec.WithEntryID(tx.ledger.NextID() + int64(len(tx.records)))
	tx.records = append(tx.records, rec)
	tx.changes = append(tx.changes, domain.Change{Entity: domain.EntityMovement, Action: domain.ActionAppend, After: rec.Clone()})
	return rec.Clone()
}

func (tx *Transaction) touch(id string) {
	if _, seen := tx.staged[id]; seen || tx.deleted[id] {
		return
	}
	tx.order = append(tx.order, id)
}

// commit applies staged rooms and records. Callers hold the service lock, so
// the existence checks done while staging still hold.
func (tx *Transaction) commit() error {
	for _, id := range tx.order {
		switch {
		case tx.deleted[id] && tx.created[id]:
		case tx.deleted[id]:
			if err := tx.rooms.Remove(id); err != nil {
				return err
			}
		case tx.created[id]:
			room := tx.staged[id]
			if err := tx.rooms.Add(room); err != nil {
				return err
			}
			tx.committed[id] = room.Clone()
		default:
			staged := tx.staged[id]
			room, err := tx.rooms.Update(id, func(r *domain.Room) error {
				*r = staged.Clone()
				return nil
			})
			if err != nil {
				return err
			}
			tx.committed[id] = room
		}
	}
	for _, rec := range tx.records {
		tx.appended = append(tx.appended, tx.ledger.Append(rec))
	}
	return nil
}

// transactionView exposes the staged state to rules.
type transactionView struct {
	tx *Transaction
}

func (v transactionView) FindRoom(id string) (domain.Room, bool) {
	room, err := v.tx.Room(id)
	return room, err == nil
}

func (v transactionView) ListRooms() []domain.Room {
	seen := make(map[string]bool)
	var out []domain.Room
	for _, room := range v.tx.rooms.All() {
		seen[room.ID] = true
		if staged, err := v.tx.Room(room.ID); err == nil {
			out = append(out, staged)
		}
	}
	for id, room := range v.tx.staged {
		if !seen[id] {
			out = append(out, room.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (v transactionView) StagedMovements() []domain.MovementRecord {
	out := make([]domain.MovementRecord, len(v.tx.records))
	for i, rec := range v.tx.records {
		out[i] = rec.Clone()
	}
	return out
}

// runInTransaction serialises fn with every other mutation, evaluates the rules
// engine over the staged changes and commits only when nothing blocks.
func (s *Service) runInTransaction(ctx context.Context, op string, fn func(tx *Transaction) error) (tx *Transaction, res domain.Result, err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe(ctx, op, err == nil, time.Since(start))
		if err != nil {
			s.logger.Debug("operation failed", "operation", op, "error", err)
		}
	}()
	if err = ctx.Err(); err != nil {
		return nil, res, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx = newTransaction(s.rooms, s.ledger, s.clock.Now())
	if err = fn(tx); err != nil {
		return tx, res, err
	}
	if s.engine != nil && len(tx.changes) > 0 {
		res, err = s.engine.Evaluate(ctx, transactionView{tx: tx}, tx.changes)
		if err != nil {
			return tx, res, err
		}
		if res.HasBlocking() {
			err = domain.RuleViolationError{Result: res}
			s.logger.Warn("transaction blocked", "operation", op, "error", err)
			return tx, res, err
		}
		for _, v := range res.Violations {
			s.logger.Warn("rule violation", "operation", op, "rule", v.Rule, "entity_id", v.EntityID, "message", v.Message)
		}
	}
	if err = tx.commit(); err != nil {
		s.logger.Error("commit failed", "operation", op, "error", err)
		return tx, res, err
	}
	return tx, res, nil
}
