package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"frontdesk/pkg/domain"
)

// Default actors recorded on movements when the caller does not name one.
const (
	DefaultDeskActor   = "Recepcionista"
	DefaultSystemActor = "System"
)

type settings struct {
	clock   Clock
	logger  Logger
	metrics MetricsRecorder
	engine  *domain.RulesEngine
	window  time.Duration
	newID   func() string

	engineSet bool
}

// Option configures a Service or an Inventory.
type Option func(*settings)

// WithClock sets the time source used for stamps and the proximity guard.
func WithClock(clock Clock) Option {
	return func(s *settings) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder MetricsRecorder) Option {
	return func(s *settings) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithRulesEngine replaces the default rules engine. Nil disables rule evaluation.
func WithRulesEngine(engine *domain.RulesEngine) Option {
	return func(s *settings) {
		s.engine = engine
		s.engineSet = true
	}
}

// WithProximityWindow sets how close a reservation must be to block manual changes.
func WithProximityWindow(window time.Duration) Option {
	return func(s *settings) {
		if window > 0 {
			s.window = window
		}
	}
}

// WithIDGenerator sets the generator used for rooms and items added without an id.
func WithIDGenerator(fn func() string) Option {
	return func(s *settings) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func buildSettings(opts []Option) settings {
	cfg := settings{
		clock:   SystemClock,
		logger:  noopLogger{},
		metrics: noopMetrics{},
		window:  DefaultProximityWindow,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.engineSet {
		cfg.engine = NewDefaultRulesEngine(cfg.clock)
	}
	return cfg
}

// Service is the room lifecycle engine. It owns the only code paths that
// change room status, and each of them appends exactly one movement record.
type Service struct {
	mu      sync.Mutex
	rooms   *RoomStore
	ledger  *Ledger[domain.MovementRecord]
	clock   Clock
	logger  Logger
	metrics MetricsRecorder
	engine  *domain.RulesEngine
	window  time.Duration
	newID   func() string
}

// NewService wires the engine to its stores. A nil store is created empty and
// a nil ledger becomes a discard ledger.
func NewService(rooms *RoomStore, ledger *Ledger[domain.MovementRecord], opts ...Option) *Service {
	cfg := buildSettings(opts)
	if rooms == nil {
		rooms = NewRoomStore(cfg.clock)
	}
	if ledger == nil {
		ledger = NewDiscardLedger[domain.MovementRecord]()
	}
	return &Service{
		rooms:   rooms,
		ledger:  ledger,
		clock:   cfg.clock,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		engine:  cfg.engine,
		window:  cfg.window,
		newID:   cfg.newID,
	}
}

// NewMovementLedger builds a room movement ledger whose open state is an
// occupied room.
func NewMovementLedger() *Ledger[domain.MovementRecord] {
	return NewLedger(WithOpenState(func(rec domain.MovementRecord) bool {
		return rec.NewStatus == domain.StatusOccupied
	}))
}

// NewInMemoryService creates a service with a fresh store and movement ledger.
func NewInMemoryService(opts ...Option) *Service {
	cfg := buildSettings(opts)
	return NewService(NewRoomStore(cfg.clock), NewMovementLedger(), opts...)
}

// Ledger returns the movement ledger.
func (s *Service) Ledger() *Ledger[domain.MovementRecord] {
	return s.ledger
}

// Clock returns the service time source.
func (s *Service) Clock() Clock {
	return s.clock
}

// ProximityWindow returns the configured guard window.
func (s *Service) ProximityWindow() time.Duration {
	return s.window
}

// RoomDetails carries the metadata editable without a lifecycle movement.
// Nil fields are left untouched; ClearPrice removes the price.
type RoomDetails struct {
	Name          *string
	PricePerNight *float64
	ClearPrice    bool
}

// AddRoom registers a room. Status defaults to Vacant and an empty id is generated.
func (s *Service) AddRoom(ctx context.Context, room domain.Room) (domain.Room, domain.Result, error) {
	room.ID = strings.TrimSpace(room.ID)
	room.Name = strings.TrimSpace(room.Name)
	if room.ID == "" {
		room.ID = s.newID()
	}
	if room.Status == "" {
		room.Status = domain.StatusVacant
	}
	if err := validateRoomFields(room); err != nil {
		return domain.Room{}, domain.Result{}, err
	}
	var created domain.Room
	tx, res, err := s.runInTransaction(ctx, "add_room", func(tx *Transaction) error {
		var err error
		created, err = tx.AddRoom(room)
		return err
	})
	if err != nil {
		return domain.Room{}, res, err
	}
	if committed, ok := tx.committed[created.ID]; ok {
		created = committed
	}
	s.logger.Info("room added", "room_id", created.ID, "name", created.Name)
	return created, res, nil
}

// UpdateRoomDetails edits name and price. No movement is recorded.
func (s *Service) UpdateRoomDetails(ctx context.Context, id string, details RoomDetails) (domain.Room, domain.Result, error) {
	if details.Name != nil && strings.TrimSpace(*details.Name) == "" {
		return domain.Room{}, domain.Result{}, domain.ValidationError{Field: "name", Message: "is required"}
	}
	if err := validatePrice(details.PricePerNight); err != nil {
		return domain.Room{}, domain.Result{}, err
	}
	tx, res, err := s.runInTransaction(ctx, "update_room", func(tx *Transaction) error {
		_, _, err := tx.UpdateRoom(id, func(r *domain.Room) error {
			if details.Name != nil {
				r.Name = strings.TrimSpace(*details.Name)
			}
			switch {
			case details.ClearPrice:
				r.PricePerNight = nil
			case details.PricePerNight != nil:
				price := *details.PricePerNight
				r.PricePerNight = &price
			}
			return nil
		})
		return err
	})
	if err != nil {
		return domain.Room{}, res, err
	}
	return tx.committed[id], res, nil
}

// DeleteRoom removes a room. Its movement history is kept.
func (s *Service) DeleteRoom(ctx context.Context, id string) (domain.Result, error) {
	_, res, err := s.runInTransaction(ctx, "delete_room", func(tx *Transaction) error {
		_, err := tx.DeleteRoom(id)
		return err
	})
	if err == nil {
		s.logger.Info("room deleted", "room_id", id)
	}
	return res, err
}

// Room returns one room.
func (s *Service) Room(id string) (domain.Room, error) {
	return s.rooms.Get(id)
}

// Rooms returns every room ordered by id.
func (s *Service) Rooms() []domain.Room {
	return s.rooms.All()
}

// RoomsByStatus returns the rooms currently in status.
func (s *Service) RoomsByStatus(status domain.RoomStatus) []domain.Room {
	var out []domain.Room
	for _, room := range s.rooms.All() {
		if room.Status == status {
			out = append(out, room)
		}
	}
	return out
}

// OccupancySummary counts rooms per status. Every status is present.
func (s *Service) OccupancySummary() map[domain.RoomStatus]int {
	summary := make(map[domain.RoomStatus]int, len(domain.RoomStatuses))
	for _, status := range domain.RoomStatuses {
		summary[status] = 0
	}
	for _, room := range s.rooms.All() {
		summary[room.Status]++
	}
	return summary
}

// ReservationImminent reports whether room holds a reservation inside the
// proximity window.
func (s *Service) ReservationImminent(room domain.Room) bool {
	if room.Status != domain.StatusReserved || room.Reservation == nil {
		return false
	}
	near, err := IsNear(room.Reservation.Date, room.Reservation.Time, s.clock.Now(), s.window)
	return err == nil && near
}

// Movements returns every movement record in append order.
func (s *Service) Movements() []domain.MovementRecord {
	return s.ledger.All()
}

// MovementsByRoom returns a room's history, most recent first.
func (s *Service) MovementsByRoom(roomID string) []domain.MovementRecord {
	return s.ledger.ByEntity(roomID)
}

// MovementsByType returns the records of one movement type.
func (s *Service) MovementsByType(t domain.MovementType) []domain.MovementRecord {
	return s.ledger.ByType(string(t))
}

// MovementsOn returns the records stamped on date (YYYY-MM-DD).
func (s *Service) MovementsOn(date string) []domain.MovementRecord {
	return s.ledger.ByDate(date)
}

// SearchMovements matches guest, room, actor and observation text.
func (s *Service) SearchMovements(term string) []domain.MovementRecord {
	return s.ledger.Search(term)
}

// MovementStats summarises the ledger as of now. OpenEntities counts only
// occupied rooms that still exist.
func (s *Service) MovementStats(recent int) LedgerStats[domain.MovementRecord] {
	stats := s.ledger.Stats(s.clock.Now(), recent)
	stats.OpenEntities = 0
	for _, ref := range s.ledger.OpenRefs() {
		if _, err := s.rooms.Get(ref); err == nil {
			stats.OpenEntities++
		}
	}
	return stats
}

// AdminDeleteMovement removes one record from the ledger. It is an operator
// escape hatch and is always logged.
func (s *Service) AdminDeleteMovement(_ context.Context, id int64, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ledger.AdminRemove(id) {
		return domain.ErrNotFound{Entity: domain.EntityMovement, ID: fmt.Sprint(id)}
	}
	s.logger.Warn("movement removed by administrator", "movement_id", id, "actor", actor)
	return nil
}

// Snapshot returns the rooms and movements for persistence.
func (s *Service) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Snapshot{
		Rooms:     s.rooms.All(),
		Movements: s.ledger.All(),
		Sequences: domain.Sequences{Movements: s.ledger.Seq()},
	}
}

// Restore replaces the rooms and the movement ledger with a persisted
// snapshot. Records are trusted as persisted; use ImportRooms for untrusted
// input.
func (s *Service) Restore(snapshot domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms.Replace(snapshot.Rooms)
	if skipped := s.ledger.Replace(snapshot.Movements, snapshot.Sequences.Movements); len(skipped) > 0 {
		s.logger.Warn("duplicate movement ids skipped on restore", "ids", skipped)
	}
}

func validateRoomFields(room domain.Room) error {
	if room.ID == "" {
		return domain.ValidationError{Field: "id", Message: "is required"}
	}
	if room.Name == "" {
		return domain.ValidationError{Field: "name", Message: "is required"}
	}
	if !room.Status.Valid() {
		return domain.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", room.Status)}
	}
	if err := validatePrice(room.PricePerNight); err != nil {
		return err
	}
	if msg := room.ConsistencyError(); msg != "" {
		return domain.ValidationError{Field: "status", Message: msg}
	}
	return nil
}

func validatePrice(price *float64) error {
	if price != nil && *price < 0 {
		return domain.ValidationError{Field: "pricePerNight", Message: "must not be negative"}
	}
	return nil
}
