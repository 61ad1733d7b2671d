package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"frontdesk/pkg/domain"
)

// Outcome is the result of a lifecycle operation. Movement is nil when the
// operation was a no-op.
type Outcome struct {
	Room     domain.Room            `json:"room"`
	Movement *domain.MovementRecord `json:"movement,omitempty"`
	Result   domain.Result          `json:"result"`
}

// Applied reports whether the operation changed state.
func (o Outcome) Applied() bool {
	return o.Movement != nil
}

type actionConfig struct {
	actor       string
	override    bool
	guest       *domain.Guest
	reservation *domain.Reservation
}

// ActionOption customises a single lifecycle call.
type ActionOption func(*actionConfig)

// WithActor names who performed the action.
func WithActor(actor string) ActionOption {
	return func(c *actionConfig) {
		if a := strings.TrimSpace(actor); a != "" {
			c.actor = a
		}
	}
}

// WithOverride bypasses the imminent-reservation guard.
func WithOverride() ActionOption {
	return func(c *actionConfig) {
		c.override = true
	}
}

// WithGuest supplies the guest for a manual change to Occupied.
func WithGuest(guest domain.Guest) ActionOption {
	return func(c *actionConfig) {
		g := guest
		c.guest = &g
	}
}

// WithReservation supplies the reservation for a manual change to Reserved.
func WithReservation(reservation domain.Reservation) ActionOption {
	return func(c *actionConfig) {
		r := reservation
		c.reservation = &r
	}
}

func buildAction(defaultActor string, opts []ActionOption) actionConfig {
	cfg := actionConfig{actor: defaultActor}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// movementPlan describes one lifecycle operation. check may refuse the
// operation or report it as a no-op; apply mutates the staged room.
type movementPlan struct {
	op       string
	kind     domain.MovementType
	actor    string
	check    func(room domain.Room, now time.Time) (skip bool, err error)
	apply    func(room *domain.Room, now time.Time) error
	describe func(before, after domain.Room) string
	guest    func(before, after domain.Room) *domain.Guest
}

func (s *Service) move(ctx context.Context, roomID string, plan movementPlan) (Outcome, error) {
	var (
		out     Outcome
		skipped bool
	)
	tx, res, err := s.runInTransaction(ctx, plan.op, func(tx *Transaction) error {
		current, err := tx.Room(roomID)
		if err != nil {
			return err
		}
		if plan.check != nil {
			skip, err := plan.check(current, tx.Now())
			if err != nil {
				return err
			}
			if skip {
				skipped = true
				out.Room = current
				return nil
			}
		}
		before, after, err := tx.UpdateRoom(roomID, func(r *domain.Room) error {
			return plan.apply(r, tx.Now())
		})
		if err != nil {
			return err
		}
		previous := before.Status
		rec := domain.MovementRecord{
			RoomID:         before.ID,
			RoomName:       after.Name,
			Type:           plan.kind,
			PreviousStatus: &previous,
			NewStatus:      after.Status,
			Date:           tx.Now().Format(domain.DateLayout),
			Time:           tx.Now().Format(domain.TimeLayout),
			Observations:   plan.describe(before, after),
			Actor:          plan.actor,
		}
		if plan.guest != nil {
			if g := plan.guest(before, after); g != nil {
				snapshot := *g
				rec.Guest = &snapshot
			}
		}
		tx.AppendMovement(rec)
		return nil
	})
	out.Result = res
	if err != nil {
		return Outcome{Result: res}, err
	}
	if skipped {
		s.logger.Debug("operation skipped", "operation", plan.op, "room_id", roomID)
		return out, nil
	}
	out.Room = tx.committed[roomID]
	if len(tx.appended) == 1 {
		rec := tx.appended[0]
		out.Movement = &rec
	}
	s.logger.Info("room movement recorded", "operation", plan.op, "room_id", roomID, "status", out.Room.Status)
	return out, nil
}

// Reserve holds a room for a future date and time.
func (s *Service) Reserve(ctx context.Context, roomID, date, clock string, opts ...ActionOption) (Outcome, error) {
	if err := validateDate("date", date); err != nil {
		return Outcome{}, err
	}
	if err := validateClock("time", clock); err != nil {
		return Outcome{}, err
	}
	reservation := domain.Reservation{Date: strings.TrimSpace(date), Time: strings.TrimSpace(clock)}
	cfg := buildAction(DefaultDeskActor, opts)
	return s.move(ctx, roomID, movementPlan{
		op:    "reserve",
		kind:  domain.MovementReservation,
		actor: cfg.actor,
		apply: func(r *domain.Room, _ time.Time) error {
			res := reservation
			r.Status = domain.StatusReserved
			r.Reservation = &res
			r.Guest = nil
			r.CheckIn = nil
			r.CheckOut = nil
			return nil
		},
		describe: func(_, _ domain.Room) string { return reservationObservation(reservation) },
	})
}

// CheckIn seats a guest in the room.
func (s *Service) CheckIn(ctx context.Context, roomID, guestName, guestDocument, date, clock string, opts ...ActionOption) (Outcome, error) {
	guest := domain.Guest{Name: strings.TrimSpace(guestName), Document: strings.TrimSpace(guestDocument)}
	if guest.Name == "" {
		return Outcome{}, domain.ValidationError{Field: "guestName", Message: "is required"}
	}
	if err := validateDate("date", date); err != nil {
		return Outcome{}, err
	}
	if err := validateClock("time", clock); err != nil {
		return Outcome{}, err
	}
	stamp := domain.Stamp{Date: strings.TrimSpace(date), Time: strings.TrimSpace(clock)}
	cfg := buildAction(DefaultDeskActor, opts)
	return s.move(ctx, roomID, movementPlan{
		op:    "check_in",
		kind:  domain.MovementCheckIn,
		actor: cfg.actor,
		apply: func(r *domain.Room, _ time.Time) error {
			g, st := guest, stamp
			r.Status = domain.StatusOccupied
			r.Guest = &g
			r.CheckIn = &st
			r.CheckOut = nil
			r.Reservation = nil
			return nil
		},
		describe: func(_, _ domain.Room) string { return checkInObservation(guest) },
		guest:    func(_, after domain.Room) *domain.Guest { return after.Guest },
	})
}

// CheckOut releases the room, sending it to cleaning when requiresCleaning.
func (s *Service) CheckOut(ctx context.Context, roomID, date, clock string, requiresCleaning bool, opts ...ActionOption) (Outcome, error) {
	if err := validateDate("date", date); err != nil {
		return Outcome{}, err
	}
	if err := validateClock("time", clock); err != nil {
		return Outcome{}, err
	}
	stamp := domain.Stamp{Date: strings.TrimSpace(date), Time: strings.TrimSpace(clock)}
	target := domain.StatusVacant
	if requiresCleaning {
		target = domain.StatusCleaning
	}
	cfg := buildAction(DefaultDeskActor, opts)
	return s.move(ctx, roomID, movementPlan{
		op:    "check_out",
		kind:  domain.MovementCheckOut,
		actor: cfg.actor,
		apply: func(r *domain.Room, _ time.Time) error {
			st := stamp
			r.Status = target
			r.CheckOut = &st
			r.Guest = nil
			r.Reservation = nil
			return nil
		},
		describe: func(before, _ domain.Room) string { return checkOutObservation(before.Guest, requiresCleaning) },
		guest:    func(before, _ domain.Room) *domain.Guest { return before.Guest },
	})
}

// CancelReservation releases a reserved room. On any other status it is a
// no-op: no state change and no record.
func (s *Service) CancelReservation(ctx context.Context, roomID string, opts ...ActionOption) (Outcome, error) {
	cfg := buildAction(DefaultDeskActor, opts)
	var cancelled *domain.Reservation
	return s.move(ctx, roomID, movementPlan{
		op:    "cancel_reservation",
		kind:  domain.MovementCancellation,
		actor: cfg.actor,
		check: func(room domain.Room, now time.Time) (bool, error) {
			if room.Status != domain.StatusReserved {
				return true, nil
			}
			if _, err := s.guardImminent(room, now, domain.StatusVacant, cfg.override); err != nil {
				return false, err
			}
			cancelled = room.Reservation
			return false, nil
		},
		apply: func(r *domain.Room, _ time.Time) error {
			r.Status = domain.StatusVacant
			r.Reservation = nil
			return nil
		},
		describe: func(_, _ domain.Room) string { return cancellationObservation(cancelled) },
	})
}

// ChangeStatus sets the status directly. Targets that carry data need it:
// Occupied needs a guest and Reserved a reservation, either already on the
// room or passed with WithGuest / WithReservation.
func (s *Service) ChangeStatus(ctx context.Context, roomID string, status domain.RoomStatus, opts ...ActionOption) (Outcome, error) {
	if !status.Valid() {
		return Outcome{}, domain.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}
	cfg := buildAction(DefaultSystemActor, opts)
	if cfg.reservation != nil {
		if err := validateDate("reservation.date", cfg.reservation.Date); err != nil {
			return Outcome{}, err
		}
		if err := validateClock("reservation.time", cfg.reservation.Time); err != nil {
			return Outcome{}, err
		}
	}
	if cfg.guest != nil && strings.TrimSpace(cfg.guest.Name) == "" {
		return Outcome{}, domain.ValidationError{Field: "guest.name", Message: "is required"}
	}
	overridden := false
	return s.move(ctx, roomID, movementPlan{
		op:    "change_status",
		kind:  domain.MovementStatusChange,
		actor: cfg.actor,
		check: func(room domain.Room, now time.Time) (bool, error) {
			imminent, err := s.guardImminent(room, now, status, cfg.override)
			if err != nil {
				return false, err
			}
			overridden = imminent
			switch status {
			case domain.StatusOccupied:
				if cfg.guest == nil && room.Guest == nil {
					return false, domain.InvalidTransitionError{RoomID: room.ID, From: room.Status, To: status, Reason: "occupied requires a guest"}
				}
			case domain.StatusReserved:
				if cfg.reservation == nil && room.Reservation == nil {
					return false, domain.InvalidTransitionError{RoomID: room.ID, From: room.Status, To: status, Reason: "reserved requires a reservation"}
				}
			}
			return false, nil
		},
		apply: func(r *domain.Room, _ time.Time) error {
			r.Status = status
			switch status {
			case domain.StatusOccupied:
				if cfg.guest != nil {
					g := *cfg.guest
					r.Guest = &g
				}
				r.Reservation = nil
			case domain.StatusReserved:
				if cfg.reservation != nil {
					res := *cfg.reservation
					r.Reservation = &res
				}
				r.Guest = nil
			default:
				r.Guest = nil
				r.Reservation = nil
			}
			return nil
		},
		describe: func(before, after domain.Room) string {
			return statusChangeObservation(before.Status, after.Status, overridden)
		},
		guest: func(before, after domain.Room) *domain.Guest {
			if before.Guest != nil {
				return before.Guest
			}
			return after.Guest
		},
	})
}

// guardImminent refuses a manual change away from a reservation that starts
// within the proximity window. It reports whether the guard was overridden.
func (s *Service) guardImminent(room domain.Room, now time.Time, target domain.RoomStatus, override bool) (bool, error) {
	if room.Status != domain.StatusReserved || room.Reservation == nil {
		return false, nil
	}
	near, err := IsNear(room.Reservation.Date, room.Reservation.Time, now, s.window)
	if err != nil {
		s.logger.Warn("unreadable reservation on room", "room_id", room.ID, "error", err)
		return false, nil
	}
	if !near {
		return false, nil
	}
	if override {
		s.logger.Warn("imminent reservation overridden", "room_id", room.ID, "target", target)
		return true, nil
	}
	return false, domain.InvalidTransitionError{
		RoomID: room.ID,
		From:   room.Status,
		To:     target,
		Reason: fmt.Sprintf("reservation at %s %s starts within %s", room.Reservation.Date, room.Reservation.Time, s.window),
	}
}
