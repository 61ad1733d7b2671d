package core

import (
	"context"
	"fmt"

	"frontdesk/pkg/domain"
)

// PastReservationRule warns when a reservation is staged for an instant that
// has already passed. The desk may be back-filling, so it never blocks.
func PastReservationRule(clock Clock) domain.Rule {
	if clock == nil {
		clock = SystemClock
	}
	return pastReservationRule{clock: clock}
}

type pastReservationRule struct {
	clock Clock
}

func (pastReservationRule) Name() string { return "past_reservation" }

func (r pastReservationRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	var res domain.Result
	now := r.clock.Now()
	for _, change := range changes {
		if change.Entity != domain.EntityRoom {
			continue
		}
		room, ok := roomFromChange(change.After)
		if !ok || room.Status != domain.StatusReserved || room.Reservation == nil {
			continue
		}
		if before, ok := roomFromChange(change.Before); ok && before.Reservation != nil && *before.Reservation == *room.Reservation {
			continue
		}
		at, err := ParseInstant(room.Reservation.Date, room.Reservation.Time, now.Location())
		if err != nil || !at.Before(now) {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     r.Name(),
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("reservation %s %s is in the past", room.Reservation.Date, room.Reservation.Time),
			Entity:   domain.EntityRoom,
			EntityID: room.ID,
		})
	}
	return res, nil
}
