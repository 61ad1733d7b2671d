package core

import (
	"fmt"

	"frontdesk/pkg/domain"
)

// One builder per movement type keeps the observation wording in one place.

func reservationObservation(r domain.Reservation) string {
	return fmt.Sprintf("Reservation for %s at %s", r.Date, r.Time)
}

func checkInObservation(g domain.Guest) string {
	if g.Document == "" {
		return "Check-in for " + g.Name
	}
	return fmt.Sprintf("Check-in for %s (%s)", g.Name, g.Document)
}

func checkOutObservation(guest *domain.Guest, requiresCleaning bool) string {
	msg := "Check-out"
	if guest != nil {
		msg += " for " + guest.Name
	}
	if requiresCleaning {
		return msg + "; room sent to cleaning"
	}
	return msg + "; room available"
}

func cancellationObservation(r *domain.Reservation) string {
	if r == nil {
		return "Reservation cancelled"
	}
	return fmt.Sprintf("Reservation for %s at %s cancelled", r.Date, r.Time)
}

func statusChangeObservation(from, to domain.RoomStatus, overridden bool) string {
	msg := fmt.Sprintf("Status changed from %s to %s", from.Label(), to.Label())
	if overridden {
		msg += " (override)"
	}
	return msg
}
