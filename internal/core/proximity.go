package core

import (
	"fmt"
	"strings"
	"time"

	"frontdesk/pkg/domain"
)

// DefaultProximityWindow is how close a reservation must be to count as imminent.
const DefaultProximityWindow = 3 * time.Hour

// IsNear reports whether the reservation at date/clock starts after now and no
// later than window from now. The reservation is read in now's location.
func IsNear(date, clock string, now time.Time, window time.Duration) (bool, error) {
	at, err := ParseInstant(date, clock, now.Location())
	if err != nil {
		return false, err
	}
	return IsNearInstant(at, now, window), nil
}

// IsNearInstant is IsNear for an already parsed instant.
func IsNearInstant(at, now time.Time, window time.Duration) bool {
	if window <= 0 {
		window = DefaultProximityWindow
	}
	until := at.Sub(now)
	return until > 0 && until <= window
}

// ParseInstant combines a YYYY-MM-DD date and an HH:MM time in loc.
func ParseInstant(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	at, err := time.ParseInLocation(domain.DateLayout+" "+domain.TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse instant %q %q: %w", date, clock, err)
	}
	return at, nil
}

func validateDate(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.ValidationError{Field: field, Message: "is required"}
	}
	if _, err := time.Parse(domain.DateLayout, strings.TrimSpace(value)); err != nil {
		return domain.ValidationError{Field: field, Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", value)}
	}
	return nil
}

func validateClock(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.ValidationError{Field: field, Message: "is required"}
	}
	if _, err := time.Parse(domain.TimeLayout, strings.TrimSpace(value)); err != nil {
		return domain.ValidationError{Field: field, Message: fmt.Sprintf("%q is not an HH:MM time", value)}
	}
	return nil
}
