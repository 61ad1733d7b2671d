package core

import (
	"testing"
	"time"
)

func TestIsNearBoundaries(t *testing.T) {
	reservation := time.Date(2024, 2, 1, 14, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"exactly window ahead", reservation.Add(-3 * time.Hour), true},
		{"one second beyond window", reservation.Add(-3*time.Hour - time.Second), false},
		{"one minute ahead", reservation.Add(-time.Minute), true},
		{"at the instant", reservation, false},
		{"one second after", reservation.Add(time.Second), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := IsNear("2024-02-01", "14:00", tc.now, DefaultProximityWindow)
			if err != nil {
				t.Fatalf("IsNear: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestIsNearUsesNowLocation(t *testing.T) {
	zone := time.FixedZone("art", -3*3600)
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, zone)
	near, err := IsNear("2024-02-01", "14:00", now, time.Hour*3)
	if err != nil {
		t.Fatalf("IsNear: %v", err)
	}
	if !near {
		t.Fatal("expected reservation read in the local zone to be near")
	}
}

func TestIsNearRejectsMalformedInput(t *testing.T) {
	if _, err := IsNear("2024/02/01", "14:00", time.Now(), time.Hour); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestIsNearInstantDefaultsWindow(t *testing.T) {
	now := time.Date(2024, 2, 1, 11, 0, 0, 0, time.UTC)
	if !IsNearInstant(now.Add(3*time.Hour), now, 0) {
		t.Fatal("expected zero window to fall back to the default")
	}
	if IsNearInstant(now.Add(2*time.Hour), now, time.Hour) {
		t.Fatal("expected custom window to apply")
	}
}

func TestClockFuncNilFallsBackToSystemTime(t *testing.T) {
	if ClockFunc(nil).Now().IsZero() {
		t.Fatal("expected non-zero time from nil ClockFunc")
	}
	fixed := time.Date(2030, 5, 6, 7, 8, 9, 0, time.UTC)
	if got := FixedClock(fixed).Now(); !got.Equal(fixed) {
		t.Fatalf("expected %s, got %s", fixed, got)
	}
}
