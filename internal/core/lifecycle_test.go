package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"frontdesk/pkg/domain"
)

func TestFrontDeskScenario(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock("2024-01-30", "09:00")
	svc := newTestService(t, clock, "R101", "R102")

	// A: reserve
	out, err := svc.Reserve(ctx, "R101", "2024-02-01", "14:00")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if out.Room.Status != domain.StatusReserved {
		t.Fatalf("expected reserved, got %s", out.Room.Status)
	}
	if out.Room.Reservation == nil || *out.Room.Reservation != (domain.Reservation{Date: "2024-02-01", Time: "14:00"}) {
		t.Fatalf("unexpected reservation %+v", out.Room.Reservation)
	}
	records := svc.Movements()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	first := records[0]
	if first.Type != domain.MovementReservation || *first.PreviousStatus != domain.StatusVacant || first.NewStatus != domain.StatusReserved {
		t.Fatalf("unexpected first record %+v", first)
	}
	if first.Actor != DefaultDeskActor {
		t.Fatalf("expected default desk actor, got %q", first.Actor)
	}
	if first.Observations != "Reservation for 2024-02-01 at 14:00" {
		t.Fatalf("unexpected observations %q", first.Observations)
	}
	if first.Date != "2024-01-30" || first.Time != "09:00" {
		t.Fatalf("expected record stamped from clock, got %s %s", first.Date, first.Time)
	}

	// B: check in
	clock.set("2024-02-01", "14:05")
	out, err = svc.CheckIn(ctx, "R101", "Juan Pérez", "12345678", "2024-02-01", "14:05")
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if out.Room.Status != domain.StatusOccupied || out.Room.Guest == nil || out.Room.Guest.Name != "Juan Pérez" {
		t.Fatalf("unexpected room after check-in %+v", out.Room)
	}
	if out.Room.Reservation != nil {
		t.Fatal("expected reservation cleared on check-in")
	}
	if out.Room.CheckIn == nil || out.Room.CheckIn.Time != "14:05" {
		t.Fatalf("expected check-in stamp, got %+v", out.Room.CheckIn)
	}
	if out.Movement == nil || out.Movement.Guest == nil || out.Movement.Guest.Document != "12345678" {
		t.Fatalf("expected guest snapshot on record, got %+v", out.Movement)
	}
	if got := len(svc.Movements()); got != 2 {
		t.Fatalf("expected 2 records, got %d", got)
	}

	// C: check out with cleaning
	clock.set("2024-02-03", "11:00")
	out, err = svc.CheckOut(ctx, "R101", "2024-02-03", "11:00", true)
	if err != nil {
		t.Fatalf("check out: %v", err)
	}
	if out.Room.Status != domain.StatusCleaning || out.Room.Guest != nil {
		t.Fatalf("unexpected room after check-out %+v", out.Room)
	}
	records = svc.Movements()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	third := records[2]
	if third.Type != domain.MovementCheckOut || *third.PreviousStatus != domain.StatusOccupied || third.NewStatus != domain.StatusCleaning {
		t.Fatalf("unexpected third record %+v", third)
	}
	if third.Guest == nil || third.Guest.Name != "Juan Pérez" {
		t.Fatalf("expected departing guest snapshot, got %+v", third.Guest)
	}
	if !strings.Contains(third.Observations, "cleaning") {
		t.Fatalf("unexpected observations %q", third.Observations)
	}

	// D: cancel on a vacant room is a no-op
	before := mustRoom(t, svc, "R102")
	out, err = svc.CancelReservation(ctx, "R102")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if out.Applied() || out.Movement != nil {
		t.Fatal("expected no-op cancellation")
	}
	after := mustRoom(t, svc, "R102")
	if after.Status != domain.StatusVacant || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("expected R102 untouched, got %+v", after)
	}
	if got := len(svc.Movements()); got != 3 {
		t.Fatalf("expected ledger unchanged at 3, got %d", got)
	}
	assertConsistent(t, svc)
}

func TestEveryMutationAppendsOneMatchingRecord(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock("2024-03-01", "08:00")
	svc := newTestService(t, clock, "R1")

	steps := []struct {
		name string
		run  func() (Outcome, error)
	}{
		{"reserve", func() (Outcome, error) { return svc.Reserve(ctx, "R1", "2024-03-10", "12:00") }},
		{"reserve again", func() (Outcome, error) { return svc.Reserve(ctx, "R1", "2024-03-11", "12:00") }},
		{"cancel", func() (Outcome, error) { return svc.CancelReservation(ctx, "R1") }},
		{"check in", func() (Outcome, error) { return svc.CheckIn(ctx, "R1", "Ana", "", "2024-03-01", "08:00") }},
		{"status cleaning", func() (Outcome, error) { return svc.ChangeStatus(ctx, "R1", domain.StatusCleaning) }},
		{"status vacant", func() (Outcome, error) { return svc.ChangeStatus(ctx, "R1", domain.StatusVacant) }},
		{"status vacant again", func() (Outcome, error) { return svc.ChangeStatus(ctx, "R1", domain.StatusVacant) }},
		{"check out vacant", func() (Outcome, error) { return svc.CheckOut(ctx, "R1", "2024-03-01", "09:00", false) }},
	}
	for _, step := range steps {
		before := mustRoom(t, svc, "R1")
		count := svc.Ledger().Len()
		out, err := step.run()
		if err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if svc.Ledger().Len() != count+1 {
			t.Fatalf("%s: expected exactly one new record", step.name)
		}
		rec := svc.Movements()[count]
		if *rec.PreviousStatus != before.Status || rec.NewStatus != out.Room.Status {
			t.Fatalf("%s: record %s->%s does not match room %s->%s", step.name, *rec.PreviousStatus, rec.NewStatus, before.Status, out.Room.Status)
		}
		if rec.ID != out.Movement.ID {
			t.Fatalf("%s: outcome movement id %d, ledger id %d", step.name, out.Movement.ID, rec.ID)
		}
		assertConsistent(t, svc)
	}
}

func TestMovementIDsAreMonotonic(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestClock("2024-03-01", "08:00"), "R1", "R2")
	for i := 0; i < 3; i++ {
		if _, err := svc.ChangeStatus(ctx, "R1", domain.StatusCleaning); err != nil {
			t.Fatalf("change status: %v", err)
		}
		if _, err := svc.ChangeStatus(ctx, "R2", domain.StatusVacant); err != nil {
			t.Fatalf("change status: %v", err)
		}
	}
	var last int64
	for _, rec := range svc.Movements() {
		if rec.ID <= last {
			t.Fatalf("expected increasing ids, got %d after %d", rec.ID, last)
		}
		last = rec.ID
	}
}

func TestOperationsOnUnknownRoom(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestClock("2024-03-01", "08:00"))
	calls := map[string]func() error{
		"reserve": func() error { _, err := svc.Reserve(ctx, "nope", "2024-03-02", "10:00"); return err },
		"checkin": func() error { _, err := svc.CheckIn(ctx, "nope", "Ana", "", "2024-03-02", "10:00"); return err },
		"checkout": func() error {
			_, err := svc.CheckOut(ctx, "nope", "2024-03-02", "10:00", true)
			return err
		},
		"cancel": func() error { _, err := svc.CancelReservation(ctx, "nope"); return err },
		"status": func() error { _, err := svc.ChangeStatus(ctx, "nope", domain.StatusCleaning); return err },
	}
	for name, call := range calls {
		err := call()
		if !domain.IsNotFound(err) {
			t.Fatalf("%s: expected not found, got %v", name, err)
		}
	}
	if svc.Ledger().Len() != 0 {
		t.Fatal("expected no records for failed operations")
	}
}

func TestValidationFailuresLeaveStateUntouched(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestClock("2024-03-01", "08:00"), "R1")
	cases := map[string]func() error{
		"bad date":     func() error { _, err := svc.Reserve(ctx, "R1", "01/03/2024", "10:00"); return err },
		"bad time":     func() error { _, err := svc.Reserve(ctx, "R1", "2024-03-02", "10h"); return err },
		"missing name": func() error { _, err := svc.CheckIn(ctx, "R1", "  ", "1", "2024-03-02", "10:00"); return err },
		"bad status":   func() error { _, err := svc.ChangeStatus(ctx, "R1", "flooded"); return err },
	}
	for name, call := range cases {
		if err := call(); !domain.IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
	if room := mustRoom(t, svc, "R1"); room.Status != domain.StatusVacant {
		t.Fatalf("expected vacant room, got %s", room.Status)
	}
	if svc.Ledger().Len() != 0 {
		t.Fatal("expected no records")
	}
}

func TestProximityGuardBlocksManualChanges(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock("2024-02-01", "09:00")
	svc := newTestService(t, clock, "R1")
	if _, err := svc.Reserve(ctx, "R1", "2024-02-01", "14:00"); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	clock.set("2024-02-01", "12:00")
	_, err := svc.ChangeStatus(ctx, "R1", domain.StatusCleaning)
	var transition domain.InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if transition.From != domain.StatusReserved || transition.To != domain.StatusCleaning {
		t.Fatalf("unexpected transition error %+v", transition)
	}
	if _, err := svc.CancelReservation(ctx, "R1"); !domain.IsInvalidTransition(err) {
		t.Fatalf("expected cancellation refused, got %v", err)
	}
	if svc.Ledger().Len() != 1 {
		t.Fatalf("expected only the reservation record, got %d", svc.Ledger().Len())
	}

	out, err := svc.ChangeStatus(ctx, "R1", domain.StatusCleaning, WithOverride(), WithActor("Manager"))
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if !strings.Contains(out.Movement.Observations, "(override)") || out.Movement.Actor != "Manager" {
		t.Fatalf("unexpected override record %+v", out.Movement)
	}
	if out.Room.Reservation != nil {
		t.Fatal("expected reservation cleared")
	}
}

func TestProximityGuardIgnoresDistantReservation(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock("2024-02-01", "09:00")
	svc := newTestService(t, clock, "R1")
	if _, err := svc.Reserve(ctx, "R1", "2024-02-01", "14:00"); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	out, err := svc.CancelReservation(ctx, "R1", WithActor("Front"))
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if out.Room.Status != domain.StatusVacant || out.Room.Reservation != nil {
		t.Fatalf("unexpected room %+v", out.Room)
	}
	if out.Movement.Type != domain.MovementCancellation || out.Movement.Observations != "Reservation for 2024-02-01 at 14:00 cancelled" {
		t.Fatalf("unexpected record %+v", out.Movement)
	}
	if strings.Contains(out.Movement.Observations, "override") {
		t.Fatal("distant reservation should not be marked as override")
	}
}

func TestChangeStatusRequiresDataForTarget(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestClock("2024-02-01", "09:00"), "R1")

	if _, err := svc.ChangeStatus(ctx, "R1", domain.StatusOccupied); !domain.IsInvalidTransition(err) {
		t.Fatalf("expected occupied without guest to fail, got %v", err)
	}
	if _, err := svc.ChangeStatus(ctx, "R1", domain.StatusReserved); !domain.IsInvalidTransition(err) {
		t.Fatalf("expected reserved without reservation to fail, got %v", err)
	}

	out, err := svc.ChangeStatus(ctx, "R1", domain.StatusReserved, WithReservation(domain.Reservation{Date: "2024-02-05", Time: "10:00"}))
	if err != nil {
		t.Fatalf("reserve via status: %v", err)
	}
	if out.Movement.Actor != DefaultSystemActor {
		t.Fatalf("expected system actor, got %q", out.Movement.Actor)
	}
	out, err = svc.ChangeStatus(ctx, "R1", domain.StatusOccupied, WithGuest(domain.Guest{Name: "Lucía"}))
	if err != nil {
		t.Fatalf("occupy via status: %v", err)
	}
	if out.Room.Guest == nil || out.Room.Reservation != nil {
		t.Fatalf("unexpected room %+v", out.Room)
	}
	if out.Movement.Guest == nil || out.Movement.Guest.Name != "Lucía" {
		t.Fatalf("expected guest snapshot, got %+v", out.Movement.Guest)
	}
	out, err = svc.ChangeStatus(ctx, "R1", domain.StatusCleaning)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if out.Room.Guest != nil {
		t.Fatal("expected guest cleared")
	}
	if out.Movement.Guest == nil || out.Movement.Guest.Name != "Lucía" {
		t.Fatal("expected prior guest on record")
	}
	if out.Movement.Observations != "Status changed from Occupied to Cleaning" {
		t.Fatalf("unexpected observations %q", out.Movement.Observations)
	}
	assertConsistent(t, svc)
}

func TestCheckInOnReservedRoomClearsReservation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestClock("2024-02-01", "09:00"), "R1")
	if _, err := svc.Reserve(ctx, "R1", "2024-02-01", "10:00"); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	out, err := svc.CheckIn(ctx, "R1", "Ana", "", "2024-02-01", "09:30")
	if err != nil {
		t.Fatalf("check in near reservation: %v", err)
	}
	if out.Room.Reservation != nil || out.Room.Status != domain.StatusOccupied {
		t.Fatalf("unexpected room %+v", out.Room)
	}
	if out.Movement.Observations != "Check-in for Ana" {
		t.Fatalf("unexpected observations %q", out.Movement.Observations)
	}
}

func TestRecordsSurviveRoomDeletion(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestClock("2024-02-01", "09:00"), "R1")
	if _, err := svc.ChangeStatus(ctx, "R1", domain.StatusCleaning); err != nil {
		t.Fatalf("change: %v", err)
	}
	if _, err := svc.DeleteRoom(ctx, "R1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Room("R1"); !domain.IsNotFound(err) {
		t.Fatalf("expected deleted room, got %v", err)
	}
	history := svc.MovementsByRoom("R1")
	if len(history) != 1 || history[0].RoomName != "Room R1" {
		t.Fatalf("expected history kept, got %+v", history)
	}
}

func TestDiscardLedgerStillChangesRooms(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock("2024-02-01", "09:00")
	svc := NewService(nil, nil, WithClock(clock))
	if _, _, err := svc.AddRoom(ctx, domain.Room{Base: domain.Base{ID: "R1"}, Name: "One"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, err := svc.Reserve(ctx, "R1", "2024-02-02", "10:00")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if out.Room.Status != domain.StatusReserved || out.Movement == nil {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if svc.Ledger().Len() != 0 {
		t.Fatal("expected discard ledger to keep nothing")
	}
}

func TestCanceledContextIsRejected(t *testing.T) {
	svc := newTestService(t, newTestClock("2024-02-01", "09:00"), "R1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.ChangeStatus(ctx, "R1", domain.StatusCleaning); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}
